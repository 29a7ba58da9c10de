// Package dualstore combina el backend remoto y el almacén local de archivos
// en un único puerto de documentos. El remoto es la fuente primaria cuando su
// compuerta está abierta; el local mantiene la aplicación operativa sin red y
// conserva las escrituras hechas en ese estado.
package dualstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// DefaultRecencyWindow es la ventana en la que una escritura local reciente
// prevalece sobre el snapshot remoto durante la mezcla de suscripciones.
const DefaultRecencyWindow = 100 * time.Millisecond

// Dual implementa store.Store despachando entre el backend remoto y el local.
// Un remoto nil significa compuerta cerrada: todo opera contra el local.
type Dual struct {
	remote store.Store
	local  store.Store
	log    zerolog.Logger
	window time.Duration

	mu     sync.Mutex
	recent map[string]time.Time
	subs   map[string]*collectionSub
}

var _ store.Store = (*Dual)(nil)

// New construye la capa dual. remote puede ser nil (sin backend disponible).
func New(remote, local store.Store, window time.Duration, log zerolog.Logger) *Dual {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	return &Dual{
		remote: remote,
		local:  local,
		log:    log.With().Str("componente", "dualstore").Logger(),
		window: window,
		recent: make(map[string]time.Time),
		subs:   make(map[string]*collectionSub),
	}
}

// RemoteAvailable indica si la compuerta remota está abierta.
func (d *Dual) RemoteAvailable() bool { return d.remote != nil }

// isLocalID reconoce los ids asignados por el almacén local; esos documentos
// solo existen ahí, así que sus operaciones nunca viajan al remoto.
func isLocalID(id string) bool { return strings.HasPrefix(id, "local-") }

func (d *Dual) useRemote(collection string) bool {
	return d.remote != nil && !store.LocalOnly(collection)
}

// markLocalWrite registra el instante de la última escritura local de la
// colección para la ventana de recencia de las suscripciones.
func (d *Dual) markLocalWrite(collection string) {
	d.mu.Lock()
	d.recent[collection] = time.Now()
	d.mu.Unlock()
}

func (d *Dual) localFresh(collection string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	at, ok := d.recent[collection]
	return ok && time.Since(at) <= d.window
}

func nowStamp() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// ── Lecturas ──────────────────────────────────────────────────────────────

// List consulta el remoto cuando la compuerta está abierta; un resultado
// vacío o un fallo remoto caen al almacén local, que nunca falla al leer.
func (d *Dual) List(ctx context.Context, collection string) (store.Snapshot, error) {
	if d.useRemote(collection) {
		snap, err := d.remote.List(ctx, collection)
		if err == nil && len(snap) > 0 {
			return snap, nil
		}
		if err != nil {
			d.log.Warn().Err(err).Str("coleccion", collection).Msg("lectura remota fallida; usando almacén local")
		}
	}
	return d.local.List(ctx, collection)
}

// Get busca primero en el remoto; si el documento no está ahí (por ejemplo un
// id local) o el remoto falla, busca en el almacén local.
func (d *Dual) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if d.useRemote(collection) && !isLocalID(id) {
		raw, err := d.remote.Get(ctx, collection, id)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			d.log.Warn().Err(err).Str("coleccion", collection).Msg("lectura remota fallida; usando almacén local")
		}
	}
	return d.local.Get(ctx, collection, id)
}

// Query sigue la misma política que List.
func (d *Dual) Query(ctx context.Context, collection, field, value string) (store.Snapshot, error) {
	if d.useRemote(collection) {
		snap, err := d.remote.Query(ctx, collection, field, value)
		if err == nil && len(snap) > 0 {
			return snap, nil
		}
		if err != nil {
			d.log.Warn().Err(err).Str("coleccion", collection).Msg("consulta remota fallida; usando almacén local")
		}
	}
	return d.local.Query(ctx, collection, field, value)
}

// ── Escrituras ────────────────────────────────────────────────────────────

// Create inserta el documento en el remoto si la compuerta está abierta; si el
// remoto lo acepta NO se escribe copia local. Con la compuerta cerrada, fallo
// de infraestructura o colección solo-local, el documento queda en el almacén
// local con id local-<tipo>-<ms>. Siempre estampa createdAt si falta.
func (d *Dual) Create(ctx context.Context, collection string, doc map[string]any) (json.RawMessage, error) {
	clean := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		clean[k] = v
	}
	delete(clean, "id")
	if _, ok := clean["createdAt"]; !ok {
		clean["createdAt"] = nowStamp()
	}

	if d.useRemote(collection) {
		raw, err := d.remote.Create(ctx, collection, clean)
		if err == nil {
			return raw, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		d.log.Warn().Err(err).Str("coleccion", collection).Msg("alta remota fallida; escribiendo en almacén local")
	}

	raw, err := d.local.Create(ctx, collection, clean)
	if err != nil {
		return nil, err
	}
	d.markLocalWrite(collection)
	return raw, nil
}

// Update aplica el parche despojado de id, createdAt y createdBy (la
// procedencia no se reescribe) y estampa updatedAt. Única excepción: el
// borrado en cascada sí reapunta createdBy al centinela system para no dejar
// referencias colgando. Los ids locales y las colecciones solo-locales van
// directo al almacén local.
func (d *Dual) Update(ctx context.Context, collection, id string, partial map[string]any) (json.RawMessage, error) {
	clean := make(map[string]any, len(partial)+1)
	for k, v := range partial {
		clean[k] = v
	}
	delete(clean, "id")
	delete(clean, "createdAt")
	if clean["createdBy"] != entity.CreatedBySystem {
		delete(clean, "createdBy")
	}
	clean["updatedAt"] = nowStamp()

	if d.useRemote(collection) && !isLocalID(id) {
		raw, err := d.remote.Update(ctx, collection, id, clean)
		if err == nil {
			return raw, nil
		}
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		d.log.Warn().Err(err).Str("coleccion", collection).Msg("actualización remota fallida; usando almacén local")
	}

	raw, err := d.local.Update(ctx, collection, id, clean)
	if err != nil {
		return nil, err
	}
	d.markLocalWrite(collection)
	return raw, nil
}

// Delete elimina el documento del backend que lo posee. Borrar un id
// inexistente no es error en ninguno de los dos.
func (d *Dual) Delete(ctx context.Context, collection, id string) error {
	if d.useRemote(collection) && !isLocalID(id) {
		if err := d.remote.Delete(ctx, collection, id); err != nil {
			d.log.Warn().Err(err).Str("coleccion", collection).Msg("borrado remoto fallido; usando almacén local")
		} else {
			return nil
		}
	}
	if err := d.local.Delete(ctx, collection, id); err != nil {
		return err
	}
	d.markLocalWrite(collection)
	return nil
}

// ── Suscripciones ─────────────────────────────────────────────────────────

// collectionSub es la suscripción compartida de una colección: sin importar
// cuántos consumidores haya, mantiene una sola escucha local y una remota.
type collectionSub struct {
	mu           sync.Mutex
	refs         int
	nextID       int
	consumers    map[int]func(store.Snapshot)
	cancelLocal  func()
	cancelRemote func()

	remote    store.Snapshot // nil hasta la primera entrega remota
	local     store.Snapshot
	gotRemote bool
	lastSent  []byte
}

// Subscribe entrega snapshots mezclados de ambos backends. El primer
// consumidor abre las escuchas subyacentes y el último las cierra. Un fallo
// al abrir la escucha remota se devuelve de inmediato.
func (d *Dual) Subscribe(ctx context.Context, collection string, fn func(store.Snapshot)) (func(), error) {
	d.mu.Lock()
	sub, ok := d.subs[collection]
	if !ok {
		sub = &collectionSub{consumers: make(map[int]func(store.Snapshot))}
		d.subs[collection] = sub
	}
	d.mu.Unlock()

	sub.mu.Lock()
	sub.nextID++
	id := sub.nextID
	sub.consumers[id] = fn
	sub.refs++
	first := sub.refs == 1
	var current store.Snapshot
	if !first && sub.lastSent != nil {
		current = decodeSnapshot(sub.lastSent)
	}
	sub.mu.Unlock()

	if first {
		if err := d.openFeeds(ctx, collection, sub); err != nil {
			d.dropConsumer(collection, sub, id)
			return nil, err
		}
	} else if current != nil {
		go fn(current)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() { d.dropConsumer(collection, sub, id) })
	}
	return cancel, nil
}

// openFeeds abre la escucha local y, con la compuerta abierta, la remota.
func (d *Dual) openFeeds(ctx context.Context, collection string, sub *collectionSub) error {
	cancelLocal, err := d.local.Subscribe(ctx, collection, func(snap store.Snapshot) {
		sub.mu.Lock()
		sub.local = snap
		d.deliverLocked(collection, sub)
		sub.mu.Unlock()
	})
	if err != nil {
		return err
	}

	var cancelRemote func()
	if d.useRemote(collection) {
		cancelRemote, err = d.remote.Subscribe(ctx, collection, func(snap store.Snapshot) {
			sub.mu.Lock()
			sub.remote = snap
			sub.gotRemote = true
			d.deliverLocked(collection, sub)
			sub.mu.Unlock()
		})
		if err != nil {
			cancelLocal()
			return err
		}
	}

	sub.mu.Lock()
	sub.cancelLocal = cancelLocal
	sub.cancelRemote = cancelRemote
	sub.mu.Unlock()
	return nil
}

// deliverLocked mezcla el último estado de ambos backends y lo entrega si
// difiere de lo último enviado (supresión de parpadeo). Se llama con sub.mu.
func (d *Dual) deliverLocked(collection string, sub *collectionSub) {
	merged := mergeSnapshots(sub.remote, sub.gotRemote, sub.local, d.localFresh(collection))

	encoded := encodeSnapshot(merged)
	if bytes.Equal(encoded, sub.lastSent) {
		return
	}
	sub.lastSent = encoded
	for _, fn := range sub.consumers {
		fn(merged)
	}
}

func (d *Dual) dropConsumer(collection string, sub *collectionSub, id int) {
	sub.mu.Lock()
	if _, ok := sub.consumers[id]; !ok {
		sub.mu.Unlock()
		return
	}
	delete(sub.consumers, id)
	sub.refs--
	last := sub.refs == 0
	cancelLocal, cancelRemote := sub.cancelLocal, sub.cancelRemote
	if last {
		sub.cancelLocal, sub.cancelRemote = nil, nil
	}
	sub.mu.Unlock()

	if last {
		if cancelLocal != nil {
			cancelLocal()
		}
		if cancelRemote != nil {
			cancelRemote()
		}
		d.mu.Lock()
		if d.subs[collection] == sub {
			delete(d.subs, collection)
		}
		d.mu.Unlock()
	}
}

// SubscriberCount devuelve cuántos consumidores comparten la colección.
func (d *Dual) SubscriberCount(collection string) int {
	d.mu.Lock()
	sub, ok := d.subs[collection]
	d.mu.Unlock()
	if !ok {
		return 0
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.refs
}

// mergeSnapshots combina ambos backends: manda el remoto documento por
// documento, salvo que haya una escritura local dentro de la ventana de
// recencia, y los documentos que solo existen localmente siempre sobreviven.
func mergeSnapshots(remote store.Snapshot, gotRemote bool, local store.Snapshot, localFresh bool) store.Snapshot {
	if !gotRemote {
		if local == nil {
			return store.Snapshot{}
		}
		return local
	}

	localByID := make(map[string]json.RawMessage, len(local))
	localOrder := make([]string, 0, len(local))
	for _, raw := range local {
		if id := docID(raw); id != "" {
			localByID[id] = raw
			localOrder = append(localOrder, id)
		}
	}

	merged := make(store.Snapshot, 0, len(remote)+len(local))
	inRemote := make(map[string]struct{}, len(remote))
	for _, raw := range remote {
		id := docID(raw)
		if id != "" {
			inRemote[id] = struct{}{}
			if localFresh {
				if lv, ok := localByID[id]; ok {
					merged = append(merged, lv)
					continue
				}
			}
		}
		merged = append(merged, raw)
	}
	for _, id := range localOrder {
		if _, ok := inRemote[id]; !ok {
			merged = append(merged, localByID[id])
		}
	}
	return merged
}

func docID(raw json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ID
}

func encodeSnapshot(snap store.Snapshot) []byte {
	b, err := json.Marshal(snap)
	if err != nil {
		return nil
	}
	return b
}

func decodeSnapshot(b []byte) store.Snapshot {
	var snap store.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil
	}
	return snap
}
