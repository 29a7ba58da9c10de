// Package localstore implementa el puerto de documentos sobre archivos JSON
// locales: un archivo por colección con el contenido completo como arreglo.
// Es el respaldo que mantiene la aplicación operativa sin backend remoto.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/internal/bus"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// kinds traduce el nombre de colección al token singular de los ids locales
// (local-<kind>-<milisegundos>).
var kinds = map[string]string{
	store.Users:               "user",
	store.Roles:               "role",
	store.Profiles:            "profile",
	store.ProfileTemplates:    "profile-template",
	store.OnboardingInstances: "onboarding-instance",
	store.Templates:           "template",
	store.Suggestions:         "suggestion",
	store.Activities:          "activity",
	store.AuthCredentials:     "credential",
	store.Experts:             "expert",
}

func kindFor(collection string) string {
	if k, ok := kinds[collection]; ok {
		return k
	}
	return "doc"
}

// Store persiste cada colección en <dir>/<colección>.json y publica un evento
// en el bus tras cada escritura. Un archivo ausente equivale a colección vacía
// y uno ilegible se reinicializa sin propagar el error.
type Store struct {
	dir string
	bus *bus.Bus
	log zerolog.Logger

	mu     sync.Mutex
	lastID int64
}

var _ store.Store = (*Store)(nil)

// New prepara el directorio de datos y construye el almacén.
func New(dir string, b *bus.Bus, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creando directorio de datos %q: %w", dir, err)
	}
	return &Store{dir: dir, bus: b, log: log.With().Str("componente", "localstore").Logger()}, nil
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// readLocked carga los documentos de la colección. Debe llamarse con el mutex tomado.
func (s *Store) readLocked(collection string) []map[string]any {
	b, err := os.ReadFile(s.path(collection))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("coleccion", collection).Msg("no se pudo leer el archivo de la colección")
		}
		return []map[string]any{}
	}
	var docs []map[string]any
	if err := json.Unmarshal(b, &docs); err != nil {
		s.log.Warn().Err(err).Str("coleccion", collection).Msg("archivo de colección dañado; se reinicializa vacío")
		if werr := s.writeLocked(collection, []map[string]any{}); werr != nil {
			s.log.Error().Err(werr).Str("coleccion", collection).Msg("no se pudo reinicializar la colección")
		}
		return []map[string]any{}
	}
	return docs
}

// writeLocked escribe el arreglo completo de forma atómica (tmp + rename).
// Debe llamarse con el mutex tomado.
func (s *Store) writeLocked(collection string, docs []map[string]any) error {
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("serializando colección %q: %w", collection, err)
	}
	final := s.path(collection)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("escribiendo archivo temporal de %q: %w", collection, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("renombrando archivo de %q: %w", collection, err)
	}
	return nil
}

func toSnapshot(docs []map[string]any) store.Snapshot {
	snap := make(store.Snapshot, 0, len(docs))
	for _, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			continue
		}
		snap = append(snap, json.RawMessage(b))
	}
	return snap
}

// publishLocked anuncia el nuevo estado de la colección en el bus.
func (s *Store) publishLocked(collection string, docs []map[string]any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{
		Collection: collection,
		Docs:       toSnapshot(docs),
		Origin:     bus.OriginLocal,
	})
}

// nextID genera un id local único y estrictamente creciente aun dentro del
// mismo milisegundo. Debe llamarse con el mutex tomado.
func (s *Store) nextID(collection string) string {
	now := time.Now().UnixMilli()
	if now <= s.lastID {
		now = s.lastID + 1
	}
	s.lastID = now
	return fmt.Sprintf("local-%s-%d", kindFor(collection), now)
}

// List devuelve todos los documentos de la colección.
func (s *Store) List(_ context.Context, collection string) (store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toSnapshot(s.readLocked(collection)), nil
}

// Get devuelve un documento por id.
func (s *Store) Get(_ context.Context, collection, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.readLocked(collection) {
		if d["id"] == id {
			b, err := json.Marshal(d)
			if err != nil {
				return nil, fmt.Errorf("serializando %s %q: %w", collection, id, err)
			}
			return b, nil
		}
	}
	return nil, domain.NewNotFound(collection, id)
}

// Create inserta el documento con un id local recién asignado.
func (s *Store) Create(_ context.Context, collection string, doc map[string]any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	stored["id"] = s.nextID(collection)

	docs := append(s.readLocked(collection), stored)
	if err := s.writeLocked(collection, docs); err != nil {
		return nil, err
	}
	s.publishLocked(collection, docs)

	b, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("serializando %s creado: %w", collection, err)
	}
	return b, nil
}

// Update mezcla el parche sobre el documento indicado. El id nunca se modifica.
func (s *Store) Update(_ context.Context, collection, id string, partial map[string]any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.readLocked(collection)
	for i, d := range docs {
		if d["id"] != id {
			continue
		}
		for k, v := range partial {
			if k == "id" {
				continue
			}
			d[k] = v
		}
		docs[i] = d
		if err := s.writeLocked(collection, docs); err != nil {
			return nil, err
		}
		s.publishLocked(collection, docs)

		b, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("serializando %s %q: %w", collection, id, err)
		}
		return b, nil
	}
	return nil, domain.NewNotFound(collection, id)
}

// Delete elimina el documento indicado; un id inexistente no es error.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.readLocked(collection)
	kept := docs[:0]
	removed := false
	for _, d := range docs {
		if d["id"] == id {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	if !removed {
		return nil
	}
	if err := s.writeLocked(collection, kept); err != nil {
		return err
	}
	s.publishLocked(collection, kept)
	return nil
}

// Query devuelve los documentos cuyo campo de primer nivel coincide con value.
func (s *Store) Query(_ context.Context, collection, field, value string) (store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]map[string]any, 0)
	for _, d := range s.readLocked(collection) {
		got, ok := d[field]
		if !ok {
			continue
		}
		if str, isStr := got.(string); isStr {
			if str == value {
				matched = append(matched, d)
			}
			continue
		}
		if fmt.Sprint(got) == value {
			matched = append(matched, d)
		}
	}
	return toSnapshot(matched), nil
}

// Subscribe entrega el snapshot actual de inmediato y luego cada cambio,
// coalescido, a través del bus. Los eventos del relay llegan sin documentos
// y fuerzan una relectura del archivo.
func (s *Store) Subscribe(_ context.Context, collection string, fn func(store.Snapshot)) (func(), error) {
	if s.bus == nil {
		return nil, fmt.Errorf("el almacén local no tiene bus de eventos configurado")
	}

	s.mu.Lock()
	initial := toSnapshot(s.readLocked(collection))
	s.mu.Unlock()

	cancel := s.bus.SubscribeWithInitial(collection,
		bus.Event{Collection: collection, Docs: initial, Origin: bus.OriginLocal},
		func(ev bus.Event) {
			if ev.Docs != nil {
				fn(store.Snapshot(ev.Docs))
				return
			}
			s.mu.Lock()
			snap := toSnapshot(s.readLocked(collection))
			s.mu.Unlock()
			fn(snap)
		})
	return cancel, nil
}
