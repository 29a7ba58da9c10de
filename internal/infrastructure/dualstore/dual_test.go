package dualstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Onboarding-api/internal/bus"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/localstore"
)

// fakeRemote simula el backend remoto con fallos controlables.
type fakeRemote struct {
	mu            sync.Mutex
	docs          map[string][]map[string]any
	nextID        int
	failOps       bool
	conflictOn    bool
	failSubscribe bool
	subs          map[string][]func(store.Snapshot)
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		docs: make(map[string][]map[string]any),
		subs: make(map[string][]func(store.Snapshot)),
	}
}

var errRemoto = errors.New("remoto caído")

func (f *fakeRemote) snapshotLocked(collection string) store.Snapshot {
	snap := store.Snapshot{}
	for _, d := range f.docs[collection] {
		b, _ := json.Marshal(d)
		snap = append(snap, json.RawMessage(b))
	}
	return snap
}

func (f *fakeRemote) publishLocked(collection string) {
	snap := f.snapshotLocked(collection)
	for _, fn := range f.subs[collection] {
		fn(snap)
	}
}

func (f *fakeRemote) List(_ context.Context, collection string) (store.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps {
		return nil, errRemoto
	}
	return f.snapshotLocked(collection), nil
}

func (f *fakeRemote) Get(_ context.Context, collection, id string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps {
		return nil, errRemoto
	}
	for _, d := range f.docs[collection] {
		if d["id"] == id {
			b, _ := json.Marshal(d)
			return b, nil
		}
	}
	return nil, domain.NewNotFound(collection, id)
}

func (f *fakeRemote) Create(_ context.Context, collection string, doc map[string]any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps {
		return nil, errRemoto
	}
	if f.conflictOn {
		return nil, domain.NewConflict("valor duplicado")
	}
	stored := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	f.nextID++
	stored["id"] = fmt.Sprintf("r-%d", f.nextID)
	f.docs[collection] = append(f.docs[collection], stored)
	f.publishLocked(collection)
	b, _ := json.Marshal(stored)
	return b, nil
}

func (f *fakeRemote) Update(_ context.Context, collection, id string, partial map[string]any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps {
		return nil, errRemoto
	}
	for i, d := range f.docs[collection] {
		if d["id"] == id {
			for k, v := range partial {
				if k != "id" {
					d[k] = v
				}
			}
			f.docs[collection][i] = d
			f.publishLocked(collection)
			b, _ := json.Marshal(d)
			return b, nil
		}
	}
	return nil, domain.NewNotFound(collection, id)
}

func (f *fakeRemote) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps {
		return errRemoto
	}
	kept := f.docs[collection][:0]
	for _, d := range f.docs[collection] {
		if d["id"] != id {
			kept = append(kept, d)
		}
	}
	f.docs[collection] = kept
	f.publishLocked(collection)
	return nil
}

func (f *fakeRemote) Query(_ context.Context, collection, field, value string) (store.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps {
		return nil, errRemoto
	}
	snap := store.Snapshot{}
	for _, d := range f.docs[collection] {
		if fmt.Sprint(d[field]) == value {
			b, _ := json.Marshal(d)
			snap = append(snap, json.RawMessage(b))
		}
	}
	return snap, nil
}

func (f *fakeRemote) Subscribe(_ context.Context, collection string, fn func(store.Snapshot)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSubscribe {
		return nil, errRemoto
	}
	f.subs[collection] = append(f.subs[collection], fn)
	snap := f.snapshotLocked(collection)
	go fn(snap)
	return func() {}, nil
}

var _ store.Store = (*fakeRemote)(nil)

func newLocal(t *testing.T) store.Store {
	t.Helper()
	s, err := localstore.New(t.TempDir(), bus.New(), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func esperar(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condición no alcanzada a tiempo")
}

func TestCompuertaCerradaTodoVaAlLocal(t *testing.T) {
	local := newLocal(t)
	d := New(nil, local, 0, zerolog.Nop())
	ctx := context.Background()

	assert.False(t, d.RemoteAvailable())

	raw, err := d.Create(ctx, store.Users, map[string]any{"name": "Ana"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.True(t, strings.HasPrefix(doc["id"].(string), "local-user-"))
	assert.NotEmpty(t, doc["createdAt"], "el alta estampa createdAt")

	snap, err := d.List(ctx, store.Users)
	require.NoError(t, err)
	assert.Len(t, snap, 1)
}

func TestAltaRemotaExitosaNoDejaCopiaLocal(t *testing.T) {
	remote := newFakeRemote()
	local := newLocal(t)
	d := New(remote, local, 0, zerolog.Nop())
	ctx := context.Background()

	raw, err := d.Create(ctx, store.Users, map[string]any{"name": "Ana"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "r-1", doc["id"])

	localSnap, err := local.List(ctx, store.Users)
	require.NoError(t, err)
	assert.Empty(t, localSnap, "el alta remota no debe duplicarse en el local")
}

func TestAltaCaeAlLocalCuandoElRemotoFalla(t *testing.T) {
	remote := newFakeRemote()
	remote.failOps = true
	local := newLocal(t)
	d := New(remote, local, 0, zerolog.Nop())
	ctx := context.Background()

	raw, err := d.Create(ctx, store.Templates, map[string]any{"name": "Dev"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.True(t, strings.HasPrefix(doc["id"].(string), "local-template-"))
}

func TestConflictoRemotoSePropagaSinEscrituraLocal(t *testing.T) {
	remote := newFakeRemote()
	remote.conflictOn = true
	local := newLocal(t)
	d := New(remote, local, 0, zerolog.Nop())
	ctx := context.Background()

	_, err := d.Create(ctx, store.Users, map[string]any{"email": "ana@acme.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	snap, _ := local.List(ctx, store.Users)
	assert.Empty(t, snap, "un conflicto de negocio no debe degradar al local")
}

func TestListaRemotaVaciaCaeAlLocal(t *testing.T) {
	remote := newFakeRemote()
	local := newLocal(t)
	d := New(remote, local, 0, zerolog.Nop())
	ctx := context.Background()

	_, err := local.Create(ctx, store.Roles, map[string]any{"name": "QA"})
	require.NoError(t, err)

	snap, err := d.List(ctx, store.Roles)
	require.NoError(t, err)
	assert.Len(t, snap, 1, "con remoto vacío se usan los datos locales")

	_, err = remote.Create(ctx, store.Roles, map[string]any{"name": "DevOps"})
	require.NoError(t, err)

	snap, err = d.List(ctx, store.Roles)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(snap[0], &doc))
	assert.Equal(t, "DevOps", doc["name"], "con remoto no vacío manda el remoto")
}

func TestGetConIDLocalNoConsultaAlRemoto(t *testing.T) {
	remote := newFakeRemote()
	local := newLocal(t)
	d := New(remote, local, 0, zerolog.Nop())
	ctx := context.Background()

	raw, err := local.Create(ctx, store.Suggestions, map[string]any{"text": "hola"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	id := doc["id"].(string)

	remote.failOps = true // si el dual tocara el remoto, fallaría
	got, err := d.Get(ctx, store.Suggestions, id)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestUpdateDespojaCamposProtegidos(t *testing.T) {
	local := newLocal(t)
	d := New(nil, local, 0, zerolog.Nop())
	ctx := context.Background()

	raw, err := d.Create(ctx, store.Users, map[string]any{"name": "Ana", "createdBy": "admin"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	id := doc["id"].(string)
	creado := doc["createdAt"].(string)

	updated, err := d.Update(ctx, store.Users, id, map[string]any{
		"name":      "Ana María",
		"id":        "intruso",
		"createdAt": "1999-01-01T00:00:00Z",
		"createdBy": "otro",
	})
	require.NoError(t, err)
	var after map[string]any
	require.NoError(t, json.Unmarshal(updated, &after))
	assert.Equal(t, id, after["id"])
	assert.Equal(t, creado, after["createdAt"], "createdAt no se reescribe")
	assert.Equal(t, "admin", after["createdBy"], "createdBy no se reescribe")
	assert.Equal(t, "Ana María", after["name"])
	assert.NotEmpty(t, after["updatedAt"], "updatedAt se estampa en cada parche")
}

func TestUpdatePermiteReapuntarCreatedByAlSistema(t *testing.T) {
	local := newLocal(t)
	d := New(nil, local, 0, zerolog.Nop())
	ctx := context.Background()

	raw, err := d.Create(ctx, store.Templates, map[string]any{"name": "Dev", "createdBy": "ana-id"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	id := doc["id"].(string)

	// El reapuntado de la cascada es la única reescritura legal de createdBy.
	updated, err := d.Update(ctx, store.Templates, id, map[string]any{"createdBy": entity.CreatedBySystem})
	require.NoError(t, err)
	var after map[string]any
	require.NoError(t, json.Unmarshal(updated, &after))
	assert.Equal(t, entity.CreatedBySystem, after["createdBy"])
}

func TestColeccionSoloLocalNuncaTocaElRemoto(t *testing.T) {
	remote := newFakeRemote()
	local := newLocal(t)
	d := New(remote, local, 0, zerolog.Nop())
	ctx := context.Background()

	raw, err := d.Create(ctx, store.AuthCredentials, map[string]any{"email": "ana@acme.com"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.True(t, strings.HasPrefix(doc["id"].(string), "local-credential-"))

	remoteSnap, err := remote.List(ctx, store.AuthCredentials)
	require.NoError(t, err)
	assert.Empty(t, remoteSnap)
}

func TestSuscripcionMezclaRemotoYLocales(t *testing.T) {
	remote := newFakeRemote()
	local := newLocal(t)
	d := New(remote, local, 0, zerolog.Nop())
	ctx := context.Background()

	_, err := remote.Create(ctx, store.Users, map[string]any{"name": "Remota"})
	require.NoError(t, err)
	_, err = local.Create(ctx, store.Users, map[string]any{"name": "Local"})
	require.NoError(t, err)

	var mu sync.Mutex
	var ultimo store.Snapshot
	cancel, err := d.Subscribe(ctx, store.Users, func(snap store.Snapshot) {
		mu.Lock()
		ultimo = snap
		mu.Unlock()
	})
	require.NoError(t, err)
	defer cancel()

	esperar(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ultimo) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	nombres := make([]string, 0, 2)
	for _, raw := range ultimo {
		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		nombres = append(nombres, doc["name"].(string))
	}
	assert.ElementsMatch(t, []string{"Remota", "Local"}, nombres,
		"los documentos solo-locales sobreviven a la mezcla")
}

func TestSuscripcionCompartidaYConteo(t *testing.T) {
	local := newLocal(t)
	d := New(nil, local, 0, zerolog.Nop())
	ctx := context.Background()

	c1, err := d.Subscribe(ctx, store.Roles, func(store.Snapshot) {})
	require.NoError(t, err)
	c2, err := d.Subscribe(ctx, store.Roles, func(store.Snapshot) {})
	require.NoError(t, err)

	assert.Equal(t, 2, d.SubscriberCount(store.Roles))

	c1()
	c1() // cancelar dos veces no descuenta de más
	assert.Equal(t, 1, d.SubscriberCount(store.Roles))

	c2()
	assert.Equal(t, 0, d.SubscriberCount(store.Roles))
}

func TestFalloAlAbrirLaEscuchaRemotaSeDevuelve(t *testing.T) {
	remote := newFakeRemote()
	remote.failSubscribe = true
	local := newLocal(t)
	d := New(remote, local, 0, zerolog.Nop())

	_, err := d.Subscribe(context.Background(), store.Users, func(store.Snapshot) {})
	require.Error(t, err)
	assert.Equal(t, 0, d.SubscriberCount(store.Users), "la suscripción fallida no debe quedar a medias")
}

func TestMergeSnapshots(t *testing.T) {
	remoto := store.Snapshot{
		json.RawMessage(`{"id":"a","v":"remoto"}`),
		json.RawMessage(`{"id":"b","v":"remoto"}`),
	}
	locales := store.Snapshot{
		json.RawMessage(`{"id":"a","v":"local"}`),
		json.RawMessage(`{"id":"local-user-1","v":"local"}`),
	}

	t.Run("fuera de ventana manda el remoto", func(t *testing.T) {
		merged := mergeSnapshots(remoto, true, locales, false)
		require.Len(t, merged, 3)
		assert.JSONEq(t, `{"id":"a","v":"remoto"}`, string(merged[0]))
	})

	t.Run("dentro de la ventana manda lo local", func(t *testing.T) {
		merged := mergeSnapshots(remoto, true, locales, true)
		require.Len(t, merged, 3)
		assert.JSONEq(t, `{"id":"a","v":"local"}`, string(merged[0]))
	})

	t.Run("sin remoto aún se entrega lo local", func(t *testing.T) {
		merged := mergeSnapshots(nil, false, locales, false)
		assert.Len(t, merged, 2)
	})
}
