package localstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Onboarding-api/internal/bus"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, bus.New(), zerolog.Nop())
	require.NoError(t, err)
	return s, dir
}

func TestCreateAsignaIDLocalYPersiste(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	raw, err := s.Create(ctx, store.Users, map[string]any{"name": "Ana", "email": "ana@acme.com"})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	id, _ := doc["id"].(string)
	assert.True(t, strings.HasPrefix(id, "local-user-"), "id inesperado: %s", id)

	// el archivo queda escrito como arreglo JSON
	b, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	var arr []map[string]any
	require.NoError(t, json.Unmarshal(b, &arr))
	require.Len(t, arr, 1)
	assert.Equal(t, "Ana", arr[0]["name"])
}

func TestIDsSonCrecientesDentroDelMismoMilisegundo(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	vistos := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		raw, err := s.Create(ctx, store.Roles, map[string]any{"name": "r"})
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		id := doc["id"].(string)
		_, repetido := vistos[id]
		require.False(t, repetido, "id duplicado: %s", id)
		vistos[id] = struct{}{}
	}
}

func TestListYGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	snap, err := s.List(ctx, store.Templates)
	require.NoError(t, err)
	assert.Empty(t, snap, "colección inexistente debe listarse vacía")

	raw, err := s.Create(ctx, store.Templates, map[string]any{"name": "Onboarding Dev"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	got, err := s.Get(ctx, store.Templates, doc["id"].(string))
	require.NoError(t, err)
	var fetched map[string]any
	require.NoError(t, json.Unmarshal(got, &fetched))
	assert.Equal(t, "Onboarding Dev", fetched["name"])

	_, err = s.Get(ctx, store.Templates, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateMezclaSinTocarElID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	raw, err := s.Create(ctx, store.Users, map[string]any{"name": "Ana", "role": "employee"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	id := doc["id"].(string)

	updated, err := s.Update(ctx, store.Users, id, map[string]any{"role": "manager", "id": "intruso"})
	require.NoError(t, err)
	var after map[string]any
	require.NoError(t, json.Unmarshal(updated, &after))
	assert.Equal(t, "manager", after["role"])
	assert.Equal(t, "Ana", after["name"], "los campos no parchados se conservan")
	assert.Equal(t, id, after["id"], "el id no debe poder reescribirse")

	_, err = s.Update(ctx, store.Users, "no-existe", map[string]any{"role": "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteEsIdempotente(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	raw, err := s.Create(ctx, store.Suggestions, map[string]any{"text": "mejorar paso 3"})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	id := doc["id"].(string)

	require.NoError(t, s.Delete(ctx, store.Suggestions, id))
	require.NoError(t, s.Delete(ctx, store.Suggestions, id), "borrar dos veces no es error")

	snap, err := s.List(ctx, store.Suggestions)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestQueryPorCampoDePrimerNivel(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, store.OnboardingInstances, map[string]any{"employeeName": "Ana", "templateId": "t-1"})
	require.NoError(t, err)
	_, err = s.Create(ctx, store.OnboardingInstances, map[string]any{"employeeName": "Luis", "templateId": "t-2"})
	require.NoError(t, err)
	_, err = s.Create(ctx, store.OnboardingInstances, map[string]any{"employeeName": "Eva", "templateId": "t-1"})
	require.NoError(t, err)

	snap, err := s.Query(ctx, store.OnboardingInstances, "templateId", "t-1")
	require.NoError(t, err)
	assert.Len(t, snap, 2)
}

func TestArchivoDanadoSeReinicializaVacio(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, store.Users, map[string]any{"name": "Ana"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{esto no es json"), 0o644))

	snap, err := s.List(ctx, store.Users)
	require.NoError(t, err, "la corrupción no debe propagarse como error")
	assert.Empty(t, snap)

	// y el archivo queda utilizable para escrituras posteriores
	_, err = s.Create(ctx, store.Users, map[string]any{"name": "Luis"})
	require.NoError(t, err)
	snap, err = s.List(ctx, store.Users)
	require.NoError(t, err)
	assert.Len(t, snap, 1)
}

func TestPersisteEntreInstancias(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := New(dir, bus.New(), zerolog.Nop())
	require.NoError(t, err)
	_, err = s1.Create(ctx, store.Experts, map[string]any{"name": "Marta", "area": "IT"})
	require.NoError(t, err)

	s2, err := New(dir, bus.New(), zerolog.Nop())
	require.NoError(t, err)
	snap, err := s2.List(ctx, store.Experts)
	require.NoError(t, err)
	require.Len(t, snap, 1)
}

func TestSubscribeEntregaSnapshotInicialYCambios(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, store.Roles, map[string]any{"name": "QA"})
	require.NoError(t, err)

	var mu sync.Mutex
	var entregas []int
	cancel, err := s.Subscribe(ctx, store.Roles, func(snap store.Snapshot) {
		mu.Lock()
		entregas = append(entregas, len(snap))
		mu.Unlock()
	})
	require.NoError(t, err)
	defer cancel()

	esperar(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(entregas) >= 1
	})
	mu.Lock()
	assert.Equal(t, 1, entregas[0], "el snapshot inicial trae el estado actual")
	mu.Unlock()

	_, err = s.Create(ctx, store.Roles, map[string]any{"name": "DevOps"})
	require.NoError(t, err)

	esperar(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(entregas) >= 2 && entregas[len(entregas)-1] == 2
	})
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
