package bus

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
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

func TestPublishEntregaALosSuscriptoresDeLaColeccion(t *testing.T) {
	b := New()

	var mu sync.Mutex
	var recibidos []Event
	cancel := b.Subscribe("users", func(ev Event) {
		mu.Lock()
		recibidos = append(recibidos, ev)
		mu.Unlock()
	})
	defer cancel()

	b.Publish(Event{Collection: "users", Origin: OriginLocal})
	b.Publish(Event{Collection: "roles", Origin: OriginLocal})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(recibidos) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, recibidos, 1, "los eventos de otras colecciones no deben llegar")
	assert.Equal(t, "users", recibidos[0].Collection)
}

func TestCoalescenciaConservaElUltimoEvento(t *testing.T) {
	b := New()

	bloqueo := make(chan struct{})
	var mu sync.Mutex
	var vistos []string

	cancel := b.Subscribe("users", func(ev Event) {
		<-bloqueo
		mu.Lock()
		vistos = append(vistos, string(ev.Docs[0]))
		mu.Unlock()
	})
	defer cancel()

	for _, v := range []string{`"a"`, `"b"`, `"c"`} {
		b.Publish(Event{Collection: "users", Docs: []json.RawMessage{json.RawMessage(v)}})
	}
	close(bloqueo)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(vistos) >= 1 && vistos[len(vistos)-1] == `"c"`
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Less(t, len(vistos), 3, "los eventos intermedios deben coalescer")
	assert.Equal(t, `"c"`, vistos[len(vistos)-1], "el último estado nunca se pierde")
}

func TestSubscribeWithInitialEntregaElSnapshotInmediato(t *testing.T) {
	b := New()

	var mu sync.Mutex
	var primero *Event
	cancel := b.SubscribeWithInitial("templates", Event{Collection: "templates", Origin: OriginLocal}, func(ev Event) {
		mu.Lock()
		if primero == nil {
			e := ev
			primero = &e
		}
		mu.Unlock()
	})
	defer cancel()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return primero != nil
	})
}

func TestCancelEsIdempotenteYRetiraAlSuscriptor(t *testing.T) {
	b := New()

	cancel := b.Subscribe("users", func(Event) {})
	otro := b.Subscribe("users", func(Event) {})
	require.Equal(t, 2, b.SubscriberCount("users"))

	cancel()
	cancel()
	assert.Equal(t, 1, b.SubscriberCount("users"))

	otro()
	assert.Equal(t, 0, b.SubscriberCount("users"))

	// publicar sin suscriptores no debe bloquear ni entrar en pánico
	b.Publish(Event{Collection: "users"})
}
