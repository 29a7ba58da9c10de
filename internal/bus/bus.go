// Package bus implementa el intercambio de eventos de cambio dentro del
// proceso: cada escritura local publica el snapshot de su colección y los
// suscriptores lo reciben con coalescencia (solo importa el último estado).
package bus

import (
	"encoding/json"
	"sync"
)

// Origin identifica la procedencia de un evento de cambio.
type Origin string

const (
	// OriginLocal marca cambios producidos por una escritura de este proceso.
	OriginLocal Origin = "local"
	// OriginRelay marca cambios anunciados por otro proceso a través del relay.
	OriginRelay Origin = "relay"
)

// Event es un cambio en una colección. Docs trae el snapshot completo cuando
// el emisor lo conoce; nil indica que el consumidor debe releer su almacén.
type Event struct {
	Collection string
	Docs       []json.RawMessage
	Origin     Origin
}

type subscriber struct {
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// push entrega el evento con política de último-gana: si el suscriptor tiene
// uno pendiente sin procesar, se descarta en favor del más reciente.
func (s *subscriber) push(ev Event) {
	for {
		select {
		case s.ch <- ev:
			return
		case <-s.done:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *subscriber) run(fn func(Event)) {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.ch:
			fn(ev)
		}
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

// Bus distribuye eventos de cambio por colección dentro del proceso.
type Bus struct {
	mu   sync.Mutex
	subs map[string]map[int]*subscriber
	next int
}

// New construye un bus vacío.
func New() *Bus {
	return &Bus{subs: make(map[string]map[int]*subscriber)}
}

// Publish entrega el evento a todos los suscriptores de su colección.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	targets := make([]*subscriber, 0, len(b.subs[ev.Collection]))
	for _, s := range b.subs[ev.Collection] {
		targets = append(targets, s)
	}
	b.mu.Unlock()

	for _, s := range targets {
		s.push(ev)
	}
}

// Subscribe registra un observador de la colección. fn se invoca siempre desde
// una única goroutine propia del suscriptor. La cancelación es idempotente.
func (b *Bus) Subscribe(collection string, fn func(Event)) (cancel func()) {
	return b.subscribe(collection, nil, fn)
}

// SubscribeWithInitial registra el observador y le entrega de inmediato el
// evento inicial por el mismo canal coalescente, de modo que un cambio
// concurrente nunca se procese fuera de orden respecto del snapshot inicial.
func (b *Bus) SubscribeWithInitial(collection string, initial Event, fn func(Event)) (cancel func()) {
	return b.subscribe(collection, &initial, fn)
}

func (b *Bus) subscribe(collection string, initial *Event, fn func(Event)) func() {
	s := &subscriber{
		ch:   make(chan Event, 1),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	b.next++
	id := b.next
	if b.subs[collection] == nil {
		b.subs[collection] = make(map[int]*subscriber)
	}
	b.subs[collection][id] = s
	b.mu.Unlock()

	go s.run(fn)
	if initial != nil {
		s.push(*initial)
	}

	return func() {
		b.mu.Lock()
		if m := b.subs[collection]; m != nil {
			delete(m, id)
			if len(m) == 0 {
				delete(b.subs, collection)
			}
		}
		b.mu.Unlock()
		s.stop()
	}
}

// SubscriberCount devuelve cuántos observadores tiene la colección.
func (b *Bus) SubscriberCount(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[collection])
}
