package postgres

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// reconnectDelay es la espera entre reintentos cuando se pierde la conexión LISTEN.
const reconnectDelay = 3 * time.Second

type fetchFunc func(ctx context.Context, collection string) (store.Snapshot, error)

// listener mantiene una única conexión dedicada en LISTEN sobre el canal de
// cambios y reparte cada notificación a los observadores de su colección.
// Si la conexión se cae, reintenta en segundo plano hasta recuperarla.
type listener struct {
	pool *pgxpool.Pool
	log  zerolog.Logger

	mu      sync.Mutex
	subs    map[string]map[int]func(store.Snapshot)
	next    int
	started bool
	cancel  context.CancelFunc
}

func newListener(pool *pgxpool.Pool, log zerolog.Logger) *listener {
	return &listener{
		pool: pool,
		log:  log,
		subs: make(map[string]map[int]func(store.Snapshot)),
	}
}

// ensureStarted deja la conexión en LISTEN. El primer fallo se devuelve de
// forma síncrona para que el suscriptor sepa que la suscripción no quedó activa.
func (l *listener) ensureStarted(ctx context.Context, fetch fetchFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}

	conn, err := l.listenConn(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.started = true
	go l.run(runCtx, conn, fetch)
	return nil
}

// listenConn toma una conexión del pool y la deja suscrita al canal de cambios.
func (l *listener) listenConn(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		conn.Release()
		return nil, err
	}
	return conn, nil
}

func (l *listener) run(ctx context.Context, conn *pgxpool.Conn, fetch fetchFunc) {
	defer func() {
		if conn != nil {
			conn.Release()
		}
	}()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.log.Warn().Err(err).Msg("conexión LISTEN perdida; reintentando")
			conn.Release()
			conn = l.reacquire(ctx)
			if conn == nil {
				return
			}
			continue
		}
		l.dispatch(ctx, n.Payload, fetch)
	}
}

// reacquire reintenta la conexión LISTEN hasta lograrla o hasta que se cierre el listener.
func (l *listener) reacquire(ctx context.Context) *pgxpool.Conn {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
		conn, err := l.listenConn(ctx)
		if err != nil {
			l.log.Warn().Err(err).Msg("no se pudo restablecer la conexión LISTEN")
			continue
		}
		l.log.Info().Msg("conexión LISTEN restablecida")
		return conn
	}
}

// dispatch interpreta la notificación y entrega el snapshot fresco a los
// observadores de la colección anunciada.
func (l *listener) dispatch(ctx context.Context, payload string, fetch fetchFunc) {
	var msg struct {
		Collection string `json:"collection"`
	}
	if err := json.Unmarshal([]byte(payload), &msg); err != nil || msg.Collection == "" {
		l.log.Warn().Str("payload", payload).Msg("notificación de cambio ilegible")
		return
	}

	l.mu.Lock()
	fns := make([]func(store.Snapshot), 0, len(l.subs[msg.Collection]))
	for _, fn := range l.subs[msg.Collection] {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	if len(fns) == 0 {
		return
	}

	snap, err := fetch(ctx, msg.Collection)
	if err != nil {
		l.log.Warn().Err(err).Str("coleccion", msg.Collection).Msg("no se pudo recargar la colección notificada")
		return
	}
	for _, fn := range fns {
		fn(snap)
	}
}

// add registra un observador y devuelve su cancelación.
func (l *listener) add(collection string, fn func(store.Snapshot)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	id := l.next
	if l.subs[collection] == nil {
		l.subs[collection] = make(map[int]func(store.Snapshot))
	}
	l.subs[collection][id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if m := l.subs[collection]; m != nil {
			delete(m, id)
			if len(m) == 0 {
				delete(l.subs, collection)
			}
		}
	}
}

func (l *listener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.started = false
}
