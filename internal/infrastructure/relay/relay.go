// Package relay propaga los cambios del almacén local entre procesos mediante
// Redis pub/sub: cada escritura local se anuncia por canal y los demás
// procesos releen su colección al recibirla.
package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/internal/bus"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
	"github.com/jhoicas/Onboarding-api/pkg/config"
)

// channel es el canal Redis por el que viajan los anuncios de cambio.
const channel = "onboarding:changes"

// message es el anuncio publicado: qué colección cambió y qué proceso lo hizo,
// para que cada proceso descarte sus propios ecos.
type message struct {
	Instance   string `json:"instance"`
	Collection string `json:"collection"`
}

// Connect abre el cliente Redis y lo verifica con un ping. Devuelve nil si no
// hay Redis disponible: el relay es opcional y la app sigue operando sin él.
func Connect(cfg config.RedisConfig, log zerolog.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis no disponible; el relay entre procesos queda desactivado")
		_ = client.Close()
		return nil
	}
	log.Info().Str("addr", cfg.Addr).Msg("Redis conectado para el relay de cambios")
	return client
}

// Relay conecta el bus interno con el canal Redis en ambos sentidos.
type Relay struct {
	client *redis.Client
	bus    *bus.Bus
	log    zerolog.Logger
	id     string

	cancelBus []func()
	stop      context.CancelFunc
}

// New construye el relay sobre un cliente ya verificado.
func New(client *redis.Client, b *bus.Bus, log zerolog.Logger) *Relay {
	return &Relay{
		client: client,
		bus:    b,
		log:    log.With().Str("componente", "relay").Logger(),
		id:     uuid.NewString(),
	}
}

// Start enlaza el bus con Redis: los eventos locales se anuncian por el canal
// y los anuncios ajenos se reinyectan al bus sin documentos (fuerza relectura).
func (r *Relay) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r.stop = cancel

	for _, collection := range store.All() {
		col := collection
		cancelSub := r.bus.Subscribe(col, func(ev bus.Event) {
			if ev.Origin != bus.OriginLocal {
				return
			}
			r.announce(runCtx, col)
		})
		r.cancelBus = append(r.cancelBus, cancelSub)
	}

	go r.listen(runCtx)
}

// announce publica el cambio; es de mejor esfuerzo.
func (r *Relay) announce(ctx context.Context, collection string) {
	payload, err := json.Marshal(message{Instance: r.id, Collection: collection})
	if err != nil {
		return
	}
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		r.log.Warn().Err(err).Str("coleccion", collection).Msg("no se pudo anunciar el cambio por Redis")
	}
}

func (r *Relay) listen(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var msg message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil || msg.Collection == "" {
				r.log.Warn().Str("payload", m.Payload).Msg("anuncio de relay ilegible")
				continue
			}
			if msg.Instance == r.id {
				continue
			}
			r.bus.Publish(bus.Event{Collection: msg.Collection, Origin: bus.OriginRelay})
		}
	}
}

// Close detiene el relay y suelta sus suscripciones al bus.
func (r *Relay) Close() {
	if r.stop != nil {
		r.stop()
	}
	for _, cancel := range r.cancelBus {
		cancel()
	}
	r.cancelBus = nil
}
