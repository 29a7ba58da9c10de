// Package queue publica los hechos de actividad en RabbitMQ y los consume
// hacia un archivo de auditoría. Es una tubería de mejor esfuerzo: si el
// broker no está, la aplicación sigue funcionando sin rastro externo.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/pkg/config"
)

// activityQueue es la cola durable donde se acumulan los hechos de actividad.
const activityQueue = "onboarding.activity"

// ActivityEvent es el hecho auditable que viaja por la cola.
type ActivityEvent struct {
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Connect abre la conexión AMQP. Devuelve nil si el broker no responde: la
// auditoría externa es opcional.
func Connect(cfg config.AMQPConfig, log zerolog.Logger) *amqp.Connection {
	if cfg.URL == "" {
		return nil
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ no disponible; la auditoría externa queda desactivada")
		return nil
	}
	log.Info().Msg("RabbitMQ conectado para la cola de actividad")
	return conn
}

// Publisher emite hechos de actividad a la cola.
type Publisher struct {
	ch  *amqp.Channel
	log zerolog.Logger
}

// NewPublisher abre el canal y declara la cola durable.
func NewPublisher(conn *amqp.Connection, log zerolog.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(activityQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &Publisher{ch: ch, log: log.With().Str("componente", "queue").Logger()}, nil
}

// Publish encola el hecho. Un fallo se registra y no interrumpe la operación
// que lo originó.
func (p *Publisher) Publish(ctx context.Context, ev ActivityEvent) {
	if p == nil {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	err = p.ch.PublishWithContext(ctx, "", activityQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.At,
		Body:         body,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("accion", ev.Action).Msg("no se pudo encolar el hecho de actividad")
	}
}

// Close cierra el canal del publicador.
func (p *Publisher) Close() {
	if p != nil && p.ch != nil {
		_ = p.ch.Close()
	}
}
