package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// consumeRetryDelay es la espera entre reintentos cuando el canal de consumo se cae.
const consumeRetryDelay = 5 * time.Second

// Consumer drena la cola de actividad hacia un archivo de auditoría en disco,
// una línea JSON por hecho.
type Consumer struct {
	conn *amqp.Connection
	path string
	log  zerolog.Logger
}

// NewConsumer prepara el consumidor que escribe en path.
func NewConsumer(conn *amqp.Connection, path string, log zerolog.Logger) *Consumer {
	return &Consumer{
		conn: conn,
		path: path,
		log:  log.With().Str("componente", "queue-consumer").Logger(),
	}
}

// Start consume en segundo plano hasta que el contexto termine, reintentando
// si el canal se pierde.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		for {
			if err := c.consume(ctx); err != nil && ctx.Err() == nil {
				c.log.Warn().Err(err).Msg("consumo de actividad interrumpido; reintentando")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(consumeRetryDelay):
			}
		}
	}()
}

func (c *Consumer) consume(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("abriendo canal: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(activityQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declarando cola: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("configurando QoS: %w", err)
	}
	deliveries, err := ch.Consume(activityQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("iniciando consumo: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("canal de entregas cerrado")
			}
			if err := c.append(d.Body); err != nil {
				c.log.Error().Err(err).Msg("no se pudo escribir el hecho en el archivo de auditoría")
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// append agrega el hecho como línea JSON al archivo de auditoría.
func (c *Consumer) append(body []byte) error {
	if !json.Valid(body) {
		// hechos malformados se descartan dejando constancia
		c.log.Warn().Str("cuerpo", string(body)).Msg("hecho de actividad ilegible; descartado")
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(body, '\n')); err != nil {
		return err
	}
	return nil
}
