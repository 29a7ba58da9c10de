package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

const streamKeepalive = 15 * time.Second

// StreamHandler expone las colecciones como streams SSE: cada cambio entrega
// el snapshot completo de la colección. Todos los clientes de una misma
// colección comparten la suscripción subyacente al almacén.
type StreamHandler struct {
	store store.Store
}

// NewStreamHandler construye el handler.
func NewStreamHandler(s store.Store) *StreamHandler {
	return &StreamHandler{store: s}
}

// Collection godoc
// @Summary      Stream SSE de una colección
// @Description  Emite el snapshot completo en cada cambio (evento "snapshot").
// @Tags         stream
// @Security     Bearer
// @Produce      text/event-stream
// @Param        collection  path  string  true  "Nombre de la colección"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stream/{collection} [get]
func (h *StreamHandler) Collection(c *fiber.Ctx) error {
	collection := c.Params("collection")
	if !knownCollection(collection) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "colección desconocida"})
	}
	// Las credenciales jamás salen por el stream.
	if store.LocalOnly(collection) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "colección no disponible"})
	}

	// Canal con capacidad 1 y política último-gana: si el cliente va lento
	// solo le interesa el snapshot más reciente. Las entregas de una misma
	// suscripción llegan en serie, así que drenar y reenviar no compite.
	events := make(chan []byte, 1)
	cancel, err := h.store.Subscribe(context.Background(), collection, func(snap store.Snapshot) {
		payload, mErr := json.Marshal(snap)
		if mErr != nil {
			return
		}
		select {
		case events <- payload:
		default:
			select {
			case <-events:
			default:
			}
			events <- payload
		}
	})
	if err != nil {
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(streamKeepalive)
		defer ticker.Stop()
		for {
			select {
			case payload := <-events:
				if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
			}
			// El flush falla cuando el cliente corta; con eso se libera la suscripción.
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}

func knownCollection(name string) bool {
	for _, c := range store.All() {
		if c == name {
			return true
		}
	}
	return false
}
