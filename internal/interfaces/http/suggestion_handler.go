package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/application/usecase"
)

// SuggestionHandler maneja las sugerencias de mejora (protegido).
type SuggestionHandler struct {
	uc *usecase.SuggestionUseCase
}

// NewSuggestionHandler construye el handler.
func NewSuggestionHandler(uc *usecase.SuggestionUseCase) *SuggestionHandler {
	return &SuggestionHandler{uc: uc}
}

// List devuelve todas las sugerencias.
// GET /api/suggestions
func (h *SuggestionHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create registra una sugerencia; cualquier usuario autenticado puede proponerlas.
// POST /api/suggestions
func (h *SuggestionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSuggestionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), Actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update modera una sugerencia (cambia estado o texto).
// PUT /api/suggestions/:id
func (h *SuggestionHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSuggestionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), Actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina una sugerencia.
// DELETE /api/suggestions/:id
func (h *SuggestionHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), Actor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "sugerencia eliminada"})
}
