package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/application/usecase"
)

// ExpertHandler maneja el directorio de expertos internos (protegido).
type ExpertHandler struct {
	uc *usecase.ExpertUseCase
}

// NewExpertHandler construye el handler.
func NewExpertHandler(uc *usecase.ExpertUseCase) *ExpertHandler {
	return &ExpertHandler{uc: uc}
}

// List devuelve todos los expertos.
// GET /api/experts
func (h *ExpertHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID devuelve un experto.
// GET /api/experts/:id
func (h *ExpertHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create registra un experto.
// POST /api/experts
func (h *ExpertHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExpertRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), Actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update actualiza un experto.
// PUT /api/experts/:id
func (h *ExpertHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateExpertRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), Actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina un experto.
// DELETE /api/experts/:id
func (h *ExpertHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), Actor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "experto eliminado"})
}
