package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/application/usecase"
)

// ProfileHandler maneja los perfiles y sus vínculos con plantillas (protegido).
type ProfileHandler struct {
	uc *usecase.ProfileUseCase
}

// NewProfileHandler construye el handler.
func NewProfileHandler(uc *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

// List devuelve todos los perfiles.
// GET /api/profiles
func (h *ProfileHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID devuelve un perfil.
// GET /api/profiles/:id
func (h *ProfileHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create crea un perfil.
// POST /api/profiles
func (h *ProfileHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), Actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update actualiza un perfil.
// PUT /api/profiles/:id
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), Actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina un perfil junto con sus vínculos perfil-plantilla.
// DELETE /api/profiles/:id
func (h *ProfileHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), Actor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "perfil eliminado"})
}

// ListLinks devuelve los vínculos perfil-plantilla, filtrables por perfil.
// GET /api/profile-templates?profileId=...
func (h *ProfileHandler) ListLinks(c *fiber.Ctx) error {
	out, err := h.uc.ListLinks(c.Context(), c.Query("profileId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateLink vincula un perfil con una plantilla; el par es único.
// POST /api/profile-templates
func (h *ProfileHandler) CreateLink(c *fiber.Ctx) error {
	var in dto.CreateProfileTemplateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateLink(c.Context(), Actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeleteLink elimina un vínculo perfil-plantilla.
// DELETE /api/profile-templates/:id
func (h *ProfileHandler) DeleteLink(c *fiber.Ctx) error {
	if err := h.uc.DeleteLink(c.Context(), Actor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "vínculo eliminado"})
}
