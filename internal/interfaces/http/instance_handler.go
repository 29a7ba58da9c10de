package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/application/usecase"
)

// InstanceHandler maneja las instancias de onboarding (protegido).
type InstanceHandler struct {
	uc *usecase.InstanceUseCase
}

// NewInstanceHandler construye el handler.
func NewInstanceHandler(uc *usecase.InstanceUseCase) *InstanceHandler {
	return &InstanceHandler{uc: uc}
}

// List godoc
// @Summary      Listar instancias de onboarding
// @Tags         instances
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  entity.OnboardingInstance
// @Router       /api/instances [get]
func (h *InstanceHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener instancia por ID
// @Tags         instances
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la instancia"
// @Success      200  {object}  entity.OnboardingInstance
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/instances/{id} [get]
func (h *InstanceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Iniciar onboarding de un empleado
// @Description  Copia los pasos de la plantilla y aprovisiona el acceso del empleado.
// @Tags         instances
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInstanceRequest  true  "Datos del empleado y plantilla"
// @Success      201   {object}  entity.OnboardingInstance
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/instances [post]
func (h *InstanceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInstanceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), Actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar datos de una instancia
// @Tags         instances
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la instancia"
// @Param        body  body  dto.UpdateInstanceRequest  true  "Campos a actualizar"
// @Success      200   {object}  entity.OnboardingInstance
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/instances/{id} [put]
func (h *InstanceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInstanceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), Actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStep godoc
// @Summary      Cambiar el estado de un paso
// @Description  Recalcula el progreso; completar el último paso marca la instancia como completed.
// @Tags         instances
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID de la instancia"
// @Param        stepId  path  int     true  "ID del paso"
// @Param        body    body  dto.UpdateStepStatusRequest  true  "Estado nuevo"
// @Success      200     {object}  entity.OnboardingInstance
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/instances/{id}/steps/{stepId} [patch]
func (h *InstanceHandler) UpdateStep(c *fiber.Ctx) error {
	stepID, err := strconv.Atoi(c.Params("stepId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "stepId debe ser un entero"})
	}
	var in dto.UpdateStepStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateStepStatus(c.Context(), Actor(c), c.Params("id"), stepID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar instancia
// @Tags         instances
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la instancia"
// @Success      200  {object}  dto.MessageResponse
// @Router       /api/instances/{id} [delete]
func (h *InstanceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), Actor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "instancia eliminada"})
}
