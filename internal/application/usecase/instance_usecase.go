package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// Provisioner da de alta las credenciales y el usuario de un empleado cuando
// arranca su onboarding. Lo implementa el caso de uso de autenticación.
type Provisioner interface {
	EnsureAccess(ctx context.Context, email, name string) error
}

// InstanceUseCase administra las instancias de onboarding: el recorrido
// concreto de cada empleado sobre una copia de los pasos de su plantilla.
type InstanceUseCase struct {
	instances   store.Records[entity.OnboardingInstance]
	templates   store.Records[entity.Template]
	provisioner Provisioner
	activity    *ActivityUseCase
	log         zerolog.Logger
}

// NewInstanceUseCase construye el caso de uso. El provisioner puede ser nil
// (por ejemplo en pruebas): en ese caso no se crean accesos automáticos.
func NewInstanceUseCase(s store.Store, provisioner Provisioner, activity *ActivityUseCase, log zerolog.Logger) *InstanceUseCase {
	return &InstanceUseCase{
		instances:   store.NewRecords[entity.OnboardingInstance](s, store.OnboardingInstances),
		templates:   store.NewRecords[entity.Template](s, store.Templates),
		provisioner: provisioner,
		activity:    activity,
		log:         log.With().Str("componente", "instancias").Logger(),
	}
}

// List devuelve todas las instancias.
func (uc *InstanceUseCase) List(ctx context.Context) ([]entity.OnboardingInstance, error) {
	return uc.instances.List(ctx)
}

// Get obtiene una instancia por ID.
func (uc *InstanceUseCase) Get(ctx context.Context, id string) (entity.OnboardingInstance, error) {
	return uc.instances.Get(ctx, id)
}

// Create arranca el onboarding de un empleado: copia por valor los pasos de la
// plantilla (todos en pending), deja el progreso en 0 y el estado en active, y
// aprovisiona el acceso del empleado sin bloquear la creación si eso falla.
func (uc *InstanceUseCase) Create(ctx context.Context, actor string, in dto.CreateInstanceRequest) (entity.OnboardingInstance, error) {
	if err := domain.RequireFields(map[string]string{
		"employeeName":  in.EmployeeName,
		"employeeEmail": in.EmployeeEmail,
		"templateId":    in.TemplateID,
	}); err != nil {
		return entity.OnboardingInstance{}, err
	}
	if !domain.ValidEmail(in.EmployeeEmail) {
		return entity.OnboardingInstance{}, domain.NewValidation("employeeEmail", "no es un correo válido")
	}

	tpl, err := uc.templates.Get(ctx, in.TemplateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return entity.OnboardingInstance{}, domain.NewValidation("templateId", "la plantilla no existe")
		}
		return entity.OnboardingInstance{}, fmt.Errorf("consultando la plantilla: %w", err)
	}

	steps := entity.CloneSteps(tpl.Steps)
	for i := range steps {
		steps[i].Status = entity.StepPending
	}

	inst := entity.OnboardingInstance{
		EmployeeName:  strings.TrimSpace(in.EmployeeName),
		EmployeeEmail: strings.TrimSpace(in.EmployeeEmail),
		Role:          strings.TrimSpace(in.Role),
		Department:    strings.TrimSpace(in.Department),
		TemplateID:    tpl.ID,
		StartDate:     strings.TrimSpace(in.StartDate),
		Steps:         steps,
		Progress:      0,
		Status:        entity.InstanceActive,
		CreatedBy:     actor,
	}
	if inst.Role == "" {
		inst.Role = tpl.Role
	}

	created, err := uc.instances.Create(ctx, inst)
	if err != nil {
		return entity.OnboardingInstance{}, err
	}

	if uc.provisioner != nil {
		if err := uc.provisioner.EnsureAccess(ctx, created.EmployeeEmail, created.EmployeeName); err != nil {
			uc.log.Warn().Err(err).Str("email", created.EmployeeEmail).Msg("no se pudo aprovisionar el acceso del empleado")
		}
	}

	uc.activity.Record(ctx, actor, fmt.Sprintf("inició el onboarding de %s", created.EmployeeName))
	return created, nil
}

// Update aplica un parche parcial sobre los datos del empleado.
func (uc *InstanceUseCase) Update(ctx context.Context, actor, id string, in dto.UpdateInstanceRequest) (entity.OnboardingInstance, error) {
	patch := in.Patch()
	if len(patch) == 0 {
		return entity.OnboardingInstance{}, domain.NewValidation("parche", "no contiene campos")
	}
	updated, err := uc.instances.Update(ctx, id, patch)
	if err != nil {
		return entity.OnboardingInstance{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("actualizó el onboarding de %s", updated.EmployeeName))
	return updated, nil
}

// UpdateStepStatus cambia el estado de un paso concreto y recalcula progreso y
// estado de la instancia. Completar el último paso la marca completed; reabrir
// un paso de una instancia completada la devuelve a active.
func (uc *InstanceUseCase) UpdateStepStatus(ctx context.Context, actor, id string, stepID int, in dto.UpdateStepStatusRequest) (entity.OnboardingInstance, error) {
	status := strings.ToLower(strings.TrimSpace(in.Status))
	switch status {
	case entity.StepPending, entity.StepCompleted, entity.StepStuck:
	default:
		return entity.OnboardingInstance{}, domain.NewValidation("status", "debe ser pending, completed o stuck")
	}

	inst, err := uc.instances.Get(ctx, id)
	if err != nil {
		return entity.OnboardingInstance{}, err
	}
	idx := entity.FindStep(inst.Steps, stepID)
	if idx < 0 {
		return entity.OnboardingInstance{}, fmt.Errorf("%w: el paso %d no existe; los pasos válidos son %v",
			domain.ErrNotFound, stepID, entity.StepIDs(inst.Steps))
	}

	inst.Steps[idx].Status = status
	inst.Recompute()

	updated, err := uc.instances.Update(ctx, id, map[string]any{
		"steps":    inst.Steps,
		"progress": inst.Progress,
		"status":   inst.Status,
	})
	if err != nil {
		return entity.OnboardingInstance{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("marcó el paso %d de %s como %s", stepID, updated.EmployeeName, status))
	return updated, nil
}

// Delete elimina la instancia.
func (uc *InstanceUseCase) Delete(ctx context.Context, actor, id string) error {
	name := id
	if inst, err := uc.instances.Get(ctx, id); err == nil {
		name = inst.EmployeeName
	}
	if err := uc.instances.Delete(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("eliminó el onboarding de %s", name))
	return nil
}
