package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// TemplateUseCase administra las plantillas de onboarding y la sincronización
// de sus pasos hacia las instancias ya creadas.
type TemplateUseCase struct {
	templates store.Records[entity.Template]
	instances store.Records[entity.OnboardingInstance]
	activity  *ActivityUseCase
	log       zerolog.Logger
}

// NewTemplateUseCase construye el caso de uso.
func NewTemplateUseCase(s store.Store, activity *ActivityUseCase, log zerolog.Logger) *TemplateUseCase {
	return &TemplateUseCase{
		templates: store.NewRecords[entity.Template](s, store.Templates),
		instances: store.NewRecords[entity.OnboardingInstance](s, store.OnboardingInstances),
		activity:  activity,
		log:       log.With().Str("componente", "templates").Logger(),
	}
}

// List devuelve todas las plantillas.
func (uc *TemplateUseCase) List(ctx context.Context) ([]entity.Template, error) {
	return uc.templates.List(ctx)
}

// Get obtiene una plantilla por ID.
func (uc *TemplateUseCase) Get(ctx context.Context, id string) (entity.Template, error) {
	return uc.templates.Get(ctx, id)
}

// Create da de alta una plantilla validando la unicidad de los IDs de sus pasos.
func (uc *TemplateUseCase) Create(ctx context.Context, actor string, in dto.CreateTemplateRequest) (entity.Template, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.Template{}, domain.NewValidation("name", "es obligatorio")
	}
	steps, err := stepsFromPayload(in.Steps)
	if err != nil {
		return entity.Template{}, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	created, err := uc.templates.Create(ctx, entity.Template{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Role:        strings.TrimSpace(in.Role),
		Steps:       steps,
		IsActive:    active,
		CreatedBy:   actor,
	})
	if err != nil {
		return entity.Template{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("creó la plantilla %s", created.Name))
	return created, nil
}

// Update aplica un parche parcial. Si el parche trae pasos, tras guardar la
// plantilla se sincronizan las instancias que dependen de ella.
func (uc *TemplateUseCase) Update(ctx context.Context, actor, id string, in dto.UpdateTemplateRequest) (entity.Template, error) {
	patch := in.Patch()
	var steps []entity.Step
	if in.Steps != nil {
		converted, err := stepsFromPayload(*in.Steps)
		if err != nil {
			return entity.Template{}, err
		}
		steps = converted
		patch["steps"] = steps
	}
	if len(patch) == 0 {
		return entity.Template{}, domain.NewValidation("parche", "no contiene campos")
	}

	updated, err := uc.templates.Update(ctx, id, patch)
	if err != nil {
		return entity.Template{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("actualizó la plantilla %s", updated.Name))

	if in.Steps != nil {
		uc.syncInstances(ctx, updated.ID, updated.Steps)
	}
	return updated, nil
}

// Delete elimina la plantilla. Las instancias existentes conservan su copia de
// pasos, así que no se bloquea el borrado.
func (uc *TemplateUseCase) Delete(ctx context.Context, actor, id string) error {
	name := id
	if tpl, err := uc.templates.Get(ctx, id); err == nil {
		name = tpl.Name
	}
	if err := uc.templates.Delete(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("eliminó la plantilla %s", name))
	return nil
}

// Sync propaga los pasos actuales de la plantilla hacia sus instancias y
// devuelve cuántas se actualizaron.
func (uc *TemplateUseCase) Sync(ctx context.Context, actor, id string) (int, error) {
	tpl, err := uc.templates.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	updated := uc.syncInstances(ctx, tpl.ID, tpl.Steps)
	uc.activity.Record(ctx, actor, fmt.Sprintf("sincronizó la plantilla %s con sus instancias", tpl.Name))
	return updated, nil
}

// syncInstances agrega a cada instancia de la plantilla los pasos que le
// falten (por ID, en estado pending, sin tocar los existentes) y recalcula su
// progreso. Los fallos por instancia se registran y el recorrido continúa:
// la escritura de la plantilla ya quedó confirmada y no se revierte.
func (uc *TemplateUseCase) syncInstances(ctx context.Context, templateID string, steps []entity.Step) int {
	instances, err := uc.instances.Query(ctx, "templateId", templateID)
	if err != nil {
		uc.log.Warn().Err(err).Str("plantilla", templateID).Msg("sincronización: no se pudieron consultar las instancias")
		return 0
	}

	updated := 0
	for _, inst := range instances {
		merged, changed := entity.MergeTemplateSteps(inst.Steps, steps)
		if !changed {
			continue
		}
		inst.Steps = merged
		inst.Recompute()
		_, err := uc.instances.Update(ctx, inst.ID, map[string]any{
			"steps":    merged,
			"progress": inst.Progress,
			"status":   inst.Status,
		})
		if err != nil {
			uc.log.Warn().Err(err).Str("instancia", inst.ID).Msg("sincronización: no se pudo actualizar la instancia")
			continue
		}
		updated++
	}
	return updated
}

// stepsFromPayload convierte y valida los pasos recibidos: título obligatorio
// e IDs únicos dentro de la lista; el estado ausente queda en pending.
func stepsFromPayload(payload []dto.StepPayload) ([]entity.Step, error) {
	steps := make([]entity.Step, 0, len(payload))
	for _, p := range payload {
		if strings.TrimSpace(p.Title) == "" {
			return nil, domain.NewValidation("steps", fmt.Sprintf("el paso %d no tiene título", p.ID))
		}
		s := entity.Step{
			ID:          p.ID,
			Title:       strings.TrimSpace(p.Title),
			Description: p.Description,
			Role:        p.Role,
			Owner:       p.Owner,
			Expert:      p.Expert,
			Status:      p.Status,
			Link:        p.Link,
		}
		s.Status = s.NormalizeStatus()
		steps = append(steps, s)
	}
	if dup, ok := entity.ValidateSteps(steps); !ok {
		return nil, domain.NewValidation("steps", fmt.Sprintf("id de paso duplicado: %d", dup))
	}
	return steps, nil
}
