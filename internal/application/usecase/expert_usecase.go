package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// ExpertUseCase administra las personas de referencia asignables a pasos.
type ExpertUseCase struct {
	experts  store.Records[entity.Expert]
	activity *ActivityUseCase
}

// NewExpertUseCase construye el caso de uso.
func NewExpertUseCase(s store.Store, activity *ActivityUseCase) *ExpertUseCase {
	return &ExpertUseCase{
		experts:  store.NewRecords[entity.Expert](s, store.Experts),
		activity: activity,
	}
}

// List devuelve todas las personas de referencia.
func (uc *ExpertUseCase) List(ctx context.Context) ([]entity.Expert, error) {
	return uc.experts.List(ctx)
}

// Get obtiene una persona de referencia por ID.
func (uc *ExpertUseCase) Get(ctx context.Context, id string) (entity.Expert, error) {
	return uc.experts.Get(ctx, id)
}

// Create registra una persona de referencia.
func (uc *ExpertUseCase) Create(ctx context.Context, actor string, in dto.CreateExpertRequest) (entity.Expert, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.Expert{}, domain.NewValidation("name", "es obligatorio")
	}
	if in.Email != "" && !domain.ValidEmail(in.Email) {
		return entity.Expert{}, domain.NewValidation("email", "forma de correo inválida")
	}
	created, err := uc.experts.Create(ctx, entity.Expert{
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		Area:      strings.TrimSpace(in.Area),
		CreatedBy: actor,
	})
	if err != nil {
		return entity.Expert{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("registró a %s como referente", created.Name))
	return created, nil
}

// Update aplica un parche parcial.
func (uc *ExpertUseCase) Update(ctx context.Context, actor, id string, in dto.UpdateExpertRequest) (entity.Expert, error) {
	patch := in.Patch()
	if len(patch) == 0 {
		return entity.Expert{}, domain.NewValidation("parche", "no contiene campos")
	}
	if in.Email != nil && *in.Email != "" && !domain.ValidEmail(*in.Email) {
		return entity.Expert{}, domain.NewValidation("email", "forma de correo inválida")
	}
	updated, err := uc.experts.Update(ctx, id, patch)
	if err != nil {
		return entity.Expert{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("actualizó al referente %s", updated.Name))
	return updated, nil
}

// Delete elimina una persona de referencia.
func (uc *ExpertUseCase) Delete(ctx context.Context, actor, id string) error {
	if err := uc.experts.Delete(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor, "eliminó a un referente")
	return nil
}
