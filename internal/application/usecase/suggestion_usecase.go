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

// SuggestionUseCase administra las sugerencias de mejora sobre los pasos.
type SuggestionUseCase struct {
	suggestions store.Records[entity.Suggestion]
	activity    *ActivityUseCase
	log         zerolog.Logger
}

// NewSuggestionUseCase construye el caso de uso.
func NewSuggestionUseCase(s store.Store, activity *ActivityUseCase, log zerolog.Logger) *SuggestionUseCase {
	return &SuggestionUseCase{
		suggestions: store.NewRecords[entity.Suggestion](s, store.Suggestions),
		activity:    activity,
		log:         log.With().Str("componente", "sugerencias").Logger(),
	}
}

// List devuelve todas las sugerencias.
func (uc *SuggestionUseCase) List(ctx context.Context) ([]entity.Suggestion, error) {
	return uc.suggestions.List(ctx)
}

// Create registra una sugerencia nueva, siempre en estado pending.
func (uc *SuggestionUseCase) Create(ctx context.Context, actor string, in dto.CreateSuggestionRequest) (entity.Suggestion, error) {
	if err := domain.RequireFields(map[string]string{
		"author": in.Author,
		"text":   in.Text,
	}); err != nil {
		return entity.Suggestion{}, err
	}
	created, err := uc.suggestions.Create(ctx, entity.Suggestion{
		StepID: in.StepID,
		Author: strings.TrimSpace(in.Author),
		Text:   strings.TrimSpace(in.Text),
		Status: entity.SuggestionPending,
	})
	if err != nil {
		return entity.Suggestion{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("envió una sugerencia para el paso %d", created.StepID))
	return created, nil
}

// Update modera una sugerencia: cambia su estado o corrige el texto.
func (uc *SuggestionUseCase) Update(ctx context.Context, actor, id string, in dto.UpdateSuggestionRequest) (entity.Suggestion, error) {
	patch := in.Patch()
	if len(patch) == 0 {
		return entity.Suggestion{}, domain.NewValidation("parche", "no contiene campos")
	}
	updated, err := uc.suggestions.Update(ctx, id, patch)
	if err != nil {
		return entity.Suggestion{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("moderó la sugerencia %s (%s)", updated.ID, updated.Status))
	return updated, nil
}

// Delete elimina una sugerencia.
func (uc *SuggestionUseCase) Delete(ctx context.Context, actor, id string) error {
	if err := uc.suggestions.Delete(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor, "eliminó una sugerencia")
	return nil
}
