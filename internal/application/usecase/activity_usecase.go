package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/queue"
)

// ActivityUseCase administra el historial de acciones. El registro es de mejor
// esfuerzo: un fallo al anotar la actividad jamás interrumpe la operación que
// la originó.
type ActivityUseCase struct {
	records store.Records[entity.Activity]
	queue   *queue.Publisher
	log     zerolog.Logger
}

// NewActivityUseCase construye el caso de uso. publisher puede ser nil (sin broker).
func NewActivityUseCase(s store.Store, publisher *queue.Publisher, log zerolog.Logger) *ActivityUseCase {
	return &ActivityUseCase{
		records: store.NewRecords[entity.Activity](s, store.Activities),
		queue:   publisher,
		log:     log.With().Str("componente", "activity").Logger(),
	}
}

// Record anota la acción en el historial y la publica en la cola de auditoría.
func (uc *ActivityUseCase) Record(ctx context.Context, actor, action string) {
	act := entity.Activity{
		Action:    action,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	}
	if _, err := uc.records.Create(ctx, act); err != nil {
		uc.log.Warn().Err(err).Str("accion", action).Msg("no se pudo registrar la actividad")
	}
	uc.queue.Publish(ctx, queue.ActivityEvent{
		Actor:  act.Actor,
		Action: act.Action,
		At:     act.Timestamp,
	})
}

// Create registra una entrada enviada explícitamente por la API.
func (uc *ActivityUseCase) Create(ctx context.Context, in dto.CreateActivityRequest) (entity.Activity, error) {
	if err := domain.RequireFields(map[string]string{
		"action": in.Action,
		"actor":  in.Actor,
	}); err != nil {
		return entity.Activity{}, err
	}
	return uc.records.Create(ctx, entity.Activity{
		Action:    in.Action,
		Actor:     in.Actor,
		Timestamp: time.Now().UTC(),
	})
}

// List devuelve el historial completo, del más reciente al más antiguo.
func (uc *ActivityUseCase) List(ctx context.Context) ([]entity.Activity, error) {
	acts, err := uc.records.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].Timestamp.After(acts[j].Timestamp)
	})
	return acts, nil
}
