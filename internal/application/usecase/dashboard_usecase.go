package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

const dashboardRecentActivity = 10 // entradas del historial en el widget del panel

// listResult transporta el resultado de una consulta lanzada en paralelo.
type listResult[T any] struct {
	rows []T
	err  error
}

func fetchList[T any](ctx context.Context, r store.Records[T], ch chan<- listResult[T]) {
	rows, err := r.List(ctx)
	ch <- listResult[T]{rows, err}
}

// DashboardUseCase genera el resumen del panel de administración: totales,
// progreso promedio, pasos atascados y actividad reciente.
type DashboardUseCase struct {
	users       store.Records[entity.User]
	templates   store.Records[entity.Template]
	instances   store.Records[entity.OnboardingInstance]
	suggestions store.Records[entity.Suggestion]
	activities  store.Records[entity.Activity]
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(s store.Store) *DashboardUseCase {
	return &DashboardUseCase{
		users:       store.NewRecords[entity.User](s, store.Users),
		templates:   store.NewRecords[entity.Template](s, store.Templates),
		instances:   store.NewRecords[entity.OnboardingInstance](s, store.OnboardingInstances),
		suggestions: store.NewRecords[entity.Suggestion](s, store.Suggestions),
		activities:  store.NewRecords[entity.Activity](s, store.Activities),
	}
}

// GetSummary construye la respuesta del panel con cinco consultas en paralelo
// (son lecturas independientes entre sí).
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (dto.DashboardResponse, error) {
	usersCh := make(chan listResult[entity.User], 1)
	templatesCh := make(chan listResult[entity.Template], 1)
	instancesCh := make(chan listResult[entity.OnboardingInstance], 1)
	suggestionsCh := make(chan listResult[entity.Suggestion], 1)
	activitiesCh := make(chan listResult[entity.Activity], 1)

	go fetchList(ctx, uc.users, usersCh)
	go fetchList(ctx, uc.templates, templatesCh)
	go fetchList(ctx, uc.instances, instancesCh)
	go fetchList(ctx, uc.suggestions, suggestionsCh)
	go fetchList(ctx, uc.activities, activitiesCh)

	users := <-usersCh
	templates := <-templatesCh
	instances := <-instancesCh
	suggestions := <-suggestionsCh
	activities := <-activitiesCh

	if users.err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("dashboard: usuarios: %w", users.err)
	}
	if templates.err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("dashboard: plantillas: %w", templates.err)
	}
	if instances.err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("dashboard: instancias: %w", instances.err)
	}
	if suggestions.err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("dashboard: sugerencias: %w", suggestions.err)
	}
	if activities.err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("dashboard: actividad: %w", activities.err)
	}

	resp := dto.DashboardResponse{
		TotalUsers:     len(users.rows),
		TotalTemplates: len(templates.rows),
		RecentActivity: recentActivity(activities.rows),
	}

	// ── Instancias: conteos por estado, progreso promedio y pasos atascados ──
	progressSum := 0
	for _, inst := range instances.rows {
		switch inst.Status {
		case entity.InstanceCompleted:
			resp.FinishedInstances++
		default:
			resp.ActiveInstances++
			progressSum += inst.Progress
			for _, s := range inst.Steps {
				if s.NormalizeStatus() == entity.StepStuck {
					resp.StuckSteps++
				}
			}
		}
	}
	if resp.ActiveInstances > 0 {
		resp.AverageProgress = int(math.Round(float64(progressSum) / float64(resp.ActiveInstances)))
	}

	for _, sg := range suggestions.rows {
		if sg.Status == entity.SuggestionPending {
			resp.PendingSuggestions++
		}
	}
	return resp, nil
}

// recentActivity ordena el historial (más reciente primero) y devuelve las
// últimas entradas formateadas para el panel.
func recentActivity(rows []entity.Activity) []dto.ActivityItem {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
	if len(rows) > dashboardRecentActivity {
		rows = rows[:dashboardRecentActivity]
	}
	items := make([]dto.ActivityItem, 0, len(rows))
	for _, a := range rows {
		items = append(items, dto.ActivityItem{
			Action:    a.Action,
			Actor:     a.Actor,
			Timestamp: a.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return items
}
