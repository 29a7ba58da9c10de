package entity

import (
	"math"
	"strings"
)

// Estados válidos de un paso de onboarding.
const (
	StepPending   = "pending"
	StepCompleted = "completed"
	StepStuck     = "stuck"
)

// Step es una unidad de trabajo de onboarding. Vive embebido en Template y se
// copia POR VALOR dentro de cada OnboardingInstance al crearla: ediciones
// posteriores de la plantilla no tocan los pasos de la instancia salvo por la
// sincronización explícita (MergeTemplateSteps).
type Step struct {
	ID          int    `json:"id"` // único dentro de la lista que lo contiene
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Role        string `json:"role,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Expert      string `json:"expert,omitempty"`
	Status      string `json:"status"`
	Link        string `json:"link,omitempty"`
}

// NormalizeStatus devuelve el estado del paso, con pending como valor por defecto.
func (s Step) NormalizeStatus() string {
	switch strings.ToLower(strings.TrimSpace(s.Status)) {
	case StepCompleted:
		return StepCompleted
	case StepStuck:
		return StepStuck
	default:
		return StepPending
	}
}

// CloneSteps copia la lista de pasos por valor (snapshot para instancias).
func CloneSteps(steps []Step) []Step {
	if len(steps) == 0 {
		return []Step{}
	}
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// StepIDs devuelve los IDs de la lista en su orden actual.
func StepIDs(steps []Step) []int {
	ids := make([]int, 0, len(steps))
	for _, s := range steps {
		ids = append(ids, s.ID)
	}
	return ids
}

// FindStep localiza un paso por ID. Devuelve el índice o -1.
func FindStep(steps []Step, id int) int {
	for i, s := range steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Progress calcula el porcentaje entero de avance: round(100*completados/total),
// 0 cuando la lista está vacía.
func Progress(steps []Step) int {
	if len(steps) == 0 {
		return 0
	}
	completed := 0
	for _, s := range steps {
		if s.NormalizeStatus() == StepCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(steps))))
}

// MergeTemplateSteps sincroniza los pasos de una instancia con los de su
// plantilla: agrega al final (en el orden de la plantilla) los pasos cuyo ID
// no exista aún en la instancia, siempre con estado pending. Los pasos
// existentes —incluido su estado— no se tocan ni se eliminan jamás.
// Devuelve la lista resultante y si hubo cambios.
func MergeTemplateSteps(instance, template []Step) ([]Step, bool) {
	merged := CloneSteps(instance)
	present := make(map[int]struct{}, len(instance))
	for _, s := range instance {
		present[s.ID] = struct{}{}
	}
	changed := false
	for _, s := range template {
		if _, ok := present[s.ID]; ok {
			continue
		}
		added := s
		added.Status = StepPending
		merged = append(merged, added)
		present[s.ID] = struct{}{}
		changed = true
	}
	return merged, changed
}

// ValidateSteps verifica que ningún ID entero se repita dentro de la lista.
func ValidateSteps(steps []Step) (dupID int, ok bool) {
	seen := make(map[int]struct{}, len(steps))
	for _, s := range steps {
		if _, dup := seen[s.ID]; dup {
			return s.ID, false
		}
		seen[s.ID] = struct{}{}
	}
	return 0, true
}
