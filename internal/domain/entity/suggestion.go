package entity

import "time"

// Estados válidos de una sugerencia.
const (
	SuggestionPending     = "pending"
	SuggestionReviewed    = "reviewed"
	SuggestionImplemented = "implemented"
)

// Suggestion es una propuesta de mejora sobre un paso del onboarding,
// enviada por cualquier usuario y revisada por un administrador.
type Suggestion struct {
	ID        string    `json:"id,omitempty"`
	StepID    int       `json:"stepId,omitempty"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
