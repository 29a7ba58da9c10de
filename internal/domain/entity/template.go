package entity

import "time"

// Template es una plantilla de onboarding: la lista maestra de pasos que se
// copia dentro de cada instancia creada a partir de ella.
type Template struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Role        string    `json:"role,omitempty"`
	Steps       []Step    `json:"steps"`
	IsActive    bool      `json:"isActive"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}
