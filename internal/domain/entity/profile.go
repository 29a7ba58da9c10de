package entity

import "time"

// Profile describe un perfil de puesto al que se asocian plantillas de
// onboarding y los roles funcionales que lo componen.
type Profile struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Roles       []string  `json:"roles"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// ProfileTemplate vincula un perfil de puesto con una plantilla de onboarding.
type ProfileTemplate struct {
	ID         string    `json:"id,omitempty"`
	ProfileID  string    `json:"profileId"`
	TemplateID string    `json:"templateId"`
	CreatedBy  string    `json:"createdBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
