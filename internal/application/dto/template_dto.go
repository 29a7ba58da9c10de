package dto

// StepPayload es un paso tal como viaja en altas y parches de plantillas.
type StepPayload struct {
	ID          int    `json:"id"`
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Role        string `json:"role" validate:"omitempty,max=100"`
	Owner       string `json:"owner" validate:"omitempty,max=200"`
	Expert      string `json:"expert" validate:"omitempty,max=200"`
	Status      string `json:"status" validate:"omitempty,oneof=pending completed stuck"`
	Link        string `json:"link" validate:"omitempty,url"`
}

// CreateTemplateRequest entrada para crear una plantilla de onboarding.
type CreateTemplateRequest struct {
	Name        string        `json:"name" validate:"required,min=1,max=200"`
	Description string        `json:"description" validate:"omitempty,max=1000"`
	Role        string        `json:"role" validate:"omitempty,max=100"`
	Steps       []StepPayload `json:"steps"`
	IsActive    *bool         `json:"isActive"`
}

// UpdateTemplateRequest parche parcial de una plantilla. Si Steps viene
// presente, tras guardar se sincronizan las instancias de la plantilla.
type UpdateTemplateRequest struct {
	Name        *string        `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string        `json:"description" validate:"omitempty,max=1000"`
	Role        *string        `json:"role" validate:"omitempty,max=100"`
	Steps       *[]StepPayload `json:"steps"`
	IsActive    *bool          `json:"isActive"`
}

// Patch construye el parche con los campos presentes (sin los pasos, que se
// validan y aplican aparte).
func (r UpdateTemplateRequest) Patch() map[string]any {
	patch := map[string]any{}
	setIf(patch, "name", r.Name)
	setIf(patch, "description", r.Description)
	setIf(patch, "role", r.Role)
	setIf(patch, "isActive", r.IsActive)
	return patch
}

// SyncTemplateResponse salida de POST /api/templates/{id}/sync.
type SyncTemplateResponse struct {
	UpdatedInstances int `json:"updatedInstances"`
}
