package dto

// CreateSuggestionRequest entrada para proponer una mejora sobre un paso.
type CreateSuggestionRequest struct {
	StepID int    `json:"stepId" validate:"omitempty,min=0"`
	Author string `json:"author" validate:"required,min=1,max=200"`
	Text   string `json:"text" validate:"required,min=1,max=2000"`
}

// UpdateSuggestionRequest parche para moderar una sugerencia.
type UpdateSuggestionRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=pending reviewed implemented"`
	Text   *string `json:"text" validate:"omitempty,min=1,max=2000"`
}

// Patch construye el parche con los campos presentes.
func (r UpdateSuggestionRequest) Patch() map[string]any {
	patch := map[string]any{}
	setIf(patch, "status", r.Status)
	setIf(patch, "text", r.Text)
	return patch
}
