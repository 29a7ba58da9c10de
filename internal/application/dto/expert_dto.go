package dto

// CreateExpertRequest entrada para registrar una persona de referencia.
type CreateExpertRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Area  string `json:"area" validate:"omitempty,max=100"`
}

// UpdateExpertRequest parche parcial de una persona de referencia.
type UpdateExpertRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
	Area  *string `json:"area" validate:"omitempty,max=100"`
}

// Patch construye el parche con los campos presentes.
func (r UpdateExpertRequest) Patch() map[string]any {
	patch := map[string]any{}
	setIf(patch, "name", r.Name)
	setIf(patch, "email", r.Email)
	setIf(patch, "area", r.Area)
	return patch
}
