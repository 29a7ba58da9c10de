package dto

// CreateProfileRequest entrada para crear un perfil de puesto.
type CreateProfileRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Roles       []string `json:"roles" validate:"omitempty"`
}

// UpdateProfileRequest parche parcial de un perfil.
type UpdateProfileRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Roles       *[]string `json:"roles"`
}

// Patch construye el parche con los campos presentes.
func (r UpdateProfileRequest) Patch() map[string]any {
	patch := map[string]any{}
	setIf(patch, "name", r.Name)
	setIf(patch, "description", r.Description)
	setIf(patch, "roles", r.Roles)
	return patch
}

// CreateProfileTemplateRequest entrada para vincular un perfil con una plantilla.
type CreateProfileTemplateRequest struct {
	ProfileID  string `json:"profileId" validate:"required"`
	TemplateID string `json:"templateId" validate:"required"`
}
