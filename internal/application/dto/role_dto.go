package dto

// CreateRoleRequest entrada para crear un rol funcional.
type CreateRoleRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// UpdateRoleRequest parche parcial de un rol.
type UpdateRoleRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// Patch construye el parche con los campos presentes.
func (r UpdateRoleRequest) Patch() map[string]any {
	patch := map[string]any{}
	setIf(patch, "name", r.Name)
	setIf(patch, "description", r.Description)
	return patch
}
