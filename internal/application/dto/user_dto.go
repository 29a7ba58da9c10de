package dto

// CreateUserRequest entrada para crear un usuario del directorio.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required,min=1,max=200"`
	Roles    []string `json:"roles" validate:"omitempty"`
	Profiles []string `json:"profiles" validate:"omitempty"`
}

// UpdateUserRequest parche parcial de un usuario; solo los campos presentes se aplican.
type UpdateUserRequest struct {
	Email    *string   `json:"email" validate:"omitempty,email"`
	Name     *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Roles    *[]string `json:"roles"`
	Profiles *[]string `json:"profiles"`
}

// Patch construye el parche con los campos presentes.
func (r UpdateUserRequest) Patch() map[string]any {
	patch := map[string]any{}
	setIf(patch, "email", r.Email)
	setIf(patch, "name", r.Name)
	setIf(patch, "roles", r.Roles)
	setIf(patch, "profiles", r.Profiles)
	return patch
}
