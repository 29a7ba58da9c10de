package dto

// CreateInstanceRequest entrada para arrancar el onboarding de un empleado.
type CreateInstanceRequest struct {
	EmployeeName  string `json:"employeeName" validate:"required,min=1,max=200"`
	EmployeeEmail string `json:"employeeEmail" validate:"required,email"`
	TemplateID    string `json:"templateId" validate:"required"`
	Role          string `json:"role" validate:"omitempty,max=100"`
	Department    string `json:"department" validate:"omitempty,max=100"`
	StartDate     string `json:"startDate" validate:"omitempty"`
}

// UpdateInstanceRequest parche parcial de una instancia (datos del empleado).
type UpdateInstanceRequest struct {
	EmployeeName *string `json:"employeeName" validate:"omitempty,min=1,max=200"`
	Role         *string `json:"role" validate:"omitempty,max=100"`
	Department   *string `json:"department" validate:"omitempty,max=100"`
	StartDate    *string `json:"startDate"`
	Status       *string `json:"status" validate:"omitempty,oneof=active completed"`
}

// Patch construye el parche con los campos presentes.
func (r UpdateInstanceRequest) Patch() map[string]any {
	patch := map[string]any{}
	setIf(patch, "employeeName", r.EmployeeName)
	setIf(patch, "role", r.Role)
	setIf(patch, "department", r.Department)
	setIf(patch, "startDate", r.StartDate)
	setIf(patch, "status", r.Status)
	return patch
}

// UpdateStepStatusRequest entrada para cambiar el estado de un paso.
type UpdateStepStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed stuck"`
}
