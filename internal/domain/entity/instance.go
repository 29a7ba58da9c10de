package entity

import "time"

// Estados válidos de una instancia de onboarding.
const (
	InstanceActive    = "active"
	InstanceCompleted = "completed"
)

// OnboardingInstance es el recorrido de onboarding de un empleado concreto.
// Steps es una copia por valor de los pasos de la plantilla al momento de la
// creación; Progress se recalcula con Progress(Steps) en cada cambio de estado.
type OnboardingInstance struct {
	ID            string    `json:"id,omitempty"`
	EmployeeName  string    `json:"employeeName"`
	EmployeeEmail string    `json:"employeeEmail"`
	Role          string    `json:"role,omitempty"`
	Department    string    `json:"department,omitempty"`
	TemplateID    string    `json:"templateId"`
	StartDate     string    `json:"startDate,omitempty"`
	Steps         []Step    `json:"steps"`
	Progress      int       `json:"progress"`
	Status        string    `json:"status"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// Recompute actualiza Progress a partir de los pasos y marca la instancia
// como completada cuando todos los pasos lo están.
func (o *OnboardingInstance) Recompute() {
	o.Progress = Progress(o.Steps)
	if len(o.Steps) > 0 && o.Progress == 100 {
		o.Status = InstanceCompleted
	} else if o.Status == InstanceCompleted {
		o.Status = InstanceActive
	}
}
