package reports

import (
	"context"
	"time"
)

// ChecklistStep es una fila de la tabla de pasos del reporte.
type ChecklistStep struct {
	ID     int
	Title  string
	Owner  string
	Expert string
	Status string
	Link   string
}

// ChecklistData reúne todo lo que el generador necesita para armar el PDF,
// ya resuelto por el caso de uso (el generador no consulta el almacén).
type ChecklistData struct {
	EmployeeName  string
	EmployeeEmail string
	Role          string
	Department    string
	TemplateName  string
	StartDate     string
	Status        string
	Progress      int
	GeneratedAt   time.Time
	Steps         []ChecklistStep
}

// Generator produce el PDF de la lista de verificación de un onboarding.
type Generator interface {
	GenerateChecklist(ctx context.Context, data ChecklistData) ([]byte, error)
}
