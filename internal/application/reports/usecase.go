// Package reports genera la representación imprimible (PDF) del recorrido de
// onboarding de un empleado: datos del puesto, tabla de pasos con responsables
// y estado, y el progreso global.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// UseCase arma los datos del reporte y delega el dibujo en el Generator.
type UseCase struct {
	instances store.Records[entity.OnboardingInstance]
	templates store.Records[entity.Template]
	generator Generator
}

// NewUseCase construye el caso de uso.
func NewUseCase(s store.Store, generator Generator) *UseCase {
	return &UseCase{
		instances: store.NewRecords[entity.OnboardingInstance](s, store.OnboardingInstances),
		templates: store.NewRecords[entity.Template](s, store.Templates),
		generator: generator,
	}
}

// InstanceReport genera el PDF de la instancia indicada.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la instancia no existe.
func (uc *UseCase) InstanceReport(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	inst, err := uc.instances.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	// El nombre de la plantilla es informativo: si fue eliminada se deja vacío.
	templateName := ""
	if tpl, tErr := uc.templates.Get(ctx, inst.TemplateID); tErr == nil {
		templateName = tpl.Name
	}

	steps := make([]ChecklistStep, 0, len(inst.Steps))
	for _, s := range inst.Steps {
		steps = append(steps, ChecklistStep{
			ID:     s.ID,
			Title:  s.Title,
			Owner:  s.Owner,
			Expert: s.Expert,
			Status: s.NormalizeStatus(),
			Link:   s.Link,
		})
	}

	data := ChecklistData{
		EmployeeName:  inst.EmployeeName,
		EmployeeEmail: inst.EmployeeEmail,
		Role:          inst.Role,
		Department:    inst.Department,
		TemplateName:  templateName,
		StartDate:     inst.StartDate,
		Status:        inst.Status,
		Progress:      inst.Progress,
		GeneratedAt:   time.Now(),
		Steps:         steps,
	}

	pdfBytes, err = uc.generator.GenerateChecklist(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("onboarding_%s.pdf", inst.ID), nil
}
