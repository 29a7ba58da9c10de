// Package pdf implementa la generación del reporte imprimible de onboarding
// usando Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Lista de verificación  │  Estado + Fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMPLEADO: Nombre / Email / Puesto / Departamento            │
//	│  PLANTILLA: Nombre + fecha de inicio                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Paso | Responsable | Experto | Estado            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROGRESO: barra textual + porcentaje                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Onboarding-api/internal/application/reports"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorGreen   = &props.Color{Red: 0, Green: 128, Blue: 64}
	colorRed     = &props.Color{Red: 180, Green: 40, Blue: 40}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoGenerator implementa reports.Generator usando Maroto v2.
type MarotoGenerator struct{}

// NewMarotoGenerator construye el generador.
func NewMarotoGenerator() *MarotoGenerator { return &MarotoGenerator{} }

var _ reports.Generator = (*MarotoGenerator)(nil)

// GenerateChecklist genera el PDF y devuelve sus bytes.
func (g *MarotoGenerator) GenerateChecklist(_ context.Context, data reports.ChecklistData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Lista de verificación de onboarding", true).
		WithAuthor("Onboarding API", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(employeeRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range stepRows(data.Steps) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(progressRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y estado + fecha de emisión (der).
func headerRow(data reports.ChecklistData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("LISTA DE VERIFICACIÓN DE ONBOARDING", props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(data.EmployeeName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 9,
			}),
		),
		col.New(5).Add(
			text.New(statusLabel(data.Status), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: statusColor(data.Status), Top: 1,
			}),
			text.New("Generado: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// employeeRow: datos del empleado y de la plantilla de origen.
func employeeRow(data reports.ChecklistData) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMPLEADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Puesto: %s   |   Departamento: %s",
				nonEmpty(data.EmployeeEmail, "—"),
				nonEmpty(data.Role, "—"),
				nonEmpty(data.Department, "—"),
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
			text.New(fmt.Sprintf("Plantilla: %s   |   Inicio: %s",
				nonEmpty(data.TemplateName, "—"),
				nonEmpty(data.StartDate, "—"),
			), props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de pasos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Paso", 5, align.Left),
		h("Responsable", 2, align.Left),
		h("Experto", 2, align.Left),
		h("Estado", 2, align.Center),
	)
}

// stepRows: una fila por paso del recorrido.
func stepRows(steps []reports.ChecklistStep) []core.Row {
	result := make([]core.Row, 0, len(steps))
	for _, s := range steps {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", s.ID),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				s.Title,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				nonEmpty(s.Owner, "—"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				nonEmpty(s.Expert, "—"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				statusLabel(s.Status),
				props.Text{Size: 8, Align: align.Center, Top: 1, Color: statusColor(s.Status)},
			)),
		))
	}
	return result
}

// progressRow: barra textual de progreso + porcentaje global.
func progressRow(data reports.ChecklistData) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("PROGRESO GLOBAL", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
			}),
			text.New(progressBar(data.Progress), props.Text{
				Size: 9, Top: 7, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("%d%%", data.Progress), props.Text{
				Style: fontstyle.Bold, Size: 16, Align: align.Right,
				Color: colorPrimary, Top: 3,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// statusLabel traduce los estados internos a la etiqueta impresa.
func statusLabel(status string) string {
	switch status {
	case entity.StepCompleted:
		return "Completado"
	case entity.StepStuck:
		return "Atascado"
	case entity.InstanceActive:
		return "En curso"
	default:
		return "Pendiente"
	}
}

// statusColor asigna color por estado: verde completado, rojo atascado.
func statusColor(status string) *props.Color {
	switch status {
	case entity.StepCompleted:
		return colorGreen
	case entity.StepStuck:
		return colorRed
	default:
		return colorGray
	}
}

// progressBar dibuja una barra de 20 segmentos con caracteres de bloque.
func progressBar(progress int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := progress / 5
	return strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
}
