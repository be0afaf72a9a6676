// Package pdf genera la versión PDF de los reportes de expedientes.
//
// Layout común (A4 vertical):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del reporte    │  Fecha de generación       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: pares etiqueta / valor                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: columnas propias de cada reporte                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"sort"
	"strings"
	"time"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/report"
)

var _ report.PDFGenerator = (*ReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorHeader  = &props.Color{Red: 225, Green: 232, Blue: 240}
)

// column describe una columna de tabla: ancho en la grilla de 12 y alineación.
type column struct {
	label string
	size  int
	align align.Type
}

// ReportGenerator implementa report.PDFGenerator usando Maroto v2.
type ReportGenerator struct {
	author string
}

// NewReportGenerator construye el generador. author aparece en los metadatos del PDF.
func NewReportGenerator(author string) *ReportGenerator {
	return &ReportGenerator{author: author}
}

func (g *ReportGenerator) Summary(r *dto.SummaryReport) ([]byte, error) {
	m := g.newDocument("Resumen de expedientes")
	m.AddRows(headerRow("RESUMEN DE EXPEDIENTES", r.GeneratedAt))
	m.AddRows(separator(0.5))
	m.AddRows(keyValueRows([][2]string{{"Total de expedientes", fmt.Sprint(r.Total)}})...)

	m.AddRows(sectionRow("Por estado"))
	m.AddRows(estadoRows(r.PorEstado)...)

	cols := []column{
		{"Municipio", 4, align.Left},
		{"Expedientes", 2, align.Center},
		{"Aprobados", 2, align.Center},
		{"Contratado", 2, align.Right},
		{"Aprobado", 2, align.Right},
	}
	m.AddRows(sectionRow("Por municipio"))
	m.AddRows(tableHeaderRow(cols))
	for _, t := range r.PorMunicipio {
		m.AddRows(tableRow(cols, t.Municipio, fmt.Sprint(t.Expedientes), fmt.Sprint(t.Aprobados),
			formatMoney(t.MontoContratado), formatMoney(t.MontoAprobado)))
	}
	return generate(m)
}

func (g *ReportGenerator) Municipio(r *dto.MunicipioReport) ([]byte, error) {
	m := g.newDocument("Reporte municipal " + r.Municipio.Municipio)
	m.AddRows(headerRow("REPORTE MUNICIPAL: "+strings.ToUpper(r.Municipio.Municipio), r.GeneratedAt))
	m.AddRows(separator(0.5))
	m.AddRows(keyValueRows([][2]string{
		{"Expedientes", fmt.Sprint(r.Municipio.Expedientes)},
		{"Aprobados", fmt.Sprint(r.Municipio.Aprobados)},
		{"Monto contratado", formatMoney(r.Municipio.MontoContratado)},
		{"Monto aprobado", formatMoney(r.Municipio.MontoAprobado)},
	})...)

	m.AddRows(sectionRow("Por estado"))
	m.AddRows(estadoRows(r.PorEstado)...)

	m.AddRows(sectionRow("Expedientes"))
	addExpedienteTable(m, r.Expedientes, false)
	return generate(m)
}

func (g *ReportGenerator) Financial(r *dto.FinancialReport) ([]byte, error) {
	m := g.newDocument("Reporte financiero")
	m.AddRows(headerRow("REPORTE FINANCIERO", r.GeneratedAt))
	m.AddRows(separator(0.5))
	m.AddRows(keyValueRows([][2]string{
		{"Total contratado", formatMoney(r.TotalContratado)},
		{"Total aprobado", formatMoney(r.TotalAprobado)},
		{"Expedientes aprobados", fmt.Sprint(r.Aprobados)},
		{"Promedio de días hasta aprobación", r.PromedioDiasAprobado.StringFixed(1)},
	})...)

	m.AddRows(sectionRow("Detalle"))
	addExpedienteTable(m, r.Expedientes, true)
	return generate(m)
}

func (g *ReportGenerator) Bitacora(r *dto.BitacoraReport) ([]byte, error) {
	m := g.newDocument("Bitácora")
	m.AddRows(headerRow("BITÁCORA DE AUDITORÍA", r.GeneratedAt))
	m.AddRows(separator(0.5))

	window := "Todo el historial"
	if r.From != nil || r.To != nil {
		window = fmt.Sprintf("%s a %s", formatDate(r.From), formatDate(r.To))
	}
	pairs := [][2]string{{"Periodo", window}, {"Registros", fmt.Sprint(len(r.Registros))}}
	tipos := make([]string, 0, len(r.PorTipo))
	for t := range r.PorTipo {
		tipos = append(tipos, t)
	}
	sort.Strings(tipos)
	for _, t := range tipos {
		pairs = append(pairs, [2]string{t, fmt.Sprint(r.PorTipo[t])})
	}
	m.AddRows(keyValueRows(pairs)...)

	cols := []column{
		{"Fecha", 2, align.Left},
		{"Tipo", 2, align.Left},
		{"Entidad", 2, align.Left},
		{"Detalle", 6, align.Left},
	}
	m.AddRows(sectionRow("Registros"))
	m.AddRows(tableHeaderRow(cols))
	for _, b := range r.Registros {
		m.AddRows(tableRow(cols, b.CreatedAt.Format("02/01/2006 15:04"), b.Tipo, b.Entidad, b.Detalle))
	}
	return generate(m)
}

func (g *ReportGenerator) newDocument(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.author, true).
		Build()
	return maroto.New(cfg)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, generatedAt time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2,
		})),
		col.New(4).Add(text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
			Size: 8, Align: align.Right, Top: 4, Color: colorGray,
		})),
	)
}

func separator(thickness float64) core.Row {
	return line.NewRow(1, props.Line{Color: colorPrimary, Thickness: thickness})
}

func sectionRow(label string) core.Row {
	return row.New(9).Add(col.New(12).Add(text.New(strings.ToUpper(label), props.Text{
		Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 3,
	})))
}

func keyValueRows(pairs [][2]string) []core.Row {
	rows := make([]core.Row, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, row.New(5).Add(
			col.New(5).Add(text.New(p[0]+":", props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
			col.New(7).Add(text.New(p[1], props.Text{Size: 8, Top: 1})),
		))
	}
	return rows
}

func estadoRows(counts []dto.EstadoCount) []core.Row {
	pairs := make([][2]string, 0, len(counts))
	for _, c := range counts {
		pairs = append(pairs, [2]string{c.Estado, fmt.Sprint(c.Cantidad)})
	}
	return keyValueRows(pairs)
}

func tableHeaderRow(cols []column) core.Row {
	cells := make([]core.Col, 0, len(cols))
	for _, c := range cols {
		cells = append(cells, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorHeader}).Add(cells...)
}

func tableRow(cols []column, values ...string) core.Row {
	cells := make([]core.Col, 0, len(cols))
	for i, c := range cols {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		cells = append(cells, col.New(c.size).Add(text.New(v, props.Text{
			Size: 7.5, Align: c.align, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(7).Add(cells...)
}

// addExpedienteTable agrega la tabla de expedientes; financial añade días y monto aprobado.
func addExpedienteTable(m core.Maroto, rows []dto.ExpedienteRow, financial bool) {
	cols := []column{
		{"Código", 2, align.Left},
		{"Proyecto", 4, align.Left},
		{"Estado", 2, align.Left},
		{"Recepción", 2, align.Center},
		{"Contratado", 2, align.Right},
	}
	if financial {
		cols = []column{
			{"Código", 2, align.Left},
			{"Proyecto", 3, align.Left},
			{"Municipio", 2, align.Left},
			{"Contratado", 2, align.Right},
			{"Aprobado", 2, align.Right},
			{"Días", 1, align.Center},
		}
	}
	m.AddRows(tableHeaderRow(cols))
	for _, r := range rows {
		if !financial {
			m.AddRows(tableRow(cols, r.Codigo, r.NombreProyecto, r.Estado,
				r.FechaRecepcion.Format("02/01/2006"), formatMoney(r.MontoContratado)))
			continue
		}
		aprobado, dias := "—", "—"
		if r.MontoAprobado != nil {
			aprobado = formatMoney(*r.MontoAprobado)
		}
		if r.DiasAprobacion != nil {
			dias = fmt.Sprint(*r.DiasAprobacion)
		}
		m.AddRows(tableRow(cols, r.Codigo, r.NombreProyecto, r.Municipio,
			formatMoney(r.MontoContratado), aprobado, dias))
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func formatDate(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format("02/01/2006")
}

// formatMoney formatea con puntos de miles y coma decimal.
// Ej: 1234567.5 → "$1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + "$" + string(buf) + "," + frac
}
