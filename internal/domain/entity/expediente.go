package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expediente es una solicitud de financiamiento de un municipio.
// Los campos financieros (Revisor*, Fecha*Financiero, MontoAprobado, ComentariosFinancieros)
// solo los escriben las acciones del circuito financiero.
type Expediente struct {
	ID              string
	Codigo          string // código externo único
	NombreProyecto  string
	MunicipioID     string
	ResponsableID   string // usuario responsable (vacío = sin asignar)
	TipoSolicitud   string
	FechaRecepcion  time.Time
	Estado          Estado
	FechaAprobacion *time.Time
	MontoContratado decimal.Decimal
	Adjudicatario   string
	Etiquetas       []string

	RevisorID               string
	FechaRecibidoFinanciero *time.Time
	FechaRevisado           *time.Time
	FechaComplemento        *time.Time
	MontoAprobado           decimal.NullDecimal
	ComentariosFinancieros  string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// AuditFields devuelve una instantánea de los campos para calcular diferencias en la bitácora.
func (e *Expediente) AuditFields() map[string]string {
	return map[string]string{
		"codigo":                    e.Codigo,
		"nombre_proyecto":           e.NombreProyecto,
		"municipio_id":              e.MunicipioID,
		"responsable_id":            e.ResponsableID,
		"tipo_solicitud":            e.TipoSolicitud,
		"fecha_recepcion":           formatDate(&e.FechaRecepcion),
		"estado":                    e.Estado.String(),
		"fecha_aprobacion":          formatDate(e.FechaAprobacion),
		"monto_contratado":          e.MontoContratado.String(),
		"adjudicatario":             e.Adjudicatario,
		"etiquetas":                 strings.Join(e.Etiquetas, ","),
		"revisor_id":                e.RevisorID,
		"fecha_recibido_financiero": formatDate(e.FechaRecibidoFinanciero),
		"fecha_revisado":            formatDate(e.FechaRevisado),
		"fecha_complemento":         formatDate(e.FechaComplemento),
		"monto_aprobado":            nullDecimalString(e.MontoAprobado),
		"comentarios_financieros":   e.ComentariosFinancieros,
		"created_at":                e.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":                e.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// DiasHastaAprobacion devuelve los días entre la recepción y la aprobación.
// ok es false si el expediente aún no está aprobado.
func (e *Expediente) DiasHastaAprobacion() (dias int, ok bool) {
	if e.FechaAprobacion == nil {
		return 0, false
	}
	return DaysBetween(e.FechaRecepcion, *e.FechaAprobacion), true
}

// DaysBetween cuenta días calendario entre dos fechas (ignora la hora). Nunca es negativo.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	d := int(t.Sub(f).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
