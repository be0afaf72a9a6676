package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoCount cantidad de expedientes en un estado.
type EstadoCount struct {
	Estado   string `json:"estado"`
	Cantidad int    `json:"cantidad"`
}

// MunicipioTotals agregados de un municipio.
type MunicipioTotals struct {
	MunicipioID     string          `json:"municipio_id"`
	Municipio       string          `json:"municipio"`
	Expedientes     int             `json:"expedientes"`
	Aprobados       int             `json:"aprobados"`
	MontoContratado decimal.Decimal `json:"monto_contratado"`
	MontoAprobado   decimal.Decimal `json:"monto_aprobado"`
}

// SummaryReport resumen general por estado y municipio.
type SummaryReport struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	Total        int               `json:"total"`
	PorEstado    []EstadoCount     `json:"por_estado"`
	PorMunicipio []MunicipioTotals `json:"por_municipio"`
}

// ExpedienteRow fila de detalle usada por los reportes municipal y financiero.
type ExpedienteRow struct {
	Codigo          string           `json:"codigo"`
	NombreProyecto  string           `json:"nombre_proyecto"`
	Municipio       string           `json:"municipio"`
	Estado          string           `json:"estado"`
	FechaRecepcion  time.Time        `json:"fecha_recepcion"`
	FechaAprobacion *time.Time       `json:"fecha_aprobacion,omitempty"`
	MontoContratado decimal.Decimal  `json:"monto_contratado"`
	MontoAprobado   *decimal.Decimal `json:"monto_aprobado,omitempty"`
	Adjudicatario   string           `json:"adjudicatario,omitempty"`
	DiasAprobacion  *int             `json:"dias_aprobacion,omitempty"`
}

// MunicipioReport detalle de expedientes de un municipio.
type MunicipioReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Municipio   MunicipioTotals `json:"municipio"`
	PorEstado   []EstadoCount   `json:"por_estado"`
	Expedientes []ExpedienteRow `json:"expedientes"`
}

// FinancialReport montos y tiempos de aprobación.
type FinancialReport struct {
	GeneratedAt          time.Time       `json:"generated_at"`
	TotalContratado      decimal.Decimal `json:"total_contratado"`
	TotalAprobado        decimal.Decimal `json:"total_aprobado"`
	Aprobados            int             `json:"aprobados"`
	PromedioDiasAprobado decimal.Decimal `json:"promedio_dias_aprobacion"`
	Expedientes          []ExpedienteRow `json:"expedientes"`
}

// BitacoraReport ventana de la bitácora.
type BitacoraReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	From        *time.Time         `json:"from,omitempty"`
	To          *time.Time         `json:"to,omitempty"`
	PorTipo     map[string]int     `json:"por_tipo"`
	Registros   []BitacoraResponse `json:"registros"`
}

type BitacoraResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Entidad   string    `json:"entidad"`
	EntidadID string    `json:"entidad_id"`
	Tipo      string    `json:"tipo"`
	Detalle   string    `json:"detalle"`
	CreatedAt time.Time `json:"created_at"`
}

// BitacoraReportRequest rango de fechas y filtros del reporte de bitácora.
type BitacoraReportRequest struct {
	From    string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Entidad string `query:"entidad"`
	Limit   int    `query:"limit" validate:"min=0,max=5000"`
}
