package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateExpedienteRequest entrada para registrar un expediente. El estado inicial
// lo fija el flujo (Borrador); los campos financieros no se aceptan aquí.
type CreateExpedienteRequest struct {
	Codigo          string          `json:"codigo" validate:"required,max=50"`
	NombreProyecto  string          `json:"nombre_proyecto" validate:"required,max=300"`
	MunicipioID     string          `json:"municipio_id" validate:"required"`
	ResponsableID   string          `json:"responsable_id"`
	TipoSolicitud   string          `json:"tipo_solicitud" validate:"required,max=100"`
	FechaRecepcion  string          `json:"fecha_recepcion" validate:"required,datetime=2006-01-02"`
	MontoContratado decimal.Decimal `json:"monto_contratado"`
	Adjudicatario   string          `json:"adjudicatario" validate:"omitempty,max=200"`
	Etiquetas       []string        `json:"etiquetas" validate:"omitempty,dive,max=50"`
}

// UpdateExpedienteRequest campos opcionales; nil = sin cambio. El estado no se edita aquí.
type UpdateExpedienteRequest struct {
	NombreProyecto  *string          `json:"nombre_proyecto" validate:"omitempty,max=300"`
	ResponsableID   *string          `json:"responsable_id"`
	TipoSolicitud   *string          `json:"tipo_solicitud" validate:"omitempty,max=100"`
	FechaRecepcion  *string          `json:"fecha_recepcion" validate:"omitempty,datetime=2006-01-02"`
	MontoContratado *decimal.Decimal `json:"monto_contratado"`
	Adjudicatario   *string          `json:"adjudicatario" validate:"omitempty,max=200"`
	Etiquetas       []string         `json:"etiquetas" validate:"omitempty,dive,max=50"`
}

// ListExpedientesRequest filtros del listado.
type ListExpedientesRequest struct {
	PageRequest
	Estado string `query:"estado"`
	Search string `query:"q"`
}

// RevisionFinancieraRequest entrada de la revisión del Jefe Financiero.
type RevisionFinancieraRequest struct {
	Resultado     string           `json:"resultado" validate:"required,oneof=Completo Incompleto"`
	Accion        string           `json:"accion" validate:"omitempty,oneof=Aprobar Rechazar SolicitarCorrecciones"`
	MontoAprobado *decimal.Decimal `json:"monto_aprobado"`
	Comentarios   string           `json:"comentarios" validate:"omitempty,max=2000"`
}

// ResolverRequest decisión del Director General sobre un expediente Completo.
type ResolverRequest struct {
	Decision    string `json:"decision" validate:"required,oneof=Aprobar Rechazar"`
	Comentarios string `json:"comentarios" validate:"omitempty,max=2000"`
}

type ExpedienteResponse struct {
	ID                      string           `json:"id"`
	Codigo                  string           `json:"codigo"`
	NombreProyecto          string           `json:"nombre_proyecto"`
	MunicipioID             string           `json:"municipio_id"`
	ResponsableID           string           `json:"responsable_id,omitempty"`
	TipoSolicitud           string           `json:"tipo_solicitud"`
	FechaRecepcion          time.Time        `json:"fecha_recepcion"`
	Estado                  string           `json:"estado"`
	FechaAprobacion         *time.Time       `json:"fecha_aprobacion,omitempty"`
	MontoContratado         decimal.Decimal  `json:"monto_contratado"`
	Adjudicatario           string           `json:"adjudicatario,omitempty"`
	Etiquetas               []string         `json:"etiquetas"`
	RevisorID               string           `json:"revisor_id,omitempty"`
	FechaRecibidoFinanciero *time.Time       `json:"fecha_recibido_financiero,omitempty"`
	FechaRevisado           *time.Time       `json:"fecha_revisado,omitempty"`
	FechaComplemento        *time.Time       `json:"fecha_complemento,omitempty"`
	MontoAprobado           *decimal.Decimal `json:"monto_aprobado,omitempty"`
	ComentariosFinancieros  string           `json:"comentarios_financieros,omitempty"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

type ExpedienteListResponse struct {
	Items []ExpedienteResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

type RevisionFinancieraResponse struct {
	ID                string           `json:"id"`
	ExpedienteID      string           `json:"expediente_id"`
	RevisorID         string           `json:"revisor_id"`
	Resultado         string           `json:"resultado"`
	Accion            string           `json:"accion,omitempty"`
	MontoAprobado     *decimal.Decimal `json:"monto_aprobado,omitempty"`
	Comentarios       string           `json:"comentarios,omitempty"`
	DiasTranscurridos int              `json:"dias_transcurridos"`
	CreatedAt         time.Time        `json:"created_at"`
}
