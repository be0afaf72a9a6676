package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resultados de una revisión financiera.
const (
	ResultadoCompleto   = "Completo"
	ResultadoIncompleto = "Incompleto"
)

// Acciones opcionales que acompañan una revisión financiera.
const (
	AccionAprobar               = "Aprobar"
	AccionRechazar              = "Rechazar"
	AccionSolicitarCorrecciones = "SolicitarCorrecciones"
)

// RevisionFinanciera registra un ciclo de revisión financiera de un expediente.
// Un expediente acumula una por cada vuelta de correcciones.
type RevisionFinanciera struct {
	ID                string
	ExpedienteID      string
	RevisorID         string
	Resultado         string // Completo | Incompleto
	Accion            string // opcional: Aprobar | Rechazar | SolicitarCorrecciones
	MontoAprobado     decimal.NullDecimal
	Comentarios       string
	DiasTranscurridos int // días desde el envío a revisión
	CreatedAt         time.Time
}
