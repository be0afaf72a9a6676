package entity

import "time"

// Estados de entrega de una notificación.
const (
	NotificacionPendiente = "Pendiente"
	NotificacionEnviado   = "Enviado"
	NotificacionFallido   = "Fallido"
)

// Tipos de notificación, uno por transición notificable.
const (
	NotifEnviadoRevision     = "expediente_enviado_revision"
	NotifRevisionCompleta    = "revision_completa"
	NotifRevisionIncompleta  = "revision_incompleta"
	NotifExpedienteAprobado  = "expediente_aprobado"
	NotifExpedienteRechazado = "expediente_rechazado"
)

// NotificacionEnviada registra cada correo encolado y el resultado de su entrega.
type NotificacionEnviada struct {
	ID           string
	Tipo         string
	ExpedienteID string // opcional
	Destinatario string
	Asunto       string
	Mensaje      string
	Estado       string // Pendiente | Enviado | Fallido
	Intentos     int
	UltimoError  string
	EnviadoAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
