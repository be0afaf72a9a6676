package dto

import "time"

type NotificacionResponse struct {
	ID           string     `json:"id"`
	Tipo         string     `json:"tipo"`
	ExpedienteID string     `json:"expediente_id,omitempty"`
	Destinatario string     `json:"destinatario"`
	Asunto       string     `json:"asunto"`
	Mensaje      string     `json:"mensaje"`
	Estado       string     `json:"estado"`
	Intentos     int        `json:"intentos"`
	UltimoError  string     `json:"ultimo_error,omitempty"`
	EnviadoAt    *time.Time `json:"enviado_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ListNotificacionesRequest filtro opcional por estado (Pendiente, Enviado, Fallido).
type ListNotificacionesRequest struct {
	PageRequest
	Estado string `query:"estado" validate:"omitempty,oneof=Pendiente Enviado Fallido"`
}
