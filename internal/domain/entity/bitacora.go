package entity

import "time"

// Tipos de registro de bitácora.
const (
	BitacoraCreacion     = "Creación"
	BitacoraEliminacion  = "Eliminación"
	BitacoraEdicion      = "Edición"
	BitacoraReporte      = "Reporte"
	BitacoraCambioEstado = "Cambio de Estado"
	BitacoraRevision     = "Revisión"
	BitacoraNotificacion = "Notificación"
)

// Entidades auditadas.
const (
	EntidadExpediente   = "Expediente"
	EntidadUsuario      = "Usuario"
	EntidadGuia         = "Guía"
	EntidadMunicipio    = "Municipio"
	EntidadNotificacion = "Notificación"
	EntidadReporte      = "Reporte"
)

// Bitacora es un registro de auditoría de solo inserción.
// UserID vacío indica una acción del sistema.
type Bitacora struct {
	ID        string
	UserID    string
	Entidad   string
	EntidadID string
	Tipo      string
	Detalle   string
	CreatedAt time.Time
}
