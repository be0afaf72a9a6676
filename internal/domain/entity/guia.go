package entity

import "time"

// Guia es un documento de referencia versionado. Nunca se elimina; se desactiva.
type Guia struct {
	ID             string
	Titulo         string
	Descripcion    string
	Archivo        string // referencia al archivo (ruta o URL)
	Version        string
	Categoria      string
	FechaPublicado time.Time
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AuditFields devuelve una instantánea de los campos para la bitácora.
func (g *Guia) AuditFields() map[string]string {
	return map[string]string{
		"titulo":          g.Titulo,
		"descripcion":     g.Descripcion,
		"archivo":         g.Archivo,
		"version":         g.Version,
		"categoria":       g.Categoria,
		"fecha_publicado": formatDate(&g.FechaPublicado),
		"active":          boolString(g.Active),
		"updated_at":      g.UpdatedAt.Format(time.RFC3339Nano),
	}
}
