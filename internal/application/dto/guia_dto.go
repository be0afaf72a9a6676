package dto

import "time"

// CreateGuiaRequest entrada para publicar una guía.
type CreateGuiaRequest struct {
	Titulo         string `json:"titulo" validate:"required,max=200"`
	Descripcion    string `json:"descripcion" validate:"omitempty,max=2000"`
	Archivo        string `json:"archivo" validate:"required,max=500"`
	Version        string `json:"version" validate:"required,max=20"`
	Categoria      string `json:"categoria" validate:"omitempty,max=100"`
	FechaPublicado string `json:"fecha_publicado" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateGuiaRequest campos opcionales; nil = sin cambio.
type UpdateGuiaRequest struct {
	Titulo         *string `json:"titulo" validate:"omitempty,max=200"`
	Descripcion    *string `json:"descripcion" validate:"omitempty,max=2000"`
	Archivo        *string `json:"archivo" validate:"omitempty,max=500"`
	Version        *string `json:"version" validate:"omitempty,max=20"`
	Categoria      *string `json:"categoria" validate:"omitempty,max=100"`
	FechaPublicado *string `json:"fecha_publicado" validate:"omitempty,datetime=2006-01-02"`
}

type GuiaResponse struct {
	ID             string    `json:"id"`
	Titulo         string    `json:"titulo"`
	Descripcion    string    `json:"descripcion,omitempty"`
	Archivo        string    `json:"archivo"`
	Version        string    `json:"version"`
	Categoria      string    `json:"categoria,omitempty"`
	FechaPublicado time.Time `json:"fecha_publicado"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
