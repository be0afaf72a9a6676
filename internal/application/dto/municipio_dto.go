package dto

import "time"

// CreateMunicipioRequest entrada para crear un municipio.
type CreateMunicipioRequest struct {
	Name         string `json:"name" validate:"required,max=150"`
	Department   string `json:"department" validate:"required,max=150"`
	ContactName  string `json:"contact_name" validate:"omitempty,max=200"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,max=50"`
}

// UpdateMunicipioRequest campos opcionales; nil = sin cambio.
type UpdateMunicipioRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=150"`
	Department   *string `json:"department" validate:"omitempty,max=150"`
	ContactName  *string `json:"contact_name" validate:"omitempty,max=200"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=50"`
	Active       *bool   `json:"active"`
}

type MunicipioResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	ContactName  string    `json:"contact_name,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
