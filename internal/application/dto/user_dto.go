package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=8"`
	Name         string   `json:"name" validate:"required,min=1,max=200"`
	Role         string   `json:"role" validate:"required,oneof=administrador director_general jefe_financiero tecnico municipal"`
	MunicipioIDs []string `json:"municipio_ids" validate:"omitempty,dive,required"`
}

// UpdateUserRequest campos opcionales; nil = sin cambio.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=administrador director_general jefe_financiero tecnico municipal"`
	Active   *bool   `json:"active"`
}

// AssignMunicipiosRequest reemplaza los municipios asignados a un usuario.
type AssignMunicipiosRequest struct {
	MunicipioIDs []string `json:"municipio_ids" validate:"dive,required"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	RoleName     string    `json:"role_name"`
	Active       bool      `json:"active"`
	MunicipioIDs []string  `json:"municipio_ids"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
