package entity

import (
	"strings"
	"time"
)

// User representa un usuario del sistema. Técnico y Municipal solo acceden a
// los municipios de MunicipioIDs; los demás roles tienen acceso global.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash
	Role         Role
	Active       bool
	MunicipioIDs []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAssignedTo indica si el usuario tiene asignado el municipio.
func (u *User) IsAssignedTo(municipioID string) bool {
	if u == nil || municipioID == "" {
		return false
	}
	for _, id := range u.MunicipioIDs {
		if id == municipioID {
			return true
		}
	}
	return false
}

// AuditFields devuelve una instantánea de los campos para la bitácora.
func (u *User) AuditFields() map[string]string {
	return map[string]string{
		"name":          u.Name,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"role":          u.Role.String(),
		"active":        boolString(u.Active),
		"municipios":    strings.Join(u.MunicipioIDs, ","),
		"updated_at":    u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
