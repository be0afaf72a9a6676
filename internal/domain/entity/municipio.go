package entity

import "time"

// Municipio es el límite de alcance para los roles no globales. Posee sus expedientes.
type Municipio struct {
	ID           string
	Name         string
	Department   string
	ContactName  string
	ContactEmail string
	ContactPhone string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuditFields devuelve una instantánea de los campos para la bitácora.
func (m *Municipio) AuditFields() map[string]string {
	return map[string]string{
		"name":          m.Name,
		"department":    m.Department,
		"contact_name":  m.ContactName,
		"contact_email": m.ContactEmail,
		"contact_phone": m.ContactPhone,
		"active":        boolString(m.Active),
		"updated_at":    m.UpdatedAt.Format(time.RFC3339Nano),
	}
}
