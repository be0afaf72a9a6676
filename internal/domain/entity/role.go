package entity

import "strings"

// Role es uno de los cinco roles fijos del sistema. Los valores coinciden con
// los ids sembrados en la tabla roles.
type Role uint8

const (
	RoleAdministrador Role = iota + 1
	RoleDirectorGeneral
	RoleJefeFinanciero
	RoleTecnico
	RoleMunicipal
)

var roleNames = map[Role]string{
	RoleAdministrador:   "Administrador",
	RoleDirectorGeneral: "Director General",
	RoleJefeFinanciero:  "Jefe Administrativo-Financiero",
	RoleTecnico:         "Técnico",
	RoleMunicipal:       "Municipal",
}

var roleSlugs = map[Role]string{
	RoleAdministrador:   "administrador",
	RoleDirectorGeneral: "director_general",
	RoleJefeFinanciero:  "jefe_financiero",
	RoleTecnico:         "tecnico",
	RoleMunicipal:       "municipal",
}

// Roles devuelve los cinco roles en orden de id.
func Roles() []Role {
	return []Role{RoleAdministrador, RoleDirectorGeneral, RoleJefeFinanciero, RoleTecnico, RoleMunicipal}
}

// Valid indica si r es uno de los roles definidos.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// String devuelve el nombre visible del rol.
func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "desconocido"
}

// Slug devuelve el identificador corto usado en JWT y en la API.
func (r Role) Slug() string {
	return roleSlugs[r]
}

// HasGlobalAccess indica si el rol ve todos los municipios sin asignación explícita.
func (r Role) HasGlobalAccess() bool {
	return r == RoleAdministrador || r == RoleDirectorGeneral || r == RoleJefeFinanciero
}

// ParseRole acepta el slug o el nombre visible (sin distinguir mayúsculas).
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for r, slug := range roleSlugs {
		if strings.EqualFold(s, slug) || strings.EqualFold(s, roleNames[r]) {
			return r, true
		}
	}
	return 0, false
}
