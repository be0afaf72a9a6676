package policy_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/policy"
)

const (
	sanMarcos = "mun-san-marcos"
	otroMun   = "mun-otro"
)

func actor(role entity.Role, municipios ...string) *entity.User {
	return &entity.User{ID: "u-" + role.Slug(), Role: role, Active: true, MunicipioIDs: municipios}
}

func expediente(estado entity.Estado, municipioID string) *entity.Expediente {
	return &entity.Expediente{ID: "exp-1", MunicipioID: municipioID, Estado: estado}
}

// expected reproduce la matriz de permisos de expedientes para un actor asignado
// al municipio del expediente.
func expected(role entity.Role, action policy.Action, estado entity.Estado) bool {
	switch action {
	case policy.ActionViewAny:
		return true
	case policy.ActionView:
		switch role {
		case entity.RoleJefeFinanciero:
			return estado == entity.EstadoEnRevision
		default:
			return true
		}
	case policy.ActionCreate:
		return role == entity.RoleAdministrador || role == entity.RoleTecnico
	case policy.ActionUpdate:
		switch role {
		case entity.RoleAdministrador:
			return estado != entity.EstadoAprobado && estado != entity.EstadoArchivado
		case entity.RoleTecnico:
			return estado == entity.EstadoBorrador || estado == entity.EstadoRechazado || estado == entity.EstadoIncompleto
		}
		return false
	case policy.ActionEnviarRevision:
		return role == entity.RoleTecnico && estado == entity.EstadoBorrador
	case policy.ActionRevisarFinanciera:
		return role == entity.RoleJefeFinanciero && estado == entity.EstadoEnRevision
	case policy.ActionDelete:
		return role == entity.RoleAdministrador
	}
	return false
}

func TestCanPerform_MatrizExpediente(t *testing.T) {
	actions := []policy.Action{
		policy.ActionViewAny, policy.ActionView, policy.ActionCreate, policy.ActionUpdate,
		policy.ActionEnviarRevision, policy.ActionRevisarFinanciera, policy.ActionDelete,
		policy.ActionRestore, policy.ActionForceDelete,
	}
	for _, role := range entity.Roles() {
		for _, action := range actions {
			for _, estado := range entity.Estados() {
				name := fmt.Sprintf("%s/%s/%s", role.Slug(), action, estado)
				t.Run(name, func(t *testing.T) {
					got := policy.CanPerform(actor(role, sanMarcos), action, expediente(estado, sanMarcos))
					assert.Equal(t, expected(role, action, estado), got)
				})
			}
		}
	}
}

func TestTecnicoSinAsignacion_DenegadoEnTodosLosEstados(t *testing.T) {
	tecnico := actor(entity.RoleTecnico, otroMun)
	for _, estado := range entity.Estados() {
		exp := expediente(estado, sanMarcos)
		for _, action := range []policy.Action{policy.ActionView, policy.ActionUpdate, policy.ActionEnviarRevision} {
			err := policy.Authorize(tecnico, action, exp)
			require.Error(t, err, "%s en %s", action, estado)
			assert.ErrorIs(t, err, domain.ErrForbidden)
		}
	}
}

func TestMunicipalSinAsignacion_NoVe(t *testing.T) {
	municipal := actor(entity.RoleMunicipal)
	assert.False(t, policy.CanPerform(municipal, policy.ActionView, expediente(entity.EstadoBorrador, sanMarcos)))
	assert.True(t, policy.CanPerform(municipal, policy.ActionViewAny, (*entity.Expediente)(nil)))
}

func TestAprobado_RechazaUpdateYEnvio(t *testing.T) {
	exp := expediente(entity.EstadoAprobado, sanMarcos)
	for _, role := range entity.Roles() {
		a := actor(role, sanMarcos)
		assert.False(t, policy.CanPerform(a, policy.ActionUpdate, exp), role.String())
		assert.False(t, policy.CanPerform(a, policy.ActionEnviarRevision, exp), role.String())
	}
}

func TestSanMarcos_EnviarRevision(t *testing.T) {
	tecnico := actor(entity.RoleTecnico, sanMarcos)

	borrador := expediente(entity.EstadoBorrador, sanMarcos)
	assert.True(t, policy.CanPerform(tecnico, policy.ActionEnviarRevision, borrador))

	enRevision := expediente(entity.EstadoEnRevision, sanMarcos)
	assert.False(t, policy.CanPerform(tecnico, policy.ActionEnviarRevision, enRevision))
}

func TestAuthorize_DistingueTransicionInvalidaDeProhibido(t *testing.T) {
	tecnico := actor(entity.RoleTecnico, sanMarcos)
	err := policy.Authorize(tecnico, policy.ActionEnviarRevision, expediente(entity.EstadoEnRevision, sanMarcos))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	municipal := actor(entity.RoleMunicipal, sanMarcos)
	err = policy.Authorize(municipal, policy.ActionEnviarRevision, expediente(entity.EstadoBorrador, sanMarcos))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestResolverYArchivar(t *testing.T) {
	director := actor(entity.RoleDirectorGeneral)
	admin := actor(entity.RoleAdministrador)

	assert.True(t, policy.CanPerform(director, policy.ActionResolver, expediente(entity.EstadoCompleto, sanMarcos)))
	assert.False(t, policy.CanPerform(director, policy.ActionResolver, expediente(entity.EstadoEnRevision, sanMarcos)))
	assert.False(t, policy.CanPerform(admin, policy.ActionResolver, expediente(entity.EstadoCompleto, sanMarcos)))

	assert.True(t, policy.CanPerform(admin, policy.ActionArchivar, expediente(entity.EstadoAprobado, sanMarcos)))
	assert.True(t, policy.CanPerform(admin, policy.ActionArchivar, expediente(entity.EstadoRechazado, sanMarcos)))
	assert.False(t, policy.CanPerform(admin, policy.ActionArchivar, expediente(entity.EstadoBorrador, sanMarcos)))
}

func TestGuiaMunicipioUsuario(t *testing.T) {
	for _, role := range entity.Roles() {
		a := actor(role)
		isAdmin := role == entity.RoleAdministrador

		assert.True(t, policy.CanPerform(a, policy.ActionView, &entity.Guia{}))
		assert.True(t, policy.CanPerform(a, policy.ActionViewAny, policy.GuiaResource{}))
		assert.Equal(t, isAdmin, policy.CanPerform(a, policy.ActionCreate, policy.GuiaResource{}))
		assert.Equal(t, isAdmin, policy.CanPerform(a, policy.ActionUpdate, &entity.Guia{}))
		assert.False(t, policy.CanPerform(a, policy.ActionDelete, &entity.Guia{}))

		for _, action := range []policy.Action{policy.ActionViewAny, policy.ActionCreate, policy.ActionUpdate, policy.ActionDelete} {
			assert.Equal(t, isAdmin, policy.CanPerform(a, action, policy.MunicipioResource{}))
			assert.Equal(t, isAdmin, policy.CanPerform(a, action, policy.UserResource{}))
		}
	}
}

func TestActorInactivoONulo(t *testing.T) {
	inactivo := actor(entity.RoleAdministrador)
	inactivo.Active = false
	assert.False(t, policy.CanPerform(inactivo, policy.ActionViewAny, policy.GuiaResource{}))
	assert.False(t, policy.CanPerform(nil, policy.ActionView, &entity.Guia{}))
}

func TestReportes(t *testing.T) {
	assert.True(t, policy.CanPerform(actor(entity.RoleJefeFinanciero), policy.ActionGenerate, policy.ReportResource{}))
	assert.False(t, policy.CanPerform(actor(entity.RoleTecnico, sanMarcos), policy.ActionGenerate, policy.ReportResource{}))
}
