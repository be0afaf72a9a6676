package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/usecase"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/infrastructure/memory"
)

var (
	admin   = &entity.User{ID: "admin", Role: entity.RoleAdministrador, Active: true}
	tecnico = &entity.User{ID: "tec", Role: entity.RoleTecnico, Active: true}
)

func strPtr(s string) *string { return &s }

func TestUserUseCase_CrearYAsignar(t *testing.T) {
	ctx := context.Background()
	bitacora := memory.NewBitacoraRepository()
	municipios := memory.NewMunicipioRepository(&entity.Municipio{ID: "m1", Name: "San Marcos", Active: true})
	users := memory.NewUserRepository(admin)
	uc := usecase.NewUserUseCase(users, municipios, audit.NewWriter(bitacora, zerolog.Nop()))

	in := dto.CreateUserRequest{Email: "Tecnica@Gob.test", Password: "clave-segura", Name: "Técnica", Role: "tecnico"}
	out, err := uc.Create(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "tecnica@gob.test", out.Email)
	assert.Equal(t, "Técnico", out.RoleName)
	assert.Empty(t, out.MunicipioIDs)

	_, err = uc.Create(ctx, admin, in)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.Create(ctx, tecnico, dto.CreateUserRequest{Email: "x@gob.test", Password: "12345678", Name: "x", Role: "tecnico"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.AssignMunicipios(ctx, admin, out.ID, dto.AssignMunicipiosRequest{MunicipioIDs: []string{"no-existe"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err = uc.AssignMunicipios(ctx, admin, out.ID, dto.AssignMunicipiosRequest{MunicipioIDs: []string{"m1", "m1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, out.MunicipioIDs)

	stored, err := users.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAssignedTo("m1"))

	rows := bitacora.All()
	require.Len(t, rows, 2)
	assert.Equal(t, entity.BitacoraCreacion, rows[0].Tipo)
	assert.Equal(t, "Usuario editado: municipios", rows[1].Detalle)
}

func TestUserUseCase_CambioDePasswordNoSeAudita(t *testing.T) {
	ctx := context.Background()
	bitacora := memory.NewBitacoraRepository()
	users := memory.NewUserRepository(admin, &entity.User{ID: "u2", Email: "u2@gob.test", Role: entity.RoleMunicipal, Active: true})
	uc := usecase.NewUserUseCase(users, memory.NewMunicipioRepository(), audit.NewWriter(bitacora, zerolog.Nop()))

	_, err := uc.Update(ctx, admin, "u2", dto.UpdateUserRequest{Password: strPtr("nueva-clave-123")})
	require.NoError(t, err)
	assert.Empty(t, bitacora.All(), "el cambio de password no se reporta como edición")

	_, err = uc.Update(ctx, admin, "u2", dto.UpdateUserRequest{Role: strPtr("director_general")})
	require.NoError(t, err)
	rows := bitacora.All()
	require.Len(t, rows, 1)
	assert.Equal(t, "Usuario editado: role", rows[0].Detalle)
}

func TestUserUseCase_NoSeEliminaASiMismo(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository(admin)
	uc := usecase.NewUserUseCase(users, memory.NewMunicipioRepository(), audit.NewWriter(memory.NewBitacoraRepository(), zerolog.Nop()))

	assert.ErrorIs(t, uc.Delete(ctx, admin, admin.ID), domain.ErrConflict)
	assert.ErrorIs(t, uc.Delete(ctx, admin, "nadie"), domain.ErrUserNotFound)
}

func TestMunicipioUseCase_CRUD(t *testing.T) {
	ctx := context.Background()
	bitacora := memory.NewBitacoraRepository()
	uc := usecase.NewMunicipioUseCase(memory.NewMunicipioRepository(), audit.NewWriter(bitacora, zerolog.Nop()))

	m, err := uc.Create(ctx, admin, dto.CreateMunicipioRequest{Name: "San Marcos", Department: "Sucre", ContactEmail: "Alcaldia@SM.test"})
	require.NoError(t, err)
	assert.Equal(t, "alcaldia@sm.test", m.ContactEmail)
	assert.True(t, m.Active)

	_, err = uc.List(ctx, tecnico, 10, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	m, err = uc.Update(ctx, admin, m.ID, dto.UpdateMunicipioRequest{ContactPhone: strPtr("300 000 0000")})
	require.NoError(t, err)
	assert.Equal(t, "300 000 0000", m.ContactPhone)

	require.NoError(t, uc.Delete(ctx, admin, m.ID))
	_, err = uc.GetByID(ctx, admin, m.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var tipos []string
	for _, b := range bitacora.All() {
		tipos = append(tipos, b.Tipo)
	}
	assert.Equal(t, []string{entity.BitacoraCreacion, entity.BitacoraEdicion, entity.BitacoraEliminacion}, tipos)
}

func TestGuiaUseCase_DesactivarEnLugarDeEliminar(t *testing.T) {
	ctx := context.Background()
	bitacora := memory.NewBitacoraRepository()
	uc := usecase.NewGuiaUseCase(memory.NewGuiaRepository(), audit.NewWriter(bitacora, zerolog.Nop()))

	_, err := uc.Create(ctx, tecnico, dto.CreateGuiaRequest{Titulo: "Manual", Archivo: "manual.pdf", Version: "1.0"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	g, err := uc.Create(ctx, admin, dto.CreateGuiaRequest{Titulo: "Manual", Archivo: "manual.pdf", Version: "1.0", FechaPublicado: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, 2024, g.FechaPublicado.Year())

	list, err := uc.List(ctx, tecnico, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	g, err = uc.Deactivate(ctx, admin, g.ID)
	require.NoError(t, err)
	assert.False(t, g.Active)

	list, err = uc.List(ctx, tecnico, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "las guías inactivas no se listan para otros roles")

	_, err = uc.GetByID(ctx, tecnico, g.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err = uc.List(ctx, admin, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	rows := bitacora.All()
	require.Len(t, rows, 2)
	assert.Equal(t, "Guía editado: active", rows[1].Detalle)
}
