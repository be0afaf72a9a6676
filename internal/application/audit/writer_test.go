package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/infrastructure/memory"
)

func TestChangedFields_IgnoraTimestampsYSensibles(t *testing.T) {
	before := map[string]string{"name": "Ana", "updated_at": "1", "password_hash": "x", "email": "a@x"}
	after := map[string]string{"name": "Ana María", "updated_at": "2", "password_hash": "y", "email": "a@x"}

	assert.Equal(t, []string{"name"}, audit.ChangedFields(before, after))
}

func TestDescribe_SoloEstado(t *testing.T) {
	before := map[string]string{"estado": "Borrador", "updated_at": "1"}
	after := map[string]string{"estado": "En Revisión", "updated_at": "2"}

	tipo, detalle, ok := audit.Describe(entity.EntidadExpediente, before, after)
	require.True(t, ok)
	assert.Equal(t, entity.BitacoraCambioEstado, tipo)
	assert.Contains(t, detalle, `"Borrador" a "En Revisión"`)
	assert.NotContains(t, detalle, "campos editados")
}

func TestDescribe_Edicion(t *testing.T) {
	before := map[string]string{"estado": "Borrador", "nombre_proyecto": "A", "adjudicatario": "X", "updated_at": "1"}
	after := map[string]string{"estado": "Borrador", "nombre_proyecto": "B", "adjudicatario": "Y", "updated_at": "2"}

	tipo, detalle, ok := audit.Describe(entity.EntidadExpediente, before, after)
	require.True(t, ok)
	assert.Equal(t, entity.BitacoraEdicion, tipo)
	assert.Equal(t, "Expediente editado: adjudicatario, nombre_proyecto", detalle)
}

func TestDescribe_SinCambios(t *testing.T) {
	_, _, ok := audit.Describe(entity.EntidadGuia,
		map[string]string{"titulo": "t", "updated_at": "1"},
		map[string]string{"titulo": "t", "updated_at": "2"})
	assert.False(t, ok)
}

func TestWriter_Updated_UnaFila(t *testing.T) {
	repo := memory.NewBitacoraRepository()
	w := audit.NewWriter(repo, zerolog.Nop())

	w.Updated(context.Background(), "u1", entity.EntidadExpediente, "e1",
		map[string]string{"estado": "Borrador"}, map[string]string{"estado": "En Revisión"})

	rows := repo.All()
	require.Len(t, rows, 1)
	assert.Equal(t, entity.BitacoraCambioEstado, rows[0].Tipo)
	assert.Equal(t, "u1", rows[0].UserID)
}

type failingRepo struct{ *memory.BitacoraRepository }

func (failingRepo) Append(context.Context, *entity.Bitacora) error { return errors.New("db caída") }

func TestWriter_FalloNoPropaga(t *testing.T) {
	w := audit.NewWriter(failingRepo{}, zerolog.Nop())
	assert.NotPanics(t, func() {
		w.Created(context.Background(), "", entity.EntidadGuia, "g1", "Guía 1")
	})
}
