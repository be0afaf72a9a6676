package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// errQuerier devuelve err en todas las operaciones.
type errQuerier struct{ err error }

func (q errQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, q.err
}

func (q errQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, q.err
}

func (q errQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{q.err}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// estadoRow llena solo el id y la columna estado de expedienteColumns.
type estadoRow struct {
	id, estado string
}

func (r estadoRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.id
	*dest[7].(*string) = r.estado
	return nil
}

var uuidMalFormado = &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

func TestIsInvalidTextRepresentation(t *testing.T) {
	assert.True(t, isInvalidTextRepresentation(uuidMalFormado))
	assert.True(t, isInvalidTextRepresentation(errors.Join(errors.New("get"), uuidMalFormado)))
	assert.False(t, isInvalidTextRepresentation(&pgconn.PgError{Code: "23505"}))
}

func TestExpedienteRepo_IDMalFormado(t *testing.T) {
	ctx := context.Background()
	repo := NewExpedienteRepository(errQuerier{uuidMalFormado})

	got, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, repo.SoftDelete(ctx, "abc"), domain.ErrNotFound)

	err = repo.Create(ctx, &entity.Expediente{ID: "x", MunicipioID: "abc", Estado: entity.EstadoBorrador, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, repo.Update(ctx, &entity.Expediente{ID: "x", MunicipioID: "abc", Estado: entity.EstadoBorrador}), domain.ErrInvalidInput)

	_, err = repo.ListForReport(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRepos_LookupConIDMalFormadoNoEncontrado(t *testing.T) {
	ctx := context.Background()
	q := errQuerier{uuidMalFormado}

	m, err := NewMunicipioRepository(q).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, m)

	u, err := NewUserRepository(q, nil).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, u)

	n, err := NewNotificacionRepository(q).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, n)

	g, err := NewGuiaRepository(q).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, g)

	revs, err := NewRevisionRepository(q).ListByExpediente(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, revs)

	assert.ErrorIs(t, NewMunicipioRepository(q).Delete(ctx, "abc"), domain.ErrNotFound)
}

func TestRepos_OtrosErroresNoSeOcultan(t *testing.T) {
	boom := errors.New("conexión cerrada")
	_, err := NewExpedienteRepository(errQuerier{boom}).GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, boom)
}

func TestScanExpediente_EstadoComoTexto(t *testing.T) {
	e, err := scanExpediente(estadoRow{id: "exp-1", estado: "En Revisión"})
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoEnRevision, e.Estado)

	e, err = scanExpediente(estadoRow{id: "exp-2", estado: "Archivado"})
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoArchivado, e.Estado)

	_, err = scanExpediente(estadoRow{id: "exp-3", estado: "Desconocido"})
	assert.Error(t, err)
}

func TestMigrations_EstadoComoTextoConCheck(t *testing.T) {
	body, err := migrationFiles.ReadFile("migrations/00001_init.sql")
	require.NoError(t, err)
	sql := string(body)
	for _, e := range entity.Estados() {
		assert.Contains(t, sql, "'"+e.String()+"'", e.String())
	}
	assert.NotContains(t, sql, "CREATE TABLE IF NOT EXISTS bitacora (")
}
