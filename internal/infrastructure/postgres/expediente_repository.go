package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.ExpedienteRepository = (*ExpedienteRepo)(nil)

// El estado se guarda con su nombre visible ("En Revisión", ...) y un CHECK en la tabla.
const expedienteColumns = `
	id, codigo, nombre_proyecto, municipio_id::text, COALESCE(responsable_id::text, ''),
	tipo_solicitud, fecha_recepcion, estado, fecha_aprobacion, monto_contratado, adjudicatario, etiquetas,
	COALESCE(revisor_id::text, ''), fecha_recibido_financiero, fecha_revisado, fecha_complemento,
	monto_aprobado, comentarios_financieros, created_at, updated_at, deleted_at`

// ExpedienteRepo implementación del puerto ExpedienteRepository.
// Todas las lecturas excluyen filas con deleted_at.
type ExpedienteRepo struct {
	q Querier
}

func NewExpedienteRepository(q Querier) *ExpedienteRepo {
	return &ExpedienteRepo{q: q}
}

func (r *ExpedienteRepo) Create(ctx context.Context, e *entity.Expediente) error {
	query := `
		INSERT INTO expedientes (
			id, codigo, nombre_proyecto, municipio_id, responsable_id, tipo_solicitud, fecha_recepcion,
			estado, fecha_aprobacion, monto_contratado, adjudicatario, etiquetas,
			revisor_id, fecha_recibido_financiero, fecha_revisado, fecha_complemento,
			monto_aprobado, comentarios_financieros, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Codigo, e.NombreProyecto, e.MunicipioID, nullIfEmpty(e.ResponsableID), e.TipoSolicitud,
		e.FechaRecepcion, e.Estado.String(), e.FechaAprobacion, e.MontoContratado, e.Adjudicatario, etiquetas(e.Etiquetas),
		nullIfEmpty(e.RevisorID), e.FechaRecibidoFinanciero, e.FechaRevisado, e.FechaComplemento,
		e.MontoAprobado, e.ComentariosFinancieros, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código %s", domain.ErrDuplicate, e.Codigo)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: municipio o responsable inexistente", domain.ErrInvalidInput)
		}
		if isInvalidTextRepresentation(err) {
			return fmt.Errorf("%w: identificador mal formado", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert expediente: %w", err)
	}
	return nil
}

func (r *ExpedienteRepo) GetByID(ctx context.Context, id string) (*entity.Expediente, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *ExpedienteRepo) GetByCodigo(ctx context.Context, codigo string) (*entity.Expediente, error) {
	return r.getOne(ctx, `codigo = $1`, codigo)
}

func (r *ExpedienteRepo) getOne(ctx context.Context, where string, arg any) (*entity.Expediente, error) {
	query := `SELECT ` + expedienteColumns + ` FROM expedientes WHERE ` + where + ` AND deleted_at IS NULL`
	e, err := scanExpediente(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get expediente: %w", err)
	}
	return e, nil
}

func (r *ExpedienteRepo) Update(ctx context.Context, e *entity.Expediente) error {
	query := `
		UPDATE expedientes SET
			codigo = $2, nombre_proyecto = $3, municipio_id = $4, responsable_id = $5, tipo_solicitud = $6,
			fecha_recepcion = $7, estado = $8, fecha_aprobacion = $9, monto_contratado = $10,
			adjudicatario = $11, etiquetas = $12, revisor_id = $13, fecha_recibido_financiero = $14,
			fecha_revisado = $15, fecha_complemento = $16, monto_aprobado = $17,
			comentarios_financieros = $18, updated_at = $19
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(ctx, query,
		e.ID, e.Codigo, e.NombreProyecto, e.MunicipioID, nullIfEmpty(e.ResponsableID), e.TipoSolicitud,
		e.FechaRecepcion, e.Estado.String(), e.FechaAprobacion, e.MontoContratado,
		e.Adjudicatario, etiquetas(e.Etiquetas), nullIfEmpty(e.RevisorID), e.FechaRecibidoFinanciero,
		e.FechaRevisado, e.FechaComplemento, e.MontoAprobado,
		e.ComentariosFinancieros, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código %s", domain.ErrDuplicate, e.Codigo)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: municipio o responsable inexistente", domain.ErrInvalidInput)
		}
		if isInvalidTextRepresentation(err) {
			return fmt.Errorf("%w: identificador mal formado", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update expediente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List aplica el alcance por municipios, el estado y la búsqueda por código o nombre.
func (r *ExpedienteRepo) List(ctx context.Context, f repository.ExpedienteFilter) ([]*entity.Expediente, error) {
	if f.MunicipioIDs != nil && len(f.MunicipioIDs) == 0 {
		return nil, nil
	}
	where, args := expedienteWhere(f)
	args = append(args, limitOrAll(f.Limit), f.Offset)
	query := `SELECT ` + expedienteColumns + ` FROM expedientes WHERE ` + where +
		fmt.Sprintf(` ORDER BY fecha_recepcion DESC, codigo LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expedientes: %w", err)
	}
	return collectExpedientes(rows)
}

// Count usa los mismos filtros que List sin paginar.
func (r *ExpedienteRepo) Count(ctx context.Context, f repository.ExpedienteFilter) (int, error) {
	if f.MunicipioIDs != nil && len(f.MunicipioIDs) == 0 {
		return 0, nil
	}
	where, args := expedienteWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM expedientes WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expedientes: %w", err)
	}
	return n, nil
}

func expedienteWhere(f repository.ExpedienteFilter) (string, []any) {
	conds := []string{"deleted_at IS NULL"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.MunicipioIDs != nil {
		conds = append(conds, "municipio_id::text = ANY("+arg(f.MunicipioIDs)+")")
	}
	if f.Estado != 0 {
		conds = append(conds, "estado = "+arg(f.Estado.String()))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		conds = append(conds, "(codigo ILIKE "+p+" OR nombre_proyecto ILIKE "+p+")")
	}
	return strings.Join(conds, " AND "), args
}

func (r *ExpedienteRepo) ListForReport(ctx context.Context, municipioID string) ([]*entity.Expediente, error) {
	query := `
		SELECT ` + expedienteColumns + ` FROM expedientes
		WHERE deleted_at IS NULL AND ($1::uuid IS NULL OR municipio_id = $1::uuid)
		ORDER BY fecha_recepcion DESC, codigo`
	rows, err := r.q.Query(ctx, query, nullIfEmpty(municipioID))
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return nil, fmt.Errorf("%w: municipio_id mal formado", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("list expedientes for report: %w", err)
	}
	return collectExpedientes(rows)
}

func (r *ExpedienteRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE expedientes SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("soft delete expediente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func etiquetas(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func scanExpediente(row pgxScanner) (*entity.Expediente, error) {
	var e entity.Expediente
	var estado string
	err := row.Scan(
		&e.ID, &e.Codigo, &e.NombreProyecto, &e.MunicipioID, &e.ResponsableID,
		&e.TipoSolicitud, &e.FechaRecepcion, &estado, &e.FechaAprobacion, &e.MontoContratado, &e.Adjudicatario, &e.Etiquetas,
		&e.RevisorID, &e.FechaRecibidoFinanciero, &e.FechaRevisado, &e.FechaComplemento,
		&e.MontoAprobado, &e.ComentariosFinancieros, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if e.Estado, err = entity.ParseEstado(estado); err != nil {
		return nil, fmt.Errorf("expediente %s: %w", e.ID, err)
	}
	return &e, nil
}

func collectExpedientes(rows pgx.Rows) ([]*entity.Expediente, error) {
	defer rows.Close()
	var list []*entity.Expediente
	for rows.Next() {
		e, err := scanExpediente(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expediente: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
