package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.GuiaRepository = (*GuiaRepo)(nil)

const guiaColumns = `id, titulo, descripcion, archivo, version, categoria, fecha_publicado, active, created_at, updated_at`

type GuiaRepo struct {
	q Querier
}

func NewGuiaRepository(q Querier) *GuiaRepo {
	return &GuiaRepo{q: q}
}

func (r *GuiaRepo) Create(ctx context.Context, g *entity.Guia) error {
	query := `INSERT INTO guias (` + guiaColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		g.ID, g.Titulo, g.Descripcion, g.Archivo, g.Version, g.Categoria, g.FechaPublicado, g.Active,
		g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert guia: %w", err)
	}
	return nil
}

func (r *GuiaRepo) GetByID(ctx context.Context, id string) (*entity.Guia, error) {
	g, err := scanGuia(r.q.QueryRow(ctx, `SELECT `+guiaColumns+` FROM guias WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get guia: %w", err)
	}
	return g, nil
}

func (r *GuiaRepo) Update(ctx context.Context, g *entity.Guia) error {
	query := `
		UPDATE guias
		SET titulo = $2, descripcion = $3, archivo = $4, version = $5, categoria = $6,
		    fecha_publicado = $7, active = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		g.ID, g.Titulo, g.Descripcion, g.Archivo, g.Version, g.Categoria, g.FechaPublicado, g.Active, g.UpdatedAt,
	)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update guia: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List ordena por fecha de publicación descendente.
func (r *GuiaRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Guia, error) {
	query := `
		SELECT ` + guiaColumns + ` FROM guias
		WHERE ($1 = false OR active)
		ORDER BY fecha_publicado DESC, titulo
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, onlyActive, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list guias: %w", err)
	}
	defer rows.Close()

	var list []*entity.Guia
	for rows.Next() {
		g, err := scanGuia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guia: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func scanGuia(row pgxScanner) (*entity.Guia, error) {
	var g entity.Guia
	err := row.Scan(&g.ID, &g.Titulo, &g.Descripcion, &g.Archivo, &g.Version, &g.Categoria,
		&g.FechaPublicado, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
