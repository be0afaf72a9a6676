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

var _ repository.MunicipioRepository = (*MunicipioRepo)(nil)

const municipioColumns = `id, name, department, contact_name, contact_email, contact_phone, active, created_at, updated_at`

// MunicipioRepo implementación del puerto MunicipioRepository.
type MunicipioRepo struct {
	q Querier
}

func NewMunicipioRepository(q Querier) *MunicipioRepo {
	return &MunicipioRepo{q: q}
}

func (r *MunicipioRepo) Create(ctx context.Context, m *entity.Municipio) error {
	query := `
		INSERT INTO municipios (` + municipioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.Department, m.ContactName, m.ContactEmail, m.ContactPhone, m.Active,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert municipio: %w", err)
	}
	return nil
}

func (r *MunicipioRepo) GetByID(ctx context.Context, id string) (*entity.Municipio, error) {
	m, err := scanMunicipio(r.q.QueryRow(ctx, `SELECT `+municipioColumns+` FROM municipios WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get municipio: %w", err)
	}
	return m, nil
}

func (r *MunicipioRepo) Update(ctx context.Context, m *entity.Municipio) error {
	query := `
		UPDATE municipios
		SET name = $2, department = $3, contact_name = $4, contact_email = $5, contact_phone = $6,
		    active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.Department, m.ContactName, m.ContactEmail, m.ContactPhone, m.Active, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isInvalidTextRepresentation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update municipio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MunicipioRepo) List(ctx context.Context, limit, offset int) ([]*entity.Municipio, error) {
	rows, err := r.q.Query(ctx, `SELECT `+municipioColumns+` FROM municipios ORDER BY name LIMIT $1 OFFSET $2`,
		limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list municipios: %w", err)
	}
	return collectMunicipios(rows)
}

func (r *MunicipioRepo) ListAll(ctx context.Context) ([]*entity.Municipio, error) {
	return r.List(ctx, 0, 0)
}

// Delete falla con ErrConflict si el municipio todavía tiene expedientes.
func (r *MunicipioRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM municipios WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el municipio tiene expedientes", domain.ErrConflict)
		}
		if isInvalidTextRepresentation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete municipio: %w", err)
	}
	return nil
}

func scanMunicipio(row pgxScanner) (*entity.Municipio, error) {
	var m entity.Municipio
	err := row.Scan(&m.ID, &m.Name, &m.Department, &m.ContactName, &m.ContactEmail, &m.ContactPhone,
		&m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMunicipios(rows pgx.Rows) ([]*entity.Municipio, error) {
	defer rows.Close()
	var list []*entity.Municipio
	for rows.Next() {
		m, err := scanMunicipio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan municipio: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
