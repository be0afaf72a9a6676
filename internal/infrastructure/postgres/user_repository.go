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

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `
	u.id, u.name, u.email, u.password_hash, u.role_id, u.active,
	COALESCE(ARRAY(SELECT um.municipio_id::text FROM usuario_municipio um WHERE um.user_id = u.id ORDER BY um.municipio_id), '{}'),
	u.created_at, u.updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// Las asignaciones de municipio viven en usuario_municipio.
type UserRepo struct {
	q  Querier
	tx *TxRunner
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier, tx *TxRunner) *UserRepo {
	return &UserRepo{q: q, tx: tx}
}

// Create persiste un nuevo usuario junto con sus municipios.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return r.tx.Run(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO users (id, name, email, password_hash, role_id, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err := tx.Exec(ctx, query,
			user.ID, user.Name, user.Email, user.PasswordHash, int16(user.Role), user.Active,
			user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrEmailAlreadyExists
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return replaceMunicipios(ctx, tx, user.ID, user.MunicipioIDs)
	})
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE lower(u.email) = lower($1) LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Update actualiza los datos del usuario (no toca municipios).
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET name = $2, email = $3, password_hash = $4, role_id = $5, active = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, int16(user.Role), user.Active, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		if isInvalidTextRepresentation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List lista usuarios ordenados por email.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.email LIMIT $1 OFFSET $2`,
		limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collectUsers(rows)
}

// ListActiveByRole devuelve los usuarios activos de un rol.
func (r *UserRepo) ListActiveByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users u WHERE u.role_id = $1 AND u.active ORDER BY u.email`,
		int16(role))
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return collectUsers(rows)
}

// SetMunicipios reemplaza las asignaciones del usuario en una transacción.
func (r *UserRepo) SetMunicipios(ctx context.Context, userID string, municipioIDs []string) error {
	return r.tx.Run(ctx, func(tx pgx.Tx) error {
		return replaceMunicipios(ctx, tx, userID, municipioIDs)
	})
}

// Delete elimina el usuario; sus asignaciones se borran en cascada.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		if isInvalidTextRepresentation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func replaceMunicipios(ctx context.Context, tx pgx.Tx, userID string, municipioIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM usuario_municipio WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear usuario_municipio: %w", err)
	}
	if len(municipioIDs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, mid := range municipioIDs {
		batch.Queue(`INSERT INTO usuario_municipio (user_id, municipio_id) VALUES ($1, $2)`, userID, mid)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: municipio inexistente", domain.ErrInvalidInput)
		}
		if isInvalidTextRepresentation(err) {
			return fmt.Errorf("%w: municipio_id mal formado", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert usuario_municipio: %w", err)
	}
	return nil
}

func scanUser(row pgxScanner) (*entity.User, error) {
	var u entity.User
	var role int16
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Active,
		&u.MunicipioIDs, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]*entity.User, error) {
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
