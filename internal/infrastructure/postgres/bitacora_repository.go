package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.BitacoraRepository = (*BitacoraRepo)(nil)

// BitacoraRepo es de solo inserción; la tabla además revoca UPDATE/DELETE vía trigger.
type BitacoraRepo struct {
	q Querier
}

func NewBitacoraRepository(q Querier) *BitacoraRepo {
	return &BitacoraRepo{q: q}
}

func (r *BitacoraRepo) Append(ctx context.Context, b *entity.Bitacora) error {
	query := `
		INSERT INTO bitacoras (id, user_id, entidad, entidad_id, tipo, detalle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		b.ID, nullIfEmpty(b.UserID), b.Entidad, b.EntidadID, b.Tipo, b.Detalle, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bitacora: %w", err)
	}
	return nil
}

// List devuelve los registros más recientes primero.
func (r *BitacoraRepo) List(ctx context.Context, f repository.BitacoraFilter) ([]*entity.Bitacora, error) {
	conds := []string{"true"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Entidad != "" {
		conds = append(conds, "entidad = "+arg(f.Entidad))
	}
	if f.EntidadID != "" {
		conds = append(conds, "entidad_id = "+arg(f.EntidadID))
	}
	if !f.From.IsZero() {
		conds = append(conds, "created_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "created_at <= "+arg(f.To))
	}
	query := `
		SELECT id, COALESCE(user_id::text, ''), entidad, entidad_id, tipo, detalle, created_at
		FROM bitacoras WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY created_at DESC, id
		LIMIT ` + arg(limitOrAll(f.Limit)) + ` OFFSET ` + arg(f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bitacora: %w", err)
	}
	defer rows.Close()

	var list []*entity.Bitacora
	for rows.Next() {
		var b entity.Bitacora
		if err := rows.Scan(&b.ID, &b.UserID, &b.Entidad, &b.EntidadID, &b.Tipo, &b.Detalle, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bitacora: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
