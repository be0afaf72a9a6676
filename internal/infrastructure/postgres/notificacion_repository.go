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

var _ repository.NotificacionRepository = (*NotificacionRepo)(nil)

const notificacionColumns = `
	id, tipo, COALESCE(expediente_id::text, ''), destinatario, asunto, mensaje, estado, intentos,
	ultimo_error, enviado_at, created_at, updated_at`

// NotificacionRepo persiste notificaciones_enviadas.
type NotificacionRepo struct {
	q Querier
}

func NewNotificacionRepository(q Querier) *NotificacionRepo {
	return &NotificacionRepo{q: q}
}

func (r *NotificacionRepo) Create(ctx context.Context, n *entity.NotificacionEnviada) error {
	query := `
		INSERT INTO notificaciones_enviadas
			(id, tipo, expediente_id, destinatario, asunto, mensaje, estado, intentos, ultimo_error, enviado_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.Tipo, nullIfEmpty(n.ExpedienteID), n.Destinatario, n.Asunto, n.Mensaje, n.Estado,
		n.Intentos, n.UltimoError, n.EnviadoAt, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notificacion: %w", err)
	}
	return nil
}

func (r *NotificacionRepo) GetByID(ctx context.Context, id string) (*entity.NotificacionEnviada, error) {
	n, err := scanNotificacion(r.q.QueryRow(ctx, `SELECT `+notificacionColumns+` FROM notificaciones_enviadas WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get notificacion: %w", err)
	}
	return n, nil
}

// Update solo modifica los campos de entrega.
func (r *NotificacionRepo) Update(ctx context.Context, n *entity.NotificacionEnviada) error {
	query := `
		UPDATE notificaciones_enviadas
		SET estado = $2, intentos = $3, ultimo_error = $4, enviado_at = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, n.ID, n.Estado, n.Intentos, n.UltimoError, n.EnviadoAt, n.UpdatedAt)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update notificacion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificacionRepo) List(ctx context.Context, estado string, limit, offset int) ([]*entity.NotificacionEnviada, error) {
	query := `
		SELECT ` + notificacionColumns + ` FROM notificaciones_enviadas
		WHERE ($1 = '' OR estado = $1)
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, estado, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list notificaciones: %w", err)
	}
	defer rows.Close()

	var list []*entity.NotificacionEnviada
	for rows.Next() {
		n, err := scanNotificacion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notificacion: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func scanNotificacion(row pgxScanner) (*entity.NotificacionEnviada, error) {
	var n entity.NotificacionEnviada
	err := row.Scan(&n.ID, &n.Tipo, &n.ExpedienteID, &n.Destinatario, &n.Asunto, &n.Mensaje, &n.Estado,
		&n.Intentos, &n.UltimoError, &n.EnviadoAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
