package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.RevisionFinancieraRepository = (*RevisionRepo)(nil)

// RevisionRepo persiste el historial de revisiones financieras.
type RevisionRepo struct {
	q Querier
}

func NewRevisionRepository(q Querier) *RevisionRepo {
	return &RevisionRepo{q: q}
}

func (r *RevisionRepo) Create(ctx context.Context, rev *entity.RevisionFinanciera) error {
	query := `
		INSERT INTO revisiones_financieras
			(id, expediente_id, revisor_id, resultado, accion, monto_aprobado, comentarios, dias_transcurridos, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		rev.ID, rev.ExpedienteID, nullIfEmpty(rev.RevisorID), rev.Resultado, rev.Accion,
		rev.MontoAprobado, rev.Comentarios, rev.DiasTranscurridos, rev.CreatedAt,
	)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return fmt.Errorf("%w: identificador mal formado", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert revision financiera: %w", err)
	}
	return nil
}

// ListByExpediente devuelve las revisiones en orden cronológico.
func (r *RevisionRepo) ListByExpediente(ctx context.Context, expedienteID string) ([]*entity.RevisionFinanciera, error) {
	query := `
		SELECT id, expediente_id::text, COALESCE(revisor_id::text, ''), resultado, accion, monto_aprobado,
		       comentarios, dias_transcurridos, created_at
		FROM revisiones_financieras
		WHERE expediente_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, expedienteID)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list revisiones: %w", err)
	}
	defer rows.Close()

	var list []*entity.RevisionFinanciera
	for rows.Next() {
		var rev entity.RevisionFinanciera
		if err := rows.Scan(&rev.ID, &rev.ExpedienteID, &rev.RevisorID, &rev.Resultado, &rev.Accion,
			&rev.MontoAprobado, &rev.Comentarios, &rev.DiasTranscurridos, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		list = append(list, &rev)
	}
	return list, rows.Err()
}
