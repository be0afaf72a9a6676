package repository

import (
	"context"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// RevisionFinancieraRepository define el puerto de persistencia para revisiones financieras.
type RevisionFinancieraRepository interface {
	Create(ctx context.Context, rev *entity.RevisionFinanciera) error
	ListByExpediente(ctx context.Context, expedienteID string) ([]*entity.RevisionFinanciera, error)
}
