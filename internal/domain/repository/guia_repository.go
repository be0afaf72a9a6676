package repository

import (
	"context"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// GuiaRepository define el puerto de persistencia para guías. No hay Delete.
type GuiaRepository interface {
	Create(ctx context.Context, g *entity.Guia) error
	GetByID(ctx context.Context, id string) (*entity.Guia, error)
	Update(ctx context.Context, g *entity.Guia) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Guia, error)
}
