package repository

import (
	"context"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// NotificacionRepository define el puerto de persistencia para notificaciones enviadas.
type NotificacionRepository interface {
	Create(ctx context.Context, n *entity.NotificacionEnviada) error
	GetByID(ctx context.Context, id string) (*entity.NotificacionEnviada, error)
	Update(ctx context.Context, n *entity.NotificacionEnviada) error
	// List filtra por estado si no es vacío.
	List(ctx context.Context, estado string, limit, offset int) ([]*entity.NotificacionEnviada, error)
}
