package repository

import (
	"context"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los métodos de lectura devuelven (nil, nil) si el usuario no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	// ListActiveByRole se usa para resolver destinatarios de notificaciones.
	ListActiveByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
	// SetMunicipios reemplaza el conjunto de municipios asignados.
	SetMunicipios(ctx context.Context, userID string, municipioIDs []string) error
	Delete(ctx context.Context, id string) error
}
