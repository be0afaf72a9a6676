package repository

import (
	"context"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// MunicipioRepository define el puerto de persistencia para Municipio.
type MunicipioRepository interface {
	Create(ctx context.Context, m *entity.Municipio) error
	GetByID(ctx context.Context, id string) (*entity.Municipio, error)
	Update(ctx context.Context, m *entity.Municipio) error
	List(ctx context.Context, limit, offset int) ([]*entity.Municipio, error)
	// ListAll devuelve todos los municipios; lo usan los reportes.
	ListAll(ctx context.Context) ([]*entity.Municipio, error)
	Delete(ctx context.Context, id string) error
}
