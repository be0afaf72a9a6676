package repository

import (
	"context"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// ExpedienteFilter restringe los listados. MunicipioIDs nil significa sin restricción;
// un slice vacío no nil no devuelve nada (usuario sin municipios asignados).
type ExpedienteFilter struct {
	MunicipioIDs []string
	Estado       entity.Estado // 0 = cualquiera
	Search       string        // código o nombre del proyecto
	Limit        int
	Offset       int
}

// ExpedienteRepository define el puerto de persistencia para Expediente.
// Los expedientes eliminados (DeletedAt != nil) no se devuelven.
type ExpedienteRepository interface {
	Create(ctx context.Context, exp *entity.Expediente) error
	GetByID(ctx context.Context, id string) (*entity.Expediente, error)
	GetByCodigo(ctx context.Context, codigo string) (*entity.Expediente, error)
	Update(ctx context.Context, exp *entity.Expediente) error
	List(ctx context.Context, f ExpedienteFilter) ([]*entity.Expediente, error)
	// Count ignora Limit y Offset del filtro.
	Count(ctx context.Context, f ExpedienteFilter) (int, error)
	// ListForReport devuelve todos los expedientes vigentes, opcionalmente de un municipio.
	ListForReport(ctx context.Context, municipioID string) ([]*entity.Expediente, error)
	SoftDelete(ctx context.Context, id string) error
}
