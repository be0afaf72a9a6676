package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// BitacoraFilter restringe las consultas de bitácora. Campos vacíos no filtran.
type BitacoraFilter struct {
	Entidad   string
	EntidadID string
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

// BitacoraRepository es de solo inserción: no expone Update ni Delete.
type BitacoraRepository interface {
	Append(ctx context.Context, b *entity.Bitacora) error
	List(ctx context.Context, f BitacoraFilter) ([]*entity.Bitacora, error)
}
