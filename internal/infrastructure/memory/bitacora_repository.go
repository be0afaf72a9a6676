package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.BitacoraRepository = (*BitacoraRepository)(nil)

// BitacoraRepository bitácora en memoria, solo inserción.
type BitacoraRepository struct {
	mu   sync.RWMutex
	rows []entity.Bitacora
}

func NewBitacoraRepository() *BitacoraRepository {
	return &BitacoraRepository{}
}

func (r *BitacoraRepository) Append(_ context.Context, b *entity.Bitacora) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *b)
	return nil
}

func (r *BitacoraRepository) List(_ context.Context, f repository.BitacoraFilter) ([]*entity.Bitacora, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Bitacora
	for i := len(r.rows) - 1; i >= 0; i-- {
		b := r.rows[i]
		if f.Entidad != "" && b.Entidad != f.Entidad {
			continue
		}
		if f.EntidadID != "" && b.EntidadID != f.EntidadID {
			continue
		}
		if !f.From.IsZero() && b.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && b.CreatedAt.After(f.To) {
			continue
		}
		out = append(out, &b)
	}
	return page(out, f.Limit, f.Offset), nil
}

// All devuelve todas las filas en orden de inserción.
func (r *BitacoraRepository) All() []entity.Bitacora {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.Bitacora(nil), r.rows...)
}
