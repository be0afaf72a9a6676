package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.RevisionFinancieraRepository = (*RevisionRepository)(nil)

// RevisionRepository almacén de revisiones financieras en memoria (orden de inserción).
type RevisionRepository struct {
	mu   sync.RWMutex
	rows []entity.RevisionFinanciera
}

func NewRevisionRepository() *RevisionRepository {
	return &RevisionRepository{}
}

func (r *RevisionRepository) Create(_ context.Context, rev *entity.RevisionFinanciera) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *rev)
	return nil
}

func (r *RevisionRepository) ListByExpediente(_ context.Context, expedienteID string) ([]*entity.RevisionFinanciera, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.RevisionFinanciera
	for i := range r.rows {
		if r.rows[i].ExpedienteID == expedienteID {
			rev := r.rows[i]
			out = append(out, &rev)
		}
	}
	return out, nil
}
