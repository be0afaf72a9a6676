package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.MunicipioRepository = (*MunicipioRepository)(nil)

// MunicipioRepository almacén de municipios en memoria.
type MunicipioRepository struct {
	mu   sync.RWMutex
	rows map[string]entity.Municipio
}

func NewMunicipioRepository(seed ...*entity.Municipio) *MunicipioRepository {
	r := &MunicipioRepository{rows: make(map[string]entity.Municipio)}
	for _, m := range seed {
		r.rows[m.ID] = *m
	}
	return r
}

func (r *MunicipioRepository) Create(_ context.Context, m *entity.Municipio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[m.ID]; ok {
		return domain.ErrDuplicate
	}
	r.rows[m.ID] = *m
	return nil
}

func (r *MunicipioRepository) GetByID(_ context.Context, id string) (*entity.Municipio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MunicipioRepository) Update(_ context.Context, m *entity.Municipio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[m.ID] = *m
	return nil
}

func (r *MunicipioRepository) List(ctx context.Context, limit, offset int) ([]*entity.Municipio, error) {
	all, _ := r.ListAll(ctx)
	return page(all, limit, offset), nil
}

func (r *MunicipioRepository) ListAll(_ context.Context) ([]*entity.Municipio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Municipio, 0, len(r.rows))
	for _, m := range r.rows {
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MunicipioRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}
