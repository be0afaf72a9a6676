package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.GuiaRepository = (*GuiaRepository)(nil)

// GuiaRepository almacén de guías en memoria.
type GuiaRepository struct {
	mu   sync.RWMutex
	rows map[string]entity.Guia
}

func NewGuiaRepository() *GuiaRepository {
	return &GuiaRepository{rows: make(map[string]entity.Guia)}
}

func (r *GuiaRepository) Create(_ context.Context, g *entity.Guia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[g.ID] = *g
	return nil
}

func (r *GuiaRepository) GetByID(_ context.Context, id string) (*entity.Guia, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *GuiaRepository) Update(_ context.Context, g *entity.Guia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[g.ID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[g.ID] = *g
	return nil
}

func (r *GuiaRepository) List(_ context.Context, onlyActive bool, limit, offset int) ([]*entity.Guia, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Guia
	for _, g := range r.rows {
		if onlyActive && !g.Active {
			continue
		}
		g := g
		out = append(out, &g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaPublicado.After(out[j].FechaPublicado) })
	return page(out, limit, offset), nil
}
