package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.NotificacionRepository = (*NotificacionRepository)(nil)

// NotificacionRepository almacén de notificaciones en memoria.
type NotificacionRepository struct {
	mu   sync.RWMutex
	rows map[string]entity.NotificacionEnviada
}

func NewNotificacionRepository() *NotificacionRepository {
	return &NotificacionRepository{rows: make(map[string]entity.NotificacionEnviada)}
}

func (r *NotificacionRepository) Create(_ context.Context, n *entity.NotificacionEnviada) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[n.ID] = *n
	return nil
}

func (r *NotificacionRepository) GetByID(_ context.Context, id string) (*entity.NotificacionEnviada, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r *NotificacionRepository) Update(_ context.Context, n *entity.NotificacionEnviada) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[n.ID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[n.ID] = *n
	return nil
}

func (r *NotificacionRepository) List(_ context.Context, estado string, limit, offset int) ([]*entity.NotificacionEnviada, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.NotificacionEnviada
	for _, n := range r.rows {
		if estado != "" && n.Estado != estado {
			continue
		}
		n := n
		out = append(out, &n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}
