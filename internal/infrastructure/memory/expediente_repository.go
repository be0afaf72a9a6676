package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ repository.ExpedienteRepository = (*ExpedienteRepository)(nil)

// ExpedienteRepository almacén de expedientes en memoria.
type ExpedienteRepository struct {
	mu   sync.RWMutex
	rows map[string]entity.Expediente
}

func NewExpedienteRepository(seed ...*entity.Expediente) *ExpedienteRepository {
	r := &ExpedienteRepository{rows: make(map[string]entity.Expediente)}
	for _, e := range seed {
		r.rows[e.ID] = cloneExpediente(e)
	}
	return r
}

// Create aplica la misma unicidad que el índice parcial de PostgreSQL: solo entre filas vigentes.
func (r *ExpedienteRepository) Create(_ context.Context, e *entity.Expediente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Codigo == e.Codigo && existing.DeletedAt == nil {
			return domain.ErrDuplicate
		}
	}
	r.rows[e.ID] = cloneExpediente(e)
	return nil
}

func (r *ExpedienteRepository) GetByID(_ context.Context, id string) (*entity.Expediente, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rows[id]
	if !ok || e.DeletedAt != nil {
		return nil, nil
	}
	c := cloneExpediente(&e)
	return &c, nil
}

func (r *ExpedienteRepository) GetByCodigo(_ context.Context, codigo string) (*entity.Expediente, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.rows {
		if e.Codigo == codigo && e.DeletedAt == nil {
			c := cloneExpediente(&e)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ExpedienteRepository) Update(_ context.Context, e *entity.Expediente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[e.ID] = cloneExpediente(e)
	return nil
}

func (r *ExpedienteRepository) List(_ context.Context, f repository.ExpedienteFilter) ([]*entity.Expediente, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.matching(f)
	sortExpedientes(out)
	return page(out, f.Limit, f.Offset), nil
}

func (r *ExpedienteRepository) Count(_ context.Context, f repository.ExpedienteFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matching(f)), nil
}

// matching requiere r.mu tomado.
func (r *ExpedienteRepository) matching(f repository.ExpedienteFilter) []*entity.Expediente {
	var allowed map[string]bool
	if f.MunicipioIDs != nil {
		allowed = make(map[string]bool, len(f.MunicipioIDs))
		for _, id := range f.MunicipioIDs {
			allowed[id] = true
		}
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*entity.Expediente
	for _, e := range r.rows {
		if e.DeletedAt != nil {
			continue
		}
		if allowed != nil && !allowed[e.MunicipioID] {
			continue
		}
		if f.Estado != 0 && e.Estado != f.Estado {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Codigo), search) &&
			!strings.Contains(strings.ToLower(e.NombreProyecto), search) {
			continue
		}
		c := cloneExpediente(&e)
		out = append(out, &c)
	}
	return out
}

func (r *ExpedienteRepository) ListForReport(_ context.Context, municipioID string) ([]*entity.Expediente, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Expediente
	for _, e := range r.rows {
		if e.DeletedAt != nil || (municipioID != "" && e.MunicipioID != municipioID) {
			continue
		}
		c := cloneExpediente(&e)
		out = append(out, &c)
	}
	sortExpedientes(out)
	return out, nil
}

func (r *ExpedienteRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok || e.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	e.DeletedAt = &now
	r.rows[id] = e
	return nil
}

func sortExpedientes(list []*entity.Expediente) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].FechaRecepcion.Equal(list[j].FechaRecepcion) {
			return list[i].FechaRecepcion.After(list[j].FechaRecepcion)
		}
		return list[i].Codigo < list[j].Codigo
	})
}

func cloneExpediente(e *entity.Expediente) entity.Expediente {
	c := *e
	c.Etiquetas = append([]string(nil), e.Etiquetas...)
	return c
}
