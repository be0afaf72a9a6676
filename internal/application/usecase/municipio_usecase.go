package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/policy"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

// MunicipioUseCase administra municipios (solo Administrador).
type MunicipioUseCase struct {
	repo  repository.MunicipioRepository
	audit *audit.Writer
	now   func() time.Time
}

// NewMunicipioUseCase construye el caso de uso con el puerto de persistencia.
func NewMunicipioUseCase(repo repository.MunicipioRepository, auditWriter *audit.Writer) *MunicipioUseCase {
	return &MunicipioUseCase{repo: repo, audit: auditWriter, now: time.Now}
}

// Create crea un municipio activo.
func (uc *MunicipioUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateMunicipioRequest) (*dto.MunicipioResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, policy.MunicipioResource{}); err != nil {
		return nil, err
	}
	now := uc.now()
	m := &entity.Municipio{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Department:   strings.TrimSpace(in.Department),
		ContactName:  in.ContactName,
		ContactEmail: strings.ToLower(strings.TrimSpace(in.ContactEmail)),
		ContactPhone: in.ContactPhone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	uc.audit.Created(ctx, actor.ID, entity.EntidadMunicipio, m.ID, m.Name)
	return toMunicipioResponse(m), nil
}

// GetByID obtiene un municipio por ID.
func (uc *MunicipioUseCase) GetByID(ctx context.Context, actor *entity.User, id string) (*dto.MunicipioResponse, error) {
	m, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionView, m); err != nil {
		return nil, err
	}
	return toMunicipioResponse(m), nil
}

// List lista municipios con paginación.
func (uc *MunicipioUseCase) List(ctx context.Context, actor *entity.User, limit, offset int) ([]dto.MunicipioResponse, error) {
	if err := policy.Authorize(actor, policy.ActionViewAny, policy.MunicipioResource{}); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MunicipioResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMunicipioResponse(m))
	}
	return items, nil
}

// Update modifica datos de contacto, nombre o estado activo.
func (uc *MunicipioUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateMunicipioRequest) (*dto.MunicipioResponse, error) {
	m, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, m); err != nil {
		return nil, err
	}
	before := m.AuditFields()
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Department != nil {
		m.Department = strings.TrimSpace(*in.Department)
	}
	if in.ContactName != nil {
		m.ContactName = *in.ContactName
	}
	if in.ContactEmail != nil {
		m.ContactEmail = strings.ToLower(strings.TrimSpace(*in.ContactEmail))
	}
	if in.ContactPhone != nil {
		m.ContactPhone = *in.ContactPhone
	}
	if in.Active != nil {
		m.Active = *in.Active
	}
	m.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	uc.audit.Updated(ctx, actor.ID, entity.EntidadMunicipio, m.ID, before, m.AuditFields())
	return toMunicipioResponse(m), nil
}

// Delete elimina un municipio. Devuelve domain.ErrConflict si aún tiene expedientes.
func (uc *MunicipioUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	m, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, m); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, m.ID); err != nil {
		return err
	}
	uc.audit.Deleted(ctx, actor.ID, entity.EntidadMunicipio, m.ID, m.Name)
	return nil
}

func (uc *MunicipioUseCase) load(ctx context.Context, id string) (*entity.Municipio, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func toMunicipioResponse(m *entity.Municipio) *dto.MunicipioResponse {
	return &dto.MunicipioResponse{
		ID:           m.ID,
		Name:         m.Name,
		Department:   m.Department,
		ContactName:  m.ContactName,
		ContactEmail: m.ContactEmail,
		ContactPhone: m.ContactPhone,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
