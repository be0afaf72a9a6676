package usecase

import (
	"context"
	"fmt"
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

// GuiaUseCase publica y versiona guías. Las guías no se eliminan; se desactivan.
type GuiaUseCase struct {
	repo  repository.GuiaRepository
	audit *audit.Writer
	now   func() time.Time
}

// NewGuiaUseCase construye el caso de uso.
func NewGuiaUseCase(repo repository.GuiaRepository, auditWriter *audit.Writer) *GuiaUseCase {
	return &GuiaUseCase{repo: repo, audit: auditWriter, now: time.Now}
}

// Create publica una guía. Sin fecha de publicación se usa la fecha actual.
func (uc *GuiaUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateGuiaRequest) (*dto.GuiaResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, policy.GuiaResource{}); err != nil {
		return nil, err
	}
	now := uc.now()
	publicado := now
	if in.FechaPublicado != "" {
		t, err := time.Parse("2006-01-02", in.FechaPublicado)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha_publicado debe tener formato AAAA-MM-DD", domain.ErrInvalidInput)
		}
		publicado = t
	}
	g := &entity.Guia{
		ID:             uuid.New().String(),
		Titulo:         strings.TrimSpace(in.Titulo),
		Descripcion:    in.Descripcion,
		Archivo:        in.Archivo,
		Version:        in.Version,
		Categoria:      in.Categoria,
		FechaPublicado: publicado,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	uc.audit.Created(ctx, actor.ID, entity.EntidadGuia, g.ID, g.Titulo+" v"+g.Version)
	return toGuiaResponse(g), nil
}

// GetByID obtiene una guía. Los no administradores no ven guías inactivas.
func (uc *GuiaUseCase) GetByID(ctx context.Context, actor *entity.User, id string) (*dto.GuiaResponse, error) {
	g, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionView, g); err != nil {
		return nil, err
	}
	if !g.Active && actor.Role != entity.RoleAdministrador {
		return nil, domain.ErrNotFound
	}
	return toGuiaResponse(g), nil
}

// List lista guías; solo el Administrador ve las inactivas.
func (uc *GuiaUseCase) List(ctx context.Context, actor *entity.User, limit, offset int) ([]dto.GuiaResponse, error) {
	if err := policy.Authorize(actor, policy.ActionViewAny, policy.GuiaResource{}); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, actor.Role != entity.RoleAdministrador, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.GuiaResponse, 0, len(list))
	for _, g := range list {
		items = append(items, *toGuiaResponse(g))
	}
	return items, nil
}

// Update modifica una guía.
func (uc *GuiaUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateGuiaRequest) (*dto.GuiaResponse, error) {
	g, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, g); err != nil {
		return nil, err
	}
	before := g.AuditFields()
	if in.Titulo != nil {
		g.Titulo = strings.TrimSpace(*in.Titulo)
	}
	if in.Descripcion != nil {
		g.Descripcion = *in.Descripcion
	}
	if in.Archivo != nil {
		g.Archivo = *in.Archivo
	}
	if in.Version != nil {
		g.Version = *in.Version
	}
	if in.Categoria != nil {
		g.Categoria = *in.Categoria
	}
	if in.FechaPublicado != nil {
		t, err := time.Parse("2006-01-02", *in.FechaPublicado)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha_publicado debe tener formato AAAA-MM-DD", domain.ErrInvalidInput)
		}
		g.FechaPublicado = t
	}
	return uc.save(ctx, actor, g, before)
}

// Deactivate desactiva una guía (reemplaza a la eliminación).
func (uc *GuiaUseCase) Deactivate(ctx context.Context, actor *entity.User, id string) (*dto.GuiaResponse, error) {
	g, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, g); err != nil {
		return nil, err
	}
	before := g.AuditFields()
	g.Active = false
	return uc.save(ctx, actor, g, before)
}

func (uc *GuiaUseCase) save(ctx context.Context, actor *entity.User, g *entity.Guia, before map[string]string) (*dto.GuiaResponse, error) {
	g.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	uc.audit.Updated(ctx, actor.ID, entity.EntidadGuia, g.ID, before, g.AuditFields())
	return toGuiaResponse(g), nil
}

func (uc *GuiaUseCase) load(ctx context.Context, id string) (*entity.Guia, error) {
	g, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func toGuiaResponse(g *entity.Guia) *dto.GuiaResponse {
	return &dto.GuiaResponse{
		ID:             g.ID,
		Titulo:         g.Titulo,
		Descripcion:    g.Descripcion,
		Archivo:        g.Archivo,
		Version:        g.Version,
		Categoria:      g.Categoria,
		FechaPublicado: g.FechaPublicado,
		Active:         g.Active,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}
