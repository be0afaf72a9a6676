package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/policy"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios (solo Administrador).
type UserUseCase struct {
	repo          repository.UserRepository
	municipioRepo repository.MunicipioRepository
	audit         *audit.Writer
	now           func() time.Time
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, municipioRepo repository.MunicipioRepository, auditWriter *audit.Writer) *UserUseCase {
	return &UserUseCase{repo: repo, municipioRepo: municipioRepo, audit: auditWriter, now: time.Now}
}

// Create crea un usuario: hashea password con bcrypt y persiste. Devuelve
// ErrEmailAlreadyExists si el email ya está registrado.
func (uc *UserUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, policy.UserResource{}); err != nil {
		return nil, err
	}
	role, ok := entity.ParseRole(in.Role)
	if !ok {
		return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, in.Role)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if err := uc.checkMunicipios(ctx, in.MunicipioIDs); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		MunicipioIDs: dedupe(in.MunicipioIDs),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.audit.Created(ctx, actor.ID, entity.EntidadUsuario, user.ID, user.Email)
	return ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, actor *entity.User, id string) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionView, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(ctx context.Context, actor *entity.User, limit, offset int) ([]dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionViewAny, policy.UserResource{}); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *ToUserResponse(u))
	}
	return items, nil
}

// Update modifica nombre, email, password, rol o estado activo.
func (uc *UserUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, user); err != nil {
		return nil, err
	}
	before := user.AuditFields()
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			other, err := uc.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if in.Role != nil {
		role, ok := entity.ParseRole(*in.Role)
		if !ok {
			return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, *in.Role)
		}
		user.Role = role
	}
	if in.Active != nil {
		if !*in.Active && user.ID == actor.ID {
			return nil, fmt.Errorf("%w: no puede desactivarse a sí mismo", domain.ErrConflict)
		}
		user.Active = *in.Active
	}
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.audit.Updated(ctx, actor.ID, entity.EntidadUsuario, user.ID, before, user.AuditFields())
	return ToUserResponse(user), nil
}

// AssignMunicipios reemplaza los municipios asignados al usuario.
func (uc *UserUseCase) AssignMunicipios(ctx context.Context, actor *entity.User, id string, in dto.AssignMunicipiosRequest) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, user); err != nil {
		return nil, err
	}
	if err := uc.checkMunicipios(ctx, in.MunicipioIDs); err != nil {
		return nil, err
	}
	before := user.AuditFields()
	ids := dedupe(in.MunicipioIDs)
	if err := uc.repo.SetMunicipios(ctx, user.ID, ids); err != nil {
		return nil, err
	}
	user.MunicipioIDs = ids
	uc.audit.Updated(ctx, actor.ID, entity.EntidadUsuario, user.ID, before, user.AuditFields())
	return ToUserResponse(user), nil
}

// Delete elimina un usuario. Un administrador no puede eliminarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	user, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, user); err != nil {
		return err
	}
	if user.ID == actor.ID {
		return fmt.Errorf("%w: no puede eliminarse a sí mismo", domain.ErrConflict)
	}
	if err := uc.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	uc.audit.Deleted(ctx, actor.ID, entity.EntidadUsuario, user.ID, user.Email)
	return nil
}

func (uc *UserUseCase) load(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (uc *UserUseCase) checkMunicipios(ctx context.Context, ids []string) error {
	for _, id := range ids {
		m, err := uc.municipioRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: municipio %s no existe", domain.ErrInvalidInput, id)
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ToUserResponse mapea un usuario a su DTO (sin password).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	ids := u.MunicipioIDs
	if ids == nil {
		ids = []string{}
	}
	return &dto.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role.Slug(),
		RoleName:     u.Role.String(),
		Active:       u.Active,
		MunicipioIDs: ids,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
