package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/usecase"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
	"github.com/jhoicas/Expedientes-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login y carga del actor.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role.Slug(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *usecase.ToUserResponse(user),
	}, nil
}

// Actor carga el usuario autenticado con sus municipios. Un usuario inexistente o
// inactivo se trata como no autenticado.
func (uc *AuthUseCase) Actor(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cargar actor: %w", err)
	}
	if user == nil || !user.Active {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// Me devuelve el perfil del actor.
func (uc *AuthUseCase) Me(actor *entity.User) *dto.UserResponse {
	return usecase.ToUserResponse(actor)
}
