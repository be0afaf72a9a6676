package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// actorLoader es el contrato mínimo para cargar el usuario autenticado.
// Lo implementa *auth.AuthUseCase.
type actorLoader interface {
	Actor(ctx context.Context, userID string) (*entity.User, error)
}

// ActorMiddleware carga el usuario del token (con sus municipios) y lo deja en
// LocalActor. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 si el usuario no existe o está inactivo.
//   - 503 si falla la consulta.
//
// El rol en Locals se reemplaza por el vigente en la base: un token emitido antes
// de un cambio de rol no conserva permisos viejos.
func ActorMiddleware(loader actorLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := loader.Actor(c.UserContext(), GetUserID(c))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Code:    "UNAUTHORIZED",
					Message: "usuario inexistente o inactivo",
				})
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "ACTOR_LOOKUP_FAILED",
				Message: "no se pudo verificar el usuario, intente más tarde",
			})
		}
		c.Locals(LocalActor, actor)
		c.Locals(LocalRole, actor.Role.Slug())
		return c.Next()
	}
}

// GetActor devuelve el usuario autenticado (nil si ActorMiddleware no corrió).
func GetActor(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalActor).(*entity.User)
	return u
}
