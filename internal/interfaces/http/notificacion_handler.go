package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/notification"
)

// NotificacionHandler consulta y reintenta notificaciones enviadas.
type NotificacionHandler struct {
	dispatcher *notification.Dispatcher
}

func NewNotificacionHandler(d *notification.Dispatcher) *NotificacionHandler {
	return &NotificacionHandler{dispatcher: d}
}

// List godoc
// @Summary      Listar notificaciones
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Param        estado  query  string  false  "Pendiente | Enviado | Fallido"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.NotificacionResponse
// @Router       /api/notificaciones [get]
func (h *NotificacionHandler) List(c *fiber.Ctx) error {
	var in dto.ListNotificacionesRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	in.DefaultPage()
	if err := validateInput(&in); err != nil {
		return respondError(c, err)
	}
	out, err := h.dispatcher.List(c.UserContext(), GetActor(c), in.Estado, in.Limit, in.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Retry godoc
// @Summary      Reintentar notificación fallida
// @Description  Ejecuta un nuevo ciclo de hasta 3 intentos y devuelve la fila actualizada.
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la notificación"
// @Success      200  {object}  dto.NotificacionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/notificaciones/{id}/retry [post]
func (h *NotificacionHandler) Retry(c *fiber.Ctx) error {
	out, err := h.dispatcher.Retry(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
