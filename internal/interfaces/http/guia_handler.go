package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/usecase"
)

// GuiaHandler publica y consulta guías. No hay borrado: se desactivan.
type GuiaHandler struct {
	uc *usecase.GuiaUseCase
}

func NewGuiaHandler(uc *usecase.GuiaUseCase) *GuiaHandler {
	return &GuiaHandler{uc: uc}
}

// Create godoc
// @Summary      Publicar guía
// @Tags         guias
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateGuiaRequest  true  "Datos de la guía"
// @Success      201   {object}  dto.GuiaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/guias [post]
func (h *GuiaHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateGuiaRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar guías
// @Tags         guias
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.GuiaResponse
// @Router       /api/guias [get]
func (h *GuiaHandler) List(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener guía
// @Tags         guias
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la guía"
// @Success      200  {object}  dto.GuiaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/guias/{id} [get]
func (h *GuiaHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar guía
// @Tags         guias
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la guía"
// @Param        body  body  dto.UpdateGuiaRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.GuiaResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/guias/{id} [put]
func (h *GuiaHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateGuiaRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar guía
// @Tags         guias
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la guía"
// @Success      200  {object}  dto.GuiaResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/guias/{id}/desactivar [patch]
func (h *GuiaHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.Deactivate(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
