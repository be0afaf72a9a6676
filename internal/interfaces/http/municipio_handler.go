package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/usecase"
)

// MunicipioHandler administración de municipios (solo Administrador).
type MunicipioHandler struct {
	uc *usecase.MunicipioUseCase
}

func NewMunicipioHandler(uc *usecase.MunicipioUseCase) *MunicipioHandler {
	return &MunicipioHandler{uc: uc}
}

// Create godoc
// @Summary      Crear municipio
// @Tags         municipios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMunicipioRequest  true  "Datos del municipio"
// @Success      201   {object}  dto.MunicipioResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/municipios [post]
func (h *MunicipioHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMunicipioRequest
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
// @Summary      Listar municipios
// @Tags         municipios
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.MunicipioResponse
// @Router       /api/municipios [get]
func (h *MunicipioHandler) List(c *fiber.Ctx) error {
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
// @Summary      Obtener municipio
// @Tags         municipios
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del municipio"
// @Success      200  {object}  dto.MunicipioResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/municipios/{id} [get]
func (h *MunicipioHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar municipio
// @Tags         municipios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del municipio"
// @Param        body  body  dto.UpdateMunicipioRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.MunicipioResponse
// @Router       /api/municipios/{id} [put]
func (h *MunicipioHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMunicipioRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar municipio
// @Description  Falla con 409 si el municipio tiene expedientes.
// @Tags         municipios
// @Security     Bearer
// @Param        id   path  string  true  "ID del municipio"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/municipios/{id} [delete]
func (h *MunicipioHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
