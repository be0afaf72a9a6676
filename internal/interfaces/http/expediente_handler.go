package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/expediente"
)

// ExpedienteHandler expone el ciclo de vida de los expedientes.
type ExpedienteHandler struct {
	uc *expediente.UseCase
}

func NewExpedienteHandler(uc *expediente.UseCase) *ExpedienteHandler {
	return &ExpedienteHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar expediente
// @Description  Crea el expediente en estado Borrador. Administrador o Técnico asignado al municipio.
// @Tags         expedientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateExpedienteRequest  true  "Datos del expediente"
// @Success      201   {object}  dto.ExpedienteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/expedientes [post]
func (h *ExpedienteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExpedienteRequest
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
// @Summary      Listar expedientes visibles
// @Tags         expedientes
// @Security     Bearer
// @Produce      json
// @Param        estado  query  string  false  "Filtro por estado"
// @Param        q       query  string  false  "Búsqueda por código o proyecto"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.ExpedienteListResponse
// @Router       /api/expedientes [get]
func (h *ExpedienteHandler) List(c *fiber.Ctx) error {
	var in dto.ListExpedientesRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	in.DefaultPage()
	if err := validateInput(&in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener expediente
// @Tags         expedientes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del expediente"
// @Success      200  {object}  dto.ExpedienteResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/expedientes/{id} [get]
func (h *ExpedienteHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar expediente
// @Tags         expedientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del expediente"
// @Param        body  body  dto.UpdateExpedienteRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.ExpedienteResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/expedientes/{id} [put]
func (h *ExpedienteHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateExpedienteRequest
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
// @Summary      Eliminar expediente (lógico)
// @Tags         expedientes
// @Security     Bearer
// @Param        id   path  string  true  "ID del expediente"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/expedientes/{id} [delete]
func (h *ExpedienteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// EnviarRevision godoc
// @Summary      Enviar a revisión financiera
// @Description  Borrador → En Revisión. Solo el Técnico asignado.
// @Tags         expedientes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del expediente"
// @Success      200  {object}  dto.ExpedienteResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/expedientes/{id}/enviar-revision [post]
func (h *ExpedienteHandler) EnviarRevision(c *fiber.Ctx) error {
	out, err := h.uc.EnviarRevision(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RevisarFinanciera godoc
// @Summary      Registrar revisión financiera
// @Description  En Revisión → Completo o Incompleto. Solo Jefe Administrativo-Financiero.
// @Tags         expedientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del expediente"
// @Param        body  body  dto.RevisionFinancieraRequest  true  "Resultado de la revisión"
// @Success      200   {object}  dto.RevisionFinancieraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/expedientes/{id}/revision-financiera [post]
func (h *ExpedienteHandler) RevisarFinanciera(c *fiber.Ctx) error {
	var in dto.RevisionFinancieraRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.RevisarFinanciera(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Resolver godoc
// @Summary      Aprobar o rechazar
// @Description  Completo → Aprobado o Rechazado. Solo Director General.
// @Tags         expedientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del expediente"
// @Param        body  body  dto.ResolverRequest  true  "Decisión"
// @Success      200   {object}  dto.ExpedienteResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/expedientes/{id}/resolver [post]
func (h *ExpedienteHandler) Resolver(c *fiber.Ctx) error {
	var in dto.ResolverRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Resolver(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Archivar godoc
// @Summary      Archivar expediente
// @Tags         expedientes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del expediente"
// @Success      200  {object}  dto.ExpedienteResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/expedientes/{id}/archivar [post]
func (h *ExpedienteHandler) Archivar(c *fiber.Ctx) error {
	out, err := h.uc.Archivar(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Revisiones godoc
// @Summary      Historial de revisiones financieras
// @Tags         expedientes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del expediente"
// @Success      200  {array}   dto.RevisionFinancieraResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/expedientes/{id}/revisiones [get]
func (h *ExpedienteHandler) Revisiones(c *fiber.Ctx) error {
	out, err := h.uc.ListRevisiones(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
