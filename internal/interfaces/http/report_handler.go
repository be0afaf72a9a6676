package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/report"
)

// ReportHandler expone los reportes en JSON y PDF.
type ReportHandler struct {
	svc *report.Service
}

func NewReportHandler(svc *report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func sendPDF(c *fiber.Ctx, name string, b []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`.pdf"`)
	return c.Send(b)
}

// Summary godoc
// @Summary      Resumen por estado y municipio
// @Tags         reportes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SummaryReport
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reportes/resumen [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.svc.Summary(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SummaryPDF godoc
// @Summary      Resumen (PDF)
// @Tags         reportes
// @Security     Bearer
// @Produce      application/pdf
// @Success      200
// @Router       /api/reportes/resumen.pdf [get]
func (h *ReportHandler) SummaryPDF(c *fiber.Ctx) error {
	b, err := h.svc.SummaryPDF(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, report.NameResumen, b)
}

// Municipio godoc
// @Summary      Detalle de un municipio
// @Tags         reportes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del municipio"
// @Success      200  {object}  dto.MunicipioReport
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reportes/municipios/{id} [get]
func (h *ReportHandler) Municipio(c *fiber.Ctx) error {
	out, err := h.svc.Municipio(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MunicipioPDF godoc
// @Summary      Detalle de un municipio (PDF)
// @Tags         reportes
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del municipio"
// @Success      200
// @Router       /api/reportes/municipios/{id}.pdf [get]
func (h *ReportHandler) MunicipioPDF(c *fiber.Ctx) error {
	b, err := h.svc.MunicipioPDF(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, report.NameMunicipio, b)
}

// Financial godoc
// @Summary      Reporte financiero
// @Tags         reportes
// @Security     Bearer
// @Produce      json
// @Param        municipio_id  query  string  false  "Restringe a un municipio"
// @Success      200  {object}  dto.FinancialReport
// @Router       /api/reportes/financiero [get]
func (h *ReportHandler) Financial(c *fiber.Ctx) error {
	out, err := h.svc.Financial(c.UserContext(), GetActor(c), c.Query("municipio_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// FinancialPDF godoc
// @Summary      Reporte financiero (PDF)
// @Tags         reportes
// @Security     Bearer
// @Produce      application/pdf
// @Param        municipio_id  query  string  false  "Restringe a un municipio"
// @Success      200
// @Router       /api/reportes/financiero.pdf [get]
func (h *ReportHandler) FinancialPDF(c *fiber.Ctx) error {
	b, err := h.svc.FinancialPDF(c.UserContext(), GetActor(c), c.Query("municipio_id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, report.NameFinanciero, b)
}

// Bitacora godoc
// @Summary      Bitácora de auditoría
// @Tags         reportes
// @Security     Bearer
// @Produce      json
// @Param        from     query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to       query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        entidad  query  string  false  "Expediente | Usuario | Guía | Municipio | Notificación | Reporte"
// @Param        limit    query  int     false  "Máximo de registros"  default(1000)
// @Success      200  {object}  dto.BitacoraReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reportes/bitacora [get]
func (h *ReportHandler) Bitacora(c *fiber.Ctx) error {
	var in dto.BitacoraReportRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.Bitacora(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// BitacoraPDF godoc
// @Summary      Bitácora de auditoría (PDF)
// @Tags         reportes
// @Security     Bearer
// @Produce      application/pdf
// @Success      200
// @Router       /api/reportes/bitacora.pdf [get]
func (h *ReportHandler) BitacoraPDF(c *fiber.Ctx) error {
	var in dto.BitacoraReportRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	b, err := h.svc.BitacoraPDF(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, report.NameBitacora, b)
}
