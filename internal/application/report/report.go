// Package report agrega expedientes y bitácora en reportes JSON y PDF.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/policy"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

// Nombres de reporte; se usan como entidad_id en la bitácora.
const (
	NameResumen    = "resumen"
	NameMunicipio  = "municipio"
	NameFinanciero = "financiero"
	NameBitacora   = "bitacora"
)

const defaultBitacoraLimit = 1000

// PDFGenerator convierte un reporte en un documento PDF.
type PDFGenerator interface {
	Summary(r *dto.SummaryReport) ([]byte, error)
	Municipio(r *dto.MunicipioReport) ([]byte, error)
	Financial(r *dto.FinancialReport) ([]byte, error)
	Bitacora(r *dto.BitacoraReport) ([]byte, error)
}

// Service genera reportes. Cada generación deja un registro Reporte en la bitácora.
type Service struct {
	expRepo       repository.ExpedienteRepository
	municipioRepo repository.MunicipioRepository
	bitacoraRepo  repository.BitacoraRepository
	pdf           PDFGenerator
	audit         *audit.Writer
	now           func() time.Time
}

func NewService(
	expRepo repository.ExpedienteRepository,
	municipioRepo repository.MunicipioRepository,
	bitacoraRepo repository.BitacoraRepository,
	pdf PDFGenerator,
	auditWriter *audit.Writer,
) *Service {
	return &Service{
		expRepo:       expRepo,
		municipioRepo: municipioRepo,
		bitacoraRepo:  bitacoraRepo,
		pdf:           pdf,
		audit:         auditWriter,
		now:           time.Now,
	}
}

// Summary cuenta expedientes por estado y totaliza por municipio.
func (s *Service) Summary(ctx context.Context, actor *entity.User) (*dto.SummaryReport, error) {
	if err := policy.Authorize(actor, policy.ActionGenerate, policy.ReportResource{}); err != nil {
		return nil, err
	}
	r, err := s.buildSummary(ctx)
	if err != nil {
		return nil, err
	}
	s.recorded(ctx, actor, NameResumen, "json")
	return r, nil
}

// SummaryPDF igual que Summary, en PDF.
func (s *Service) SummaryPDF(ctx context.Context, actor *entity.User) ([]byte, error) {
	if err := policy.Authorize(actor, policy.ActionGenerate, policy.ReportResource{}); err != nil {
		return nil, err
	}
	r, err := s.buildSummary(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Summary(r)
	if err != nil {
		return nil, fmt.Errorf("pdf resumen: %w", err)
	}
	s.recorded(ctx, actor, NameResumen, "pdf")
	return out, nil
}

// Municipio detalla los expedientes de un municipio.
func (s *Service) Municipio(ctx context.Context, actor *entity.User, municipioID string) (*dto.MunicipioReport, error) {
	if err := policy.Authorize(actor, policy.ActionGenerate, policy.ReportResource{}); err != nil {
		return nil, err
	}
	r, err := s.buildMunicipio(ctx, municipioID)
	if err != nil {
		return nil, err
	}
	s.recorded(ctx, actor, NameMunicipio, "json")
	return r, nil
}

func (s *Service) MunicipioPDF(ctx context.Context, actor *entity.User, municipioID string) ([]byte, error) {
	if err := policy.Authorize(actor, policy.ActionGenerate, policy.ReportResource{}); err != nil {
		return nil, err
	}
	r, err := s.buildMunicipio(ctx, municipioID)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Municipio(r)
	if err != nil {
		return nil, fmt.Errorf("pdf municipio: %w", err)
	}
	s.recorded(ctx, actor, NameMunicipio, "pdf")
	return out, nil
}

// Financial suma montos y calcula los días de recepción a aprobación.
// municipioID vacío incluye todos los municipios.
func (s *Service) Financial(ctx context.Context, actor *entity.User, municipioID string) (*dto.FinancialReport, error) {
	if err := policy.Authorize(actor, policy.ActionGenerate, policy.ReportResource{}); err != nil {
		return nil, err
	}
	r, err := s.buildFinancial(ctx, municipioID)
	if err != nil {
		return nil, err
	}
	s.recorded(ctx, actor, NameFinanciero, "json")
	return r, nil
}

func (s *Service) FinancialPDF(ctx context.Context, actor *entity.User, municipioID string) ([]byte, error) {
	if err := policy.Authorize(actor, policy.ActionGenerate, policy.ReportResource{}); err != nil {
		return nil, err
	}
	r, err := s.buildFinancial(ctx, municipioID)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Financial(r)
	if err != nil {
		return nil, fmt.Errorf("pdf financiero: %w", err)
	}
	s.recorded(ctx, actor, NameFinanciero, "pdf")
	return out, nil
}

// Bitacora lista una ventana de la bitácora con conteos por tipo.
func (s *Service) Bitacora(ctx context.Context, actor *entity.User, in dto.BitacoraReportRequest) (*dto.BitacoraReport, error) {
	if err := policy.Authorize(actor, policy.ActionGenerate, policy.ReportResource{}); err != nil {
		return nil, err
	}
	r, err := s.buildBitacora(ctx, in)
	if err != nil {
		return nil, err
	}
	s.recorded(ctx, actor, NameBitacora, "json")
	return r, nil
}

func (s *Service) BitacoraPDF(ctx context.Context, actor *entity.User, in dto.BitacoraReportRequest) ([]byte, error) {
	if err := policy.Authorize(actor, policy.ActionGenerate, policy.ReportResource{}); err != nil {
		return nil, err
	}
	r, err := s.buildBitacora(ctx, in)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Bitacora(r)
	if err != nil {
		return nil, fmt.Errorf("pdf bitácora: %w", err)
	}
	s.recorded(ctx, actor, NameBitacora, "pdf")
	return out, nil
}

func (s *Service) recorded(ctx context.Context, actor *entity.User, name, format string) {
	s.audit.Record(ctx, actor.ID, entity.EntidadReporte, name, entity.BitacoraReporte,
		fmt.Sprintf("Reporte %s generado (%s)", name, format))
}

func (s *Service) buildSummary(ctx context.Context) (*dto.SummaryReport, error) {
	exps, err := s.expRepo.ListForReport(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("expedientes para reporte: %w", err)
	}
	municipios, err := s.municipioRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("municipios para reporte: %w", err)
	}
	return &dto.SummaryReport{
		GeneratedAt:  s.now(),
		Total:        len(exps),
		PorEstado:    countByEstado(exps),
		PorMunicipio: totalsByMunicipio(exps, municipios),
	}, nil
}

func (s *Service) buildMunicipio(ctx context.Context, municipioID string) (*dto.MunicipioReport, error) {
	m, err := s.municipioRepo.GetByID(ctx, municipioID)
	if err != nil {
		return nil, fmt.Errorf("obtener municipio: %w", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	exps, err := s.expRepo.ListForReport(ctx, municipioID)
	if err != nil {
		return nil, fmt.Errorf("expedientes del municipio: %w", err)
	}
	totals := totalsByMunicipio(exps, []*entity.Municipio{m})
	names := map[string]string{m.ID: m.Name}
	return &dto.MunicipioReport{
		GeneratedAt: s.now(),
		Municipio:   totals[0],
		PorEstado:   countByEstado(exps),
		Expedientes: rows(exps, names),
	}, nil
}

func (s *Service) buildFinancial(ctx context.Context, municipioID string) (*dto.FinancialReport, error) {
	exps, err := s.expRepo.ListForReport(ctx, municipioID)
	if err != nil {
		return nil, fmt.Errorf("expedientes para reporte: %w", err)
	}
	municipios, err := s.municipioRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("municipios para reporte: %w", err)
	}
	names := make(map[string]string, len(municipios))
	for _, m := range municipios {
		names[m.ID] = m.Name
	}

	r := &dto.FinancialReport{
		GeneratedAt:          s.now(),
		TotalContratado:      decimal.Zero,
		TotalAprobado:        decimal.Zero,
		PromedioDiasAprobado: decimal.Zero,
		Expedientes:          rows(exps, names),
	}
	totalDias := 0
	for _, e := range exps {
		r.TotalContratado = r.TotalContratado.Add(e.MontoContratado)
		if dias, ok := e.DiasHastaAprobacion(); ok {
			r.Aprobados++
			totalDias += dias
			r.TotalAprobado = r.TotalAprobado.Add(montoAprobado(e))
		}
	}
	if r.Aprobados > 0 {
		r.PromedioDiasAprobado = decimal.NewFromInt(int64(totalDias)).
			Div(decimal.NewFromInt(int64(r.Aprobados))).Round(1)
	}
	return r, nil
}

func (s *Service) buildBitacora(ctx context.Context, in dto.BitacoraReportRequest) (*dto.BitacoraReport, error) {
	f := repository.BitacoraFilter{Entidad: in.Entidad, Limit: in.Limit}
	if f.Limit <= 0 {
		f.Limit = defaultBitacoraLimit
	}
	r := &dto.BitacoraReport{GeneratedAt: s.now(), PorTipo: map[string]int{}}
	if in.From != "" {
		from, err := time.Parse("2006-01-02", in.From)
		if err != nil {
			return nil, fmt.Errorf("%w: from inválido", domain.ErrInvalidInput)
		}
		f.From = from
		r.From = &from
	}
	if in.To != "" {
		to, err := time.Parse("2006-01-02", in.To)
		if err != nil {
			return nil, fmt.Errorf("%w: to inválido", domain.ErrInvalidInput)
		}
		// El día final es inclusivo.
		f.To = to.Add(24*time.Hour - time.Nanosecond)
		r.To = &to
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return nil, fmt.Errorf("%w: el rango de fechas es inválido", domain.ErrInvalidInput)
	}
	list, err := s.bitacoraRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar bitácora: %w", err)
	}
	r.Registros = make([]dto.BitacoraResponse, 0, len(list))
	for _, b := range list {
		r.PorTipo[b.Tipo]++
		r.Registros = append(r.Registros, ToBitacoraResponse(b))
	}
	return r, nil
}

// ToBitacoraResponse mapea un registro de bitácora a su DTO.
func ToBitacoraResponse(b *entity.Bitacora) dto.BitacoraResponse {
	return dto.BitacoraResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		Entidad:   b.Entidad,
		EntidadID: b.EntidadID,
		Tipo:      b.Tipo,
		Detalle:   b.Detalle,
		CreatedAt: b.CreatedAt,
	}
}

// countByEstado devuelve los 7 estados en orden, incluidos los que están en cero.
func countByEstado(exps []*entity.Expediente) []dto.EstadoCount {
	counts := make(map[entity.Estado]int)
	for _, e := range exps {
		counts[e.Estado]++
	}
	out := make([]dto.EstadoCount, 0, len(entity.Estados()))
	for _, st := range entity.Estados() {
		out = append(out, dto.EstadoCount{Estado: st.String(), Cantidad: counts[st]})
	}
	return out
}

// totalsByMunicipio agrega por municipio. Incluye los municipios sin expedientes
// y los expedientes cuyo municipio no está en la lista.
func totalsByMunicipio(exps []*entity.Expediente, municipios []*entity.Municipio) []dto.MunicipioTotals {
	byID := make(map[string]*dto.MunicipioTotals, len(municipios))
	for _, m := range municipios {
		byID[m.ID] = &dto.MunicipioTotals{
			MunicipioID:     m.ID,
			Municipio:       m.Name,
			MontoContratado: decimal.Zero,
			MontoAprobado:   decimal.Zero,
		}
	}
	for _, e := range exps {
		t, ok := byID[e.MunicipioID]
		if !ok {
			t = &dto.MunicipioTotals{
				MunicipioID:     e.MunicipioID,
				Municipio:       e.MunicipioID,
				MontoContratado: decimal.Zero,
				MontoAprobado:   decimal.Zero,
			}
			byID[e.MunicipioID] = t
		}
		t.Expedientes++
		t.MontoContratado = t.MontoContratado.Add(e.MontoContratado)
		if e.FechaAprobacion != nil {
			t.Aprobados++
			t.MontoAprobado = t.MontoAprobado.Add(montoAprobado(e))
		}
	}
	out := make([]dto.MunicipioTotals, 0, len(byID))
	for _, t := range byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Municipio < out[j].Municipio })
	return out
}

// montoAprobado usa el monto fijado en la revisión financiera; si no lo hay, el contratado.
func montoAprobado(e *entity.Expediente) decimal.Decimal {
	if e.MontoAprobado.Valid {
		return e.MontoAprobado.Decimal
	}
	return e.MontoContratado
}

func rows(exps []*entity.Expediente, names map[string]string) []dto.ExpedienteRow {
	out := make([]dto.ExpedienteRow, 0, len(exps))
	for _, e := range exps {
		row := dto.ExpedienteRow{
			Codigo:          e.Codigo,
			NombreProyecto:  e.NombreProyecto,
			Municipio:       names[e.MunicipioID],
			Estado:          e.Estado.String(),
			FechaRecepcion:  e.FechaRecepcion,
			FechaAprobacion: e.FechaAprobacion,
			MontoContratado: e.MontoContratado,
			Adjudicatario:   e.Adjudicatario,
		}
		if row.Municipio == "" {
			row.Municipio = e.MunicipioID
		}
		if e.MontoAprobado.Valid {
			m := e.MontoAprobado.Decimal
			row.MontoAprobado = &m
		}
		if dias, ok := e.DiasHastaAprobacion(); ok {
			row.DiasAprobacion = &dias
		}
		out = append(out, row)
	}
	return out
}
