package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/report"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/infrastructure/memory"
)

type fakePDF struct{ calls int }

func (f *fakePDF) Summary(*dto.SummaryReport) ([]byte, error)     { f.calls++; return []byte("%PDF-resumen"), nil }
func (f *fakePDF) Municipio(*dto.MunicipioReport) ([]byte, error) { f.calls++; return []byte("%PDF-municipio"), nil }
func (f *fakePDF) Financial(*dto.FinancialReport) ([]byte, error) { f.calls++; return []byte("%PDF-financiero"), nil }
func (f *fakePDF) Bitacora(*dto.BitacoraReport) ([]byte, error)   { f.calls++; return []byte("%PDF-bitacora"), nil }

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

type fixture struct {
	svc      *report.Service
	bitacora *memory.BitacoraRepository
	pdf      *fakePDF
	director *entity.User
}

func newFixture() *fixture {
	exps := memory.NewExpedienteRepository(
		&entity.Expediente{
			ID: "e1", Codigo: "SM-1", MunicipioID: "m1", Estado: entity.EstadoAprobado,
			FechaRecepcion: date("2024-01-01"), FechaAprobacion: datePtr("2024-01-11"),
			MontoContratado: decimal.NewFromInt(1000), MontoAprobado: decimal.NewNullDecimal(decimal.NewFromInt(900)),
		},
		&entity.Expediente{
			ID: "e2", Codigo: "SM-2", MunicipioID: "m1", Estado: entity.EstadoArchivado,
			FechaRecepcion: date("2024-02-01"), FechaAprobacion: datePtr("2024-02-21"),
			MontoContratado: decimal.NewFromInt(500),
		},
		&entity.Expediente{
			ID: "e3", Codigo: "LP-1", MunicipioID: "m2", Estado: entity.EstadoEnRevision,
			FechaRecepcion: date("2024-03-01"), MontoContratado: decimal.NewFromInt(250),
		},
	)
	municipios := memory.NewMunicipioRepository(
		&entity.Municipio{ID: "m1", Name: "San Marcos"},
		&entity.Municipio{ID: "m2", Name: "La Paz"},
		&entity.Municipio{ID: "m3", Name: "Zaragoza"},
	)
	f := &fixture{
		bitacora: memory.NewBitacoraRepository(),
		pdf:      &fakePDF{},
		director: &entity.User{ID: "dir-1", Role: entity.RoleDirectorGeneral, Active: true},
	}
	f.svc = report.NewService(exps, municipios, f.bitacora, f.pdf, audit.NewWriter(f.bitacora, zerolog.Nop()))
	return f
}

func TestSummary_ConteosYTotales(t *testing.T) {
	f := newFixture()
	r, err := f.svc.Summary(context.Background(), f.director)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Total)
	require.Len(t, r.PorEstado, 7, "se listan todos los estados, incluso en cero")
	counts := map[string]int{}
	for _, c := range r.PorEstado {
		counts[c.Estado] = c.Cantidad
	}
	assert.Equal(t, 1, counts["Aprobado"])
	assert.Equal(t, 1, counts["Archivado"])
	assert.Equal(t, 1, counts["En Revisión"])
	assert.Equal(t, 0, counts["Borrador"])

	require.Len(t, r.PorMunicipio, 3)
	assert.Equal(t, "La Paz", r.PorMunicipio[0].Municipio)
	sm := r.PorMunicipio[1]
	assert.Equal(t, "San Marcos", sm.Municipio)
	assert.Equal(t, 2, sm.Aprobados)
	assert.True(t, sm.MontoContratado.Equal(decimal.NewFromInt(1500)))
	assert.True(t, sm.MontoAprobado.Equal(decimal.NewFromInt(1400)))
	assert.Zero(t, r.PorMunicipio[2].Expedientes)

	rows := f.bitacora.All()
	require.Len(t, rows, 1)
	assert.Equal(t, entity.BitacoraReporte, rows[0].Tipo)
	assert.Equal(t, "dir-1", rows[0].UserID)
}

func TestFinancial_PromedioDias(t *testing.T) {
	f := newFixture()
	r, err := f.svc.Financial(context.Background(), f.director, "")
	require.NoError(t, err)

	assert.Equal(t, 2, r.Aprobados)
	assert.True(t, r.TotalContratado.Equal(decimal.NewFromInt(1750)))
	assert.True(t, r.TotalAprobado.Equal(decimal.NewFromInt(1400)))
	// (10 + 20) / 2
	assert.True(t, r.PromedioDiasAprobado.Equal(decimal.NewFromInt(15)), r.PromedioDiasAprobado.String())
	require.Len(t, r.Expedientes, 3)
}

func TestMunicipio_Desconocido(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Municipio(context.Background(), f.director, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.bitacora.All(), "un reporte fallido no se registra")
}

func TestReportes_TecnicoProhibido(t *testing.T) {
	f := newFixture()
	tecnico := &entity.User{ID: "t", Role: entity.RoleTecnico, Active: true, MunicipioIDs: []string{"m1"}}
	_, err := f.svc.Summary(context.Background(), tecnico)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.FinancialPDF(context.Background(), tecnico, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, f.pdf.calls)
}

func TestPDF_RegistraReporte(t *testing.T) {
	f := newFixture()
	out, err := f.svc.MunicipioPDF(context.Background(), f.director, "m1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-municipio", string(out))

	rows := f.bitacora.All()
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].Detalle, "pdf")
}

func TestBitacora_VentanaYConteo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.Summary(ctx, f.director)
	require.NoError(t, err)

	from := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	to := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	r, err := f.svc.Bitacora(ctx, f.director, dto.BitacoraReportRequest{From: from, To: to})
	require.NoError(t, err)
	assert.Equal(t, 1, r.PorTipo[entity.BitacoraReporte])
	require.Len(t, r.Registros, 1)

	_, err = f.svc.Bitacora(ctx, f.director, dto.BitacoraReportRequest{From: "2024-02-01", To: "2024-01-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
