package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/auth"
	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/expediente"
	"github.com/jhoicas/Expedientes-api/internal/application/notification"
	"github.com/jhoicas/Expedientes-api/internal/application/report"
	"github.com/jhoicas/Expedientes-api/internal/application/usecase"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/infrastructure/mail"
	"github.com/jhoicas/Expedientes-api/internal/infrastructure/memory"
	"github.com/jhoicas/Expedientes-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Expedientes-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Expedientes-api/pkg/jwt"
)

const sanMarcos = "mun-san-marcos"

type apiFixture struct {
	app   *fiber.App
	users map[entity.Role]*entity.User
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := map[entity.Role]*entity.User{}
	var seed []*entity.User
	for _, role := range entity.Roles() {
		u := &entity.User{
			ID: "u-" + role.Slug(), Name: role.String(), Email: role.Slug() + "@example.org",
			PasswordHash: string(hash), Role: role, Active: true,
		}
		if !role.HasGlobalAccess() {
			u.MunicipioIDs = []string{sanMarcos}
		}
		users[role] = u
		seed = append(seed, u)
	}

	userRepo := memory.NewUserRepository(seed...)
	municipioRepo := memory.NewMunicipioRepository(&entity.Municipio{ID: sanMarcos, Name: "San Marcos", Active: true})
	expRepo := memory.NewExpedienteRepository()
	revisionRepo := memory.NewRevisionRepository()
	bitacoraRepo := memory.NewBitacoraRepository()
	auditWriter := audit.NewWriter(bitacoraRepo, zerolog.Nop())

	dispatcher := notification.NewDispatcher(memory.NewNotificacionRepository(), userRepo, municipioRepo,
		mail.NewLogSender(zerolog.Nop()), auditWriter, zerolog.Nop(), notification.Config{})
	t.Cleanup(dispatcher.Close)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:        auth.NewAuthUseCase(userRepo, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}),
		ExpedienteUC:  expediente.NewUseCase(expRepo, revisionRepo, municipioRepo,
			memory.NewTxRunner(expRepo, revisionRepo), auditWriter, dispatcher),
		GuiaUC:        usecase.NewGuiaUseCase(memory.NewGuiaRepository(), auditWriter),
		MunicipioUC:   usecase.NewMunicipioUseCase(municipioRepo, auditWriter),
		UserUC:        usecase.NewUserUseCase(userRepo, municipioRepo, auditWriter),
		Notifications: dispatcher,
		Reports:       report.NewService(expRepo, municipioRepo, bitacoraRepo, pdf.NewReportGenerator("test"), auditWriter),
		JWTSecret:     testJWTSecret,
	})
	return &apiFixture{app: app, users: users}
}

func (f *apiFixture) do(t *testing.T, role entity.Role, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != 0 {
		u := f.users[role]
		tok, err := pkgjwt.Generate(testJWTSecret, u.ID, u.Role.Slug(), testIssuer, testExpMin)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) crearExpediente(t *testing.T, codigo string) dto.ExpedienteResponse {
	t.Helper()
	resp := f.do(t, entity.RoleTecnico, http.MethodPost, "/api/expedientes", map[string]any{
		"codigo":           codigo,
		"nombre_proyecto":  "Acueducto rural",
		"municipio_id":     sanMarcos,
		"tipo_solicitud":   "Infraestructura",
		"fecha_recepcion":  "2024-03-01",
		"monto_contratado": "150000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.ExpedienteResponse](t, resp)
}

func TestLogin(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, 0, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "tecnico@example.org", Password: "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.LoginResponse](t, resp)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "tecnico", out.User.Role)

	resp = f.do(t, 0, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "tecnico@example.org", Password: "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, 0, http.MethodPost, "/api/auth/login", map[string]string{"email": "no-es-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMe(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, entity.RoleMunicipal, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[dto.UserResponse](t, resp)
	assert.Equal(t, []string{sanMarcos}, me.MunicipioIDs)
}

func TestExpediente_CicloHTTP(t *testing.T) {
	f := newAPI(t)
	exp := f.crearExpediente(t, "SM-001")
	assert.Equal(t, "Borrador", exp.Estado)
	base := "/api/expedientes/" + exp.ID

	// Director no puede enviar a revisión: 403.
	resp := f.do(t, entity.RoleDirectorGeneral, http.MethodPost, base+"/enviar-revision", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, entity.RoleTecnico, http.MethodPost, base+"/enviar-revision", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "En Revisión", decode[dto.ExpedienteResponse](t, resp).Estado)

	// Segundo envío: el rol sí puede, el estado no. 422.
	resp = f.do(t, entity.RoleTecnico, http.MethodPost, base+"/enviar-revision", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.do(t, entity.RoleJefeFinanciero, http.MethodPost, base+"/revision-financiera",
		dto.RevisionFinancieraRequest{Resultado: "Completo", Comentarios: "ok"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, entity.RoleDirectorGeneral, http.MethodPost, base+"/resolver", dto.ResolverRequest{Decision: "Aprobar"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Aprobado", decode[dto.ExpedienteResponse](t, resp).Estado)

	// Aprobado rechaza edición incluso para el administrador.
	nombre := "Otro nombre"
	resp = f.do(t, entity.RoleAdministrador, http.MethodPut, base, dto.UpdateExpedienteRequest{NombreProyecto: &nombre})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.do(t, entity.RoleMunicipal, http.MethodGet, base+"/revisiones", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.RevisionFinancieraResponse](t, resp), 1)
}

func TestExpediente_Validaciones(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, entity.RoleTecnico, http.MethodPost, "/api/expedientes", map[string]any{"codigo": "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	exp := f.crearExpediente(t, "SM-002")
	resp = f.do(t, entity.RoleJefeFinanciero, http.MethodPost, "/api/expedientes/"+exp.ID+"/revision-financiera",
		map[string]string{"resultado": "Quizás"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, entity.RoleTecnico, http.MethodPost, "/api/expedientes", map[string]any{
		"codigo": "SM-002", "nombre_proyecto": "Dup", "municipio_id": sanMarcos,
		"tipo_solicitud": "Infraestructura", "fecha_recepcion": "2024-03-01",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, entity.RoleTecnico, http.MethodGet, "/api/expedientes/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExpediente_ListadoJefeSoloEnRevision(t *testing.T) {
	f := newAPI(t)
	a := f.crearExpediente(t, "SM-010")
	f.crearExpediente(t, "SM-011")
	resp := f.do(t, entity.RoleTecnico, http.MethodPost, "/api/expedientes/"+a.ID+"/enviar-revision", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, entity.RoleJefeFinanciero, http.MethodGet, "/api/expedientes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.ExpedienteListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "SM-010", list.Items[0].Codigo)

	resp = f.do(t, entity.RoleTecnico, http.MethodGet, "/api/expedientes?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRutasAdmin_RechazanOtrosRoles(t *testing.T) {
	f := newAPI(t)
	for _, path := range []string{"/api/usuarios", "/api/municipios", "/api/notificaciones"} {
		resp := f.do(t, entity.RoleTecnico, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)

		resp = f.do(t, entity.RoleAdministrador, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestNotificaciones_EnvioGeneraFilas(t *testing.T) {
	f := newAPI(t)
	exp := f.crearExpediente(t, "SM-020")
	resp := f.do(t, entity.RoleTecnico, http.MethodPost, "/api/expedientes/"+exp.ID+"/enviar-revision", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, entity.RoleAdministrador, http.MethodGet, "/api/notificaciones?estado=Pendiente", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.NotificacionResponse](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "jefe_financiero@example.org", list[0].Destinatario)

	resp = f.do(t, entity.RoleAdministrador, http.MethodGet, "/api/notificaciones?estado=Perdido", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportes(t *testing.T) {
	f := newAPI(t)
	f.crearExpediente(t, "SM-030")

	resp := f.do(t, entity.RoleTecnico, http.MethodGet, "/api/reportes/resumen", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, entity.RoleDirectorGeneral, http.MethodGet, "/api/reportes/resumen", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.SummaryReport](t, resp).Total)

	resp = f.do(t, entity.RoleJefeFinanciero, http.MethodGet, "/api/reportes/financiero.pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = f.do(t, entity.RoleAdministrador, http.MethodGet, "/api/reportes/municipios/"+sanMarcos+".pdf", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, entity.RoleAdministrador, http.MethodGet, "/api/reportes/bitacora?from=2024-05-01&to=2024-04-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUsuarioDesactivado_Retorna401(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, entity.RoleMunicipal, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	activo := false
	resp = f.do(t, entity.RoleAdministrador, http.MethodPut, "/api/usuarios/u-municipal", dto.UpdateUserRequest{Active: &activo})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// El token sigue siendo válido pero el actor ya no está activo.
	resp = f.do(t, entity.RoleMunicipal, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
