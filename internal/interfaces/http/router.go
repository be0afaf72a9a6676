package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Expedientes-api/internal/application/auth"
	"github.com/jhoicas/Expedientes-api/internal/application/expediente"
	"github.com/jhoicas/Expedientes-api/internal/application/notification"
	"github.com/jhoicas/Expedientes-api/internal/application/report"
	"github.com/jhoicas/Expedientes-api/internal/application/usecase"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ExpedienteUC  *expediente.UseCase
	GuiaUC        *usecase.GuiaUseCase
	MunicipioUC   *usecase.MunicipioUseCase
	UserUC        *usecase.UserUseCase
	Notifications *notification.Dispatcher
	Reports       *report.Service
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	var (
		admin    = entity.RoleAdministrador.Slug()
		director = entity.RoleDirectorGeneral.Slug()
		jefe     = entity.RoleJefeFinanciero.Slug()
	)

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas: Bearer Token + usuario activo cargado como actor
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), ActorMiddleware(deps.AuthUC))
	protected.Get("/auth/me", authHandler.Me)

	// Expedientes: el caso de uso aplica la política por rol, municipio y estado
	expedientes := protected.Group("/expedientes")
	expHandler := NewExpedienteHandler(deps.ExpedienteUC)
	expedientes.Get("/", expHandler.List)
	expedientes.Post("/", expHandler.Create)
	expedientes.Get("/:id", expHandler.GetByID)
	expedientes.Put("/:id", expHandler.Update)
	expedientes.Delete("/:id", expHandler.Delete)
	expedientes.Post("/:id/enviar-revision", expHandler.EnviarRevision)
	expedientes.Post("/:id/revision-financiera", expHandler.RevisarFinanciera)
	expedientes.Post("/:id/resolver", expHandler.Resolver)
	expedientes.Post("/:id/archivar", expHandler.Archivar)
	expedientes.Get("/:id/revisiones", expHandler.Revisiones)

	// Guías
	guias := protected.Group("/guias")
	guiaHandler := NewGuiaHandler(deps.GuiaUC)
	guias.Get("/", guiaHandler.List)
	guias.Post("/", guiaHandler.Create)
	guias.Get("/:id", guiaHandler.GetByID)
	guias.Put("/:id", guiaHandler.Update)
	guias.Patch("/:id/desactivar", guiaHandler.Deactivate)

	// Municipios (solo admin)
	municipios := protected.Group("/municipios", RequireRole(admin))
	munHandler := NewMunicipioHandler(deps.MunicipioUC)
	municipios.Get("/", munHandler.List)
	municipios.Post("/", munHandler.Create)
	municipios.Get("/:id", munHandler.GetByID)
	municipios.Put("/:id", munHandler.Update)
	municipios.Delete("/:id", munHandler.Delete)

	// Usuarios (solo admin)
	usuarios := protected.Group("/usuarios", RequireRole(admin))
	userHandler := NewUserHandler(deps.UserUC)
	usuarios.Get("/", userHandler.List)
	usuarios.Post("/", userHandler.Create)
	usuarios.Get("/:id", userHandler.GetByID)
	usuarios.Put("/:id", userHandler.Update)
	usuarios.Put("/:id/municipios", userHandler.AssignMunicipios)
	usuarios.Delete("/:id", userHandler.Delete)

	// Notificaciones (solo admin)
	notificaciones := protected.Group("/notificaciones", RequireRole(admin))
	notifHandler := NewNotificacionHandler(deps.Notifications)
	notificaciones.Get("/", notifHandler.List)
	notificaciones.Post("/:id/retry", notifHandler.Retry)

	// Reportes (roles con acceso global). Las rutas .pdf van antes que /:id.
	reportes := protected.Group("/reportes", RequireRole(admin, director, jefe))
	reportHandler := NewReportHandler(deps.Reports)
	reportes.Get("/resumen.pdf", reportHandler.SummaryPDF)
	reportes.Get("/resumen", reportHandler.Summary)
	reportes.Get("/financiero.pdf", reportHandler.FinancialPDF)
	reportes.Get("/financiero", reportHandler.Financial)
	reportes.Get("/bitacora.pdf", reportHandler.BitacoraPDF)
	reportes.Get("/bitacora", reportHandler.Bitacora)
	reportes.Get("/municipios/:id.pdf", reportHandler.MunicipioPDF)
	reportes.Get("/municipios/:id", reportHandler.Municipio)
}
