package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/auth"
	"github.com/jhoicas/Expedientes-api/internal/application/expediente"
	"github.com/jhoicas/Expedientes-api/internal/application/notification"
	"github.com/jhoicas/Expedientes-api/internal/application/report"
	"github.com/jhoicas/Expedientes-api/internal/application/usecase"
	"github.com/jhoicas/Expedientes-api/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/Expedientes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Expedientes-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Expedientes-api/internal/interfaces/http"
	"github.com/jhoicas/Expedientes-api/pkg/config"
	"github.com/jhoicas/Expedientes-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	sqlDB, err := postgres.OpenSQL(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL (migraciones)")
	}
	if err := postgres.RunMigrations(ctx, sqlDB); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
	_ = sqlDB.Close()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)
	userRepo := postgres.NewUserRepository(pool, txRunner)
	municipioRepo := postgres.NewMunicipioRepository(pool)
	expedienteRepo := postgres.NewExpedienteRepository(pool)
	revisionRepo := postgres.NewRevisionRepository(pool)
	guiaRepo := postgres.NewGuiaRepository(pool)
	notificacionRepo := postgres.NewNotificacionRepository(pool)
	bitacoraRepo := postgres.NewBitacoraRepository(pool)

	auditWriter := audit.NewWriter(bitacoraRepo, log.Component("audit"))

	// Sin SMTP configurado los correos solo quedan en el log.
	var sender notification.Sender
	if cfg.SMTP.Enabled() {
		sender = mail.NewSMTPSender(cfg.SMTP)
	} else {
		log.Warn().Msg("SMTP_HOST vacío: las notificaciones se registran en el log")
		sender = mail.NewLogSender(log.Component("mail"))
	}

	dispatcher := notification.NewDispatcher(
		notificacionRepo, userRepo, municipioRepo, sender, auditWriter,
		log.Component("notification"),
		notification.Config{
			Workers:     cfg.Notify.Workers,
			QueueSize:   cfg.Notify.QueueSize,
			MaxAttempts: cfg.Notify.MaxAttempts,
			Backoff:     cfg.Notify.Backoff,
			JobTimeout:  cfg.Notify.JobTimeout,
		},
	)
	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	workersDone := make(chan error, 1)
	go func() { workersDone <- dispatcher.Run(workersCtx) }()
	if _, err := dispatcher.Recover(ctx); err != nil {
		log.Error().Err(err).Msg("recuperar notificaciones pendientes")
	}

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	expedienteUC := expediente.NewUseCase(expedienteRepo, revisionRepo, municipioRepo, txRunner, auditWriter, dispatcher)
	guiaUC := usecase.NewGuiaUseCase(guiaRepo, auditWriter)
	municipioUC := usecase.NewMunicipioUseCase(municipioRepo, auditWriter)
	userUC := usecase.NewUserUseCase(userRepo, municipioRepo, auditWriter)
	reportSvc := report.NewService(expedienteRepo, municipioRepo, bitacoraRepo,
		infrapdf.NewReportGenerator(cfg.App.Name), auditWriter)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())

	// Swagger UI en local: http://localhost:<port>/docs (requiere `swag init`).
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Expedientes API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ExpedienteUC:  expedienteUC,
		GuiaUC:        guiaUC,
		MunicipioUC:   municipioUC,
		UserUC:        userUC,
		Notifications: dispatcher,
		Reports:       reportSvc,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Sin nuevas peticiones: se cierra la cola y los workers la vacían.
	dispatcher.Close()
	select {
	case err := <-workersDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("workers de notificación")
		}
	case <-shutdownCtx.Done():
		log.Warn().Msg("tiempo de apagado agotado; se cancelan las entregas pendientes")
		stopWorkers()
		<-workersDone
	}

	log.Info().Msg("aplicación detenida")
}
