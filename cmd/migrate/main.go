// migrate aplica o revierte las migraciones embebidas (goose).
//
// Uso: go run ./cmd/migrate [up|down|status]
// Sin argumentos ejecuta "up".
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/Expedientes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Expedientes-api/pkg/config"
	"github.com/jhoicas/Expedientes-api/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	db, err := postgres.OpenSQL(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer db.Close()

	switch cmd {
	case "up":
		err = postgres.RunMigrations(ctx, db)
	case "down":
		err = postgres.RollbackMigration(ctx, db)
	case "status":
		err = postgres.MigrationStatus(ctx, db)
	default:
		fmt.Fprintf(os.Stderr, "Comando desconocido %q (up|down|status)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migraciones")
		db.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", cmd).Msg("migraciones ok")
}
