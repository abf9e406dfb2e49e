// Package main implements the entry point for the task tracker API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/task-tracker-api/internal/config"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	os.Exit(run(context.Background(), cfg, l, *migrateCmd))
}

// run wires the application and blocks until shutdown. It returns the process exit code.
func run(ctx context.Context, cfg *config.Config, l *slog.Logger, migrateCmd string) int {
	l.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database", maskDatabaseURL(cfg.Database.URL)))

	if migrateCmd != "" {
		if err := validateMigrationCommand(migrateCmd); err != nil {
			l.Error("Invalid migration command", slog.String("error", err.Error()))
			return 2
		}
	}

	db, err := setupAppDatabase(ctx, cfg.Database, l)
	if err != nil {
		l.Error("Failed to connect to database", slog.String("error", err.Error()))
		return 1
	}

	if migrateCmd != "" {
		defer closeDatabase(db, l)
		if err := runMigrations(ctx, db, migrateCmd, l); err != nil {
			l.Error("Migration failed", slog.String("error", err.Error()))
			return 1
		}
		return 0
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(ctx, db, "up", l); err != nil {
			l.Error("Automatic migration failed", slog.String("error", err.Error()))
			closeDatabase(db, l)
			return 1
		}
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		l.Error("Failed to initialize application", slog.String("error", err.Error()))
		closeDatabase(db, l)
		return 1
	}

	exitCode, err := app.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
	}
	return exitCode
}
