// Package main implements the entry point for the memory blocks server,
// which stores block-based memories and serves the block engine over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
)

// main is the entry point for the server.
// It loads configuration, sets up logging, opens the configured store,
// applies migrations and serves the HTTP API until interrupted.
func main() {
	configFile := flag.String("config", "", "Path to a config file (default: ./config.yaml when present)")
	migrateCmd := flag.String("migrate", "", "Run a migration command (up, down, status) and exit")
	skipMigrations := flag.Bool("skip-migrations", false, "Do not apply pending migrations at startup")
	flag.Parse()

	if err := run(context.Background(), *configFile, *migrateCmd, *skipMigrations); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// run wires the application together. With migrateCmd set it only runs
// that migration command.
func run(ctx context.Context, configFile, migrateCmd string, skipMigrations bool) error {
	cfg, err := loadAppConfig(configFile)
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	storage, err := openStorage(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeStorage(storage, logger)
		return handleMigrations(ctx, storage, migrateCmd, logger)
	}
	if !skipMigrations {
		if err := handleMigrations(ctx, storage, "up", logger); err != nil {
			closeStorage(storage, logger)
			return err
		}
	}

	app, err := newApplication(cfg, logger, storage)
	if err != nil {
		closeStorage(storage, logger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

func closeStorage(s *storage, logger *slog.Logger) {
	if err := s.db.Close(); err != nil {
		logger.Error("Error closing database connection", "error", err)
	}
}
