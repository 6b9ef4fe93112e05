package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/memoryblocks/internal/config"
	"github.com/phrazzld/memoryblocks/internal/events"
	"github.com/phrazzld/memoryblocks/internal/platform/metrics"
	"github.com/phrazzld/memoryblocks/internal/service"
	"github.com/phrazzld/memoryblocks/internal/service/auth"
	"github.com/phrazzld/memoryblocks/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	// Stores
	memoryStore store.MemoryStore

	// Service interfaces
	jwtService    auth.JWTService
	memoryService service.MemoryService

	// Event system
	eventEmitter *events.InMemoryEventEmitter
}

// newApplication creates a new application instance with all dependencies initialized.
// The storage must already be open; the application closes it on shutdown.
func newApplication(cfg *config.Config, logger *slog.Logger, s *storage) (*application, error) {
	app := &application{
		config:      cfg,
		logger:      logger,
		db:          s.db,
		metrics:     metrics.NewMetrics(),
		memoryStore: s.memories,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Memory lifecycle events are logged and counted
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLogHandler(logger))
	app.eventEmitter.RegisterHandler(events.NewMetricsHandler(app.metrics))

	memoryRepoAdapter := service.NewMemoryRepositoryAdapter(app.memoryStore, app.db)
	app.memoryService, err = service.NewMemoryService(memoryRepoAdapter, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
