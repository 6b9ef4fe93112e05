package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/phrazzld/memoryblocks/internal/config"
	"github.com/phrazzld/memoryblocks/internal/platform/migrate"
	"github.com/phrazzld/memoryblocks/internal/platform/postgres"
	"github.com/phrazzld/memoryblocks/internal/platform/sqlite"
	"github.com/phrazzld/memoryblocks/internal/store"
)

// storage is the opened database with the matching store and migrations.
type storage struct {
	db         *sql.DB
	memories   store.MemoryStore
	migrations migrate.Source
}

// openStorage connects to the configured database driver.
func openStorage(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*storage, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := openPostgres(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection established", "driver", cfg.Driver)
		return &storage{
			db:         db,
			memories:   postgres.NewPostgresMemoryStore(db, logger),
			migrations: postgres.Migrations(),
		}, nil

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		logger.Info("Database connection established", "driver", cfg.Driver)
		return &storage{
			db:         db,
			memories:   sqlite.NewMemoryStore(db, logger),
			migrations: sqlite.Migrations(),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// openPostgres establishes a connection to the database and configures connection pools.
func openPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
