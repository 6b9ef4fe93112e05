package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/memoryblocks/internal/platform/migrate"
)

// handleMigrations runs one migration command (up, down or status)
// against the opened storage.
func handleMigrations(ctx context.Context, s *storage, command string, logger *slog.Logger) error {
	logger.Info("Executing migrations", "command", command)

	if err := migrate.Run(ctx, s.db, s.migrations, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
