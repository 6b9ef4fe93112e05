package testutils

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoryblocks/internal/platform/migrate"
	"github.com/phrazzld/memoryblocks/internal/platform/sqlite"
)

// NewSQLiteDB opens a private in-memory SQLite database with every
// migration applied. It is closed when the test ends.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, "file::memory:")
	require.NoError(t, err, "Failed to open sqlite database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrate.Up(ctx, db, sqlite.Migrations(), nil), "Failed to migrate sqlite database")
	return db
}
