package postgres

import (
	"embed"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/phrazzld/memoryblocks/internal/platform/migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded PostgreSQL schema migrations.
func Migrations() migrate.Source {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		// ALLOW-PANIC: embedded directory is fixed at build time
		panic(err)
	}
	return migrate.Source{Dialect: goose.DialectPostgres, FS: sub}
}
