// Package db carries the SQL migrations for the lookup journal.
package db

import (
	"embed"

	migrate "github.com/rubenv/sql-migrate"
)

// Dialect is the sql-migrate dialect the journal runs on.
const Dialect = "postgres"

//go:embed migrations/*.sql
var migrationFS embed.FS

// Source returns the embedded migrations. Each file carries both its up and
// down sections.
func Source() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFS,
		Root:       "migrations",
	}
}
