package cms

import (
	"embed"
)

// Postgres migrations live at the root of data/sql/migrations, sqlite
// variants under data/sql/migrations/sqlite.
//
//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
