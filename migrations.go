package til

import (
	"embed"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded note-index migrations so hosts can
// run them through their own migration tooling instead of Module.Migrate.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
