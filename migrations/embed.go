// Package migrations embeds SQL migration files into the binary so the
// schema can be applied without the files being present on disk.
package migrations

import (
	"embed"

	"github.com/zkfleet/zkfleet-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // files sit at the root of the embedded FS
}
