// Package migrations embeds the ringext SQL migrations into the binary.
package migrations

import (
	"embed"

	"github.com/nerrad567/ringext-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.Migrations = migrationsFS
}
