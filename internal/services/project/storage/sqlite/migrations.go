package sqlite

import (
	"context"
	"embed"

	"github.com/louisbranch/taskboard/internal/platform/storage/sqlitemigrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationRoot = "migrations"

// Migrate opens the database at path, applies pending migrations and returns
// the names of the migrations it applied.
func Migrate(ctx context.Context, path string) ([]string, error) {
	sqlDB, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	defer sqlDB.Close()
	return sqlitemigrate.Apply(ctx, sqlDB, migrationFS, migrationRoot)
}
