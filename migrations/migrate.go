// Package migrations holds the embedded schema migrations for the
// collection tables, applied on server start.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var collectionSchema embed.FS

// Migrate brings the collection tables up to the latest schema version.
// The SQL is embedded in the binary, so deployments need no migration files
// on disk.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(collectionSchema)

	// the server connects through the pgx stdlib driver
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply collection migrations: %w", err)
	}

	return nil
}
