// Package clientstore keeps the client-side replica: the local copy of every
// replicated collection plus the checkpoint to resume pulling from.
//
// Documents are stored as JSON text alongside a "base" snapshot of the last
// state confirmed by the server. Local edits flip the dirty flag; the sync
// loop pushes dirty rows with the base snapshot as the assumed master state.
package clientstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/plannerhub/planner-sync/internal/logger"
)

// Store is the SQLite-backed local replica.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
}

// Open connects to the SQLite database at dbPath, creating the file and the
// schema when missing.
func Open(ctx context.Context, dbPath string, log *logger.Logger) (*Store, error) {
	if err := createLocalDBFileIfNotExists(dbPath); err != nil {
		log.Err(err).Str("func", "clientstore.Open").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file")
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Err(err).Str("func", "clientstore.Open").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB")
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "clientstore.Open").Msg("error connecting database (ping)")
		return nil, err
	}

	if _, err = conn.ExecContext(ctx, createSchema); err != nil {
		log.Err(err).Str("func", "clientstore.Open").Msg("error creating schema")
		return nil, fmt.Errorf("error creating local schema: %w", err)
	}
	log.Debug().Str("func", "clientstore.Open").Msg("connected to local database successfully")

	return &Store{db: conn, logger: log}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if dbFile == ":memory:" {
		return nil
	}

	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}
