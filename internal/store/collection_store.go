package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/internal/replication"
	"github.com/plannerhub/planner-sync/models"
)

// CollectionStore is the PostgreSQL-backed implementation of
// [replication.CollectionBinding], generic over the table described by its
// [TableSpec]. One instance serves one collection; all predicates are scoped
// by owner_id so concurrent calls for different owners cannot interfere.
type CollectionStore struct {
	db     *DB
	spec   TableSpec
	logger *logger.Logger
}

// NewCollectionStore constructs a binding for the given table spec.
//
// The logger parameter is stored for fallback logging; most methods prefer
// the context-scoped logger obtained via [logger.FromContext].
func NewCollectionStore(db *DB, spec TableSpec, log *logger.Logger) *CollectionStore {
	return &CollectionStore{
		db:     db,
		spec:   spec,
		logger: log,
	}
}

// Config implements [replication.CollectionBinding].
func (c *CollectionStore) Config() replication.BindingConfig {
	return replication.BindingConfig{
		Collection: c.spec.Table,
		KeyField:   c.spec.KeyField,
		KeyIsUUID:  c.spec.KeyIsUUID,
	}
}

// Load implements [replication.CollectionBinding]. It fetches the stored
// documents for the given keys, soft-deleted rows included, keyed by
// document key.
func (c *CollectionStore) Load(ctx context.Context, owner string, keys []string) (map[string]models.StoredDocument, error) {
	log := logger.FromContext(ctx)

	if len(keys) == 0 {
		return map[string]models.StoredDocument{}, nil
	}

	query, args, err := buildLoadQuery(c.spec, owner, keys)
	if err != nil {
		log.Err(err).
			Str("func", "CollectionStore.Load").
			Str("collection", c.spec.Table).
			Str("owner", owner).
			Msg("failed to build load query")
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "CollectionStore.Load").
			Str("collection", c.spec.Table).
			Str("owner", owner).
			Int("keys_count", len(keys)).
			Msg("failed to execute query for loading stored documents")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	stored := make(map[string]models.StoredDocument, len(keys))

	for rows.Next() {
		doc, scanErr := c.spec.scanRow(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "CollectionStore.Load").
				Str("collection", c.spec.Table).
				Str("owner", owner).
				Msg("failed to scan document row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		stored[doc.Key] = doc
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "CollectionStore.Load").
			Str("collection", c.spec.Table).
			Str("owner", owner).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return stored, nil
}

// Changes implements [replication.CollectionBinding]. It returns the next
// limit documents after the checkpoint in (updated_at, key) order. A nil
// checkpoint selects the oldest documents. Read-only.
func (c *CollectionStore) Changes(ctx context.Context, owner string, after *models.Checkpoint, limit int) ([]models.StoredDocument, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildChangesQuery(c.spec, owner, after, limit)
	if err != nil {
		log.Err(err).
			Str("func", "CollectionStore.Changes").
			Str("collection", c.spec.Table).
			Str("owner", owner).
			Msg("failed to build changes query")
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "CollectionStore.Changes").
			Str("collection", c.spec.Table).
			Str("owner", owner).
			Msg("failed to execute query for changed documents")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	changes := make([]models.StoredDocument, 0, limit)

	for rows.Next() {
		doc, scanErr := c.spec.scanRow(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "CollectionStore.Changes").
				Str("collection", c.spec.Table).
				Str("owner", owner).
				Msg("failed to scan document row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		changes = append(changes, doc)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "CollectionStore.Changes").
			Str("collection", c.spec.Table).
			Str("owner", owner).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return changes, nil
}

// maxApplyAttempts bounds the retries on transient Postgres failures
// (connection loss, serialization failure, deadlock rollback) as classified
// by the error classifier. The transaction is re-run from the top, so a
// retried batch is indistinguishable from a first attempt.
const maxApplyAttempts = 3

// upsertStmt is one pre-built write of an Apply batch.
type upsertStmt struct {
	key     string
	deleted bool
	query   string
	args    []any
}

// Apply implements [replication.CollectionBinding]. All writes are upserted
// inside one transaction sharing a single server timestamp; the transaction
// is rolled back automatically (via defer) if any individual upsert fails,
// so a timed-out or failed push leaves storage unchanged.
//
// All statements are built before the transaction opens, so a malformed
// field value fails the batch without touching storage. Each upsert is
// guarded by its write's ExpectedTimestamp; a guard that matches no row
// means another writer committed after the conflict scan, and the batch is
// rolled back with [replication.ErrConcurrentWrite] so the caller rescans.
// Transient failures are retried per the Postgres error classifier.
func (c *CollectionStore) Apply(ctx context.Context, owner string, writes []models.DocumentWrite) error {
	log := logger.FromContext(ctx)

	if len(writes) == 0 {
		return nil
	}

	now := time.Now().UTC()

	stmts := make([]upsertStmt, 0, len(writes))
	for idx, w := range writes {
		query, args, buildErr := buildUpsertQuery(c.spec, owner, w, now)
		if buildErr != nil {
			log.Err(buildErr).
				Str("func", "CollectionStore.Apply").
				Int("iteration", idx+1).
				Str("key", w.Key).
				Msg("failed to build upsert query")
			return buildErr
		}

		stmts = append(stmts, upsertStmt{key: w.Key, deleted: w.Deleted, query: query, args: args})
	}

	var err error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		err = c.applyTx(ctx, owner, stmts)
		if err == nil {
			log.Info().
				Str("func", "CollectionStore.Apply").
				Str("collection", c.spec.Table).
				Str("owner", owner).
				Int("writes_count", len(writes)).
				Msg("successfully applied push batch")
			return nil
		}

		if errors.Is(err, replication.ErrConcurrentWrite) {
			return err
		}

		if c.db.errorClassifier.Classify(err) != Retryable {
			return err
		}

		log.Warn().
			Err(err).
			Str("func", "CollectionStore.Apply").
			Str("collection", c.spec.Table).
			Str("owner", owner).
			Int("attempt", attempt).
			Str("pg_code", postgresErrorCode(err)).
			Msg("transient database failure, retrying push transaction")
	}

	return err
}

// applyTx runs one attempt of the Apply batch in a single transaction.
func (c *CollectionStore) applyTx(ctx context.Context, owner string, stmts []upsertStmt) error {
	log := logger.FromContext(ctx)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "CollectionStore.Apply").
			Str("collection", c.spec.Table).
			Str("owner", owner).
			Int("writes_count", len(stmts)).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for idx, st := range stmts {
		log.Debug().
			Str("func", "CollectionStore.Apply").
			Int("iteration", idx+1).
			Int("total", len(stmts)).
			Str("collection", c.spec.Table).
			Str("key", st.key).
			Bool("deleted", st.deleted).
			Msg("upserting document in transaction")

		res, execErr := tx.ExecContext(ctx, st.query, st.args...)
		if execErr != nil {
			log.Err(execErr).
				Str("func", "CollectionStore.Apply").
				Int("iteration", idx+1).
				Str("collection", c.spec.Table).
				Str("key", st.key).
				Str("pg_code", postgresErrorCode(execErr)).
				Msg("failed to execute upsert")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}

		affected, raErr := res.RowsAffected()
		if raErr != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, raErr)
		}
		if affected == 0 {
			log.Info().
				Str("func", "CollectionStore.Apply").
				Str("collection", c.spec.Table).
				Str("owner", owner).
				Str("key", st.key).
				Msg("upsert guard matched no row, rolling back batch")
			return fmt.Errorf("key %q: %w", st.key, replication.ErrConcurrentWrite)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "CollectionStore.Apply").
			Str("collection", c.spec.Table).
			Str("owner", owner).
			Int("writes_count", len(stmts)).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return nil
}
