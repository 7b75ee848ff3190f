package clientstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/models"
)

// ErrDocumentNotFound is returned when the requested key is not in the
// local replica.
var ErrDocumentNotFound = errors.New("document not found in local replica")

// ApplyRemote overwrites local state with documents received from a pull.
// Remote state is authoritative: the doc and its base snapshot are set to the
// pulled shape and the dirty flag is cleared, discarding unpushed local edits
// for those keys.
func (s *Store) ApplyRemote(ctx context.Context, collection, keyField string, docs []models.WireDocument) error {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "Store.ApplyRemote").Str("collection", collection).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		key, ok := doc.Key(keyField)
		if !ok {
			return fmt.Errorf("pulled document has no %q key", keyField)
		}

		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode pulled document (key=%s): %w", key, err)
		}

		if _, err = tx.ExecContext(ctx, applyRemoteDocument, collection, key, string(raw), string(raw), boolToInt(doc.Deleted())); err != nil {
			log.Err(err).
				Str("func", "Store.ApplyRemote").
				Str("collection", collection).
				Str("key", key).
				Msg("failed to execute upsert for pulled document")
			return fmt.Errorf("failed to apply pulled document (key=%s): %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "Store.ApplyRemote").Str("collection", collection).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Save records a local edit: the document is stored dirty and its base
// snapshot is left as-is, so the next push carries the last server-confirmed
// state as the assumed master state.
func (s *Store) Save(ctx context.Context, collection, keyField string, doc models.WireDocument) error {
	log := logger.FromContext(ctx)

	key, ok := doc.Key(keyField)
	if !ok {
		return fmt.Errorf("document has no %q key", keyField)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document (key=%s): %w", key, err)
	}

	if _, err = s.db.ExecContext(ctx, saveLocalDocument, collection, key, string(raw), boolToInt(doc.Deleted())); err != nil {
		log.Err(err).
			Str("func", "Store.Save").
			Str("collection", collection).
			Str("key", key).
			Msg("failed to execute upsert for local document")
		return fmt.Errorf("failed to save document (key=%s): %w", key, err)
	}

	return nil
}

// Delete records a local soft delete. The tombstone stays dirty until the
// next push confirms it.
func (s *Store) Delete(ctx context.Context, collection, keyField, key string) error {
	doc, err := s.Get(ctx, collection, key)
	if err != nil {
		return err
	}

	doc = doc.Clone()
	doc[models.DeletedField] = true

	return s.Save(ctx, collection, keyField, doc)
}

// Get returns a single document from the local replica, tombstones included.
func (s *Store) Get(ctx context.Context, collection, key string) (models.WireDocument, error) {
	log := logger.FromContext(ctx)

	var (
		raw     string
		deleted int
	)
	row := s.db.QueryRowContext(ctx, getSingleDocument, collection, key)
	if err := row.Scan(&raw, &deleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		log.Err(err).
			Str("func", "Store.Get").
			Str("collection", collection).
			Str("key", key).
			Msg("failed to scan document row")
		return nil, fmt.Errorf("failed to get document (key=%s): %w", key, err)
	}

	return decodeDocument(raw)
}

// List returns every live (non-tombstoned) document of the collection in key
// order.
func (s *Store) List(ctx context.Context, collection string) ([]models.WireDocument, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx, getAllDocuments, collection)
	if err != nil {
		log.Err(err).Str("func", "Store.List").Str("collection", collection).Msg("failed to query documents")
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]models.WireDocument, 0)
	for rows.Next() {
		var (
			raw     string
			deleted int
		)
		if err = rows.Scan(&raw, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}

		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}

	return docs, nil
}

// DirtyRows returns every locally edited document as a push batch, pairing
// each new state with the base snapshot as the assumed master state. Rows
// created locally carry no assumed state.
func (s *Store) DirtyRows(ctx context.Context, collection string) ([]models.PushRow, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx, getDirtyDocuments, collection)
	if err != nil {
		log.Err(err).Str("func", "Store.DirtyRows").Str("collection", collection).Msg("failed to query dirty documents")
		return nil, fmt.Errorf("failed to query dirty documents: %w", err)
	}
	defer rows.Close()

	pushRows := make([]models.PushRow, 0)
	for rows.Next() {
		var (
			raw     string
			base    sql.NullString
			deleted int
		)
		if err = rows.Scan(&raw, &base, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan dirty document row: %w", err)
		}

		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}

		pushRow := models.PushRow{NewDocumentState: doc}
		if base.Valid {
			assumed, err := decodeDocument(base.String)
			if err != nil {
				return nil, err
			}
			pushRow.AssumedMasterState = assumed
		}

		pushRows = append(pushRows, pushRow)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dirty document rows: %w", err)
	}

	return pushRows, nil
}

// MarkClean clears the dirty flags after a successful push and promotes each
// document to its own base snapshot.
func (s *Store) MarkClean(ctx context.Context, collection string, keys []string) error {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err = tx.ExecContext(ctx, markDocumentClean, collection, key); err != nil {
			log.Err(err).
				Str("func", "Store.MarkClean").
				Str("collection", collection).
				Str("key", key).
				Msg("failed to mark document clean")
			return fmt.Errorf("failed to mark document clean (key=%s): %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SaveCheckpoint persists the pull cursor for the collection.
func (s *Store) SaveCheckpoint(ctx context.Context, collection, key, serverTimestamp string) error {
	log := logger.FromContext(ctx)

	if _, err := s.db.ExecContext(ctx, saveCheckpoint, collection, key, serverTimestamp); err != nil {
		log.Err(err).Str("func", "Store.SaveCheckpoint").Str("collection", collection).Msg("failed to save checkpoint")
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	return nil
}

// Checkpoint returns the stored pull cursor. Both values are empty when the
// collection has never been pulled, which requests a full resync.
func (s *Store) Checkpoint(ctx context.Context, collection string) (key, serverTimestamp string, err error) {
	log := logger.FromContext(ctx)

	row := s.db.QueryRowContext(ctx, getCheckpoint, collection)
	if err = row.Scan(&key, &serverTimestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", nil
		}
		log.Err(err).Str("func", "Store.Checkpoint").Str("collection", collection).Msg("failed to scan checkpoint row")
		return "", "", fmt.Errorf("failed to get checkpoint: %w", err)
	}

	return key, serverTimestamp, nil
}

func decodeDocument(raw string) (models.WireDocument, error) {
	var doc models.WireDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}
	return doc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
