package replication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/models"
)

// maxPushAttempts bounds the scan-and-apply loop under write contention.
// Each retry reloads the stored state, so an interleaved commit turns into
// a reported conflict on the next attempt rather than endless spinning.
const maxPushAttempts = 3

// Push implements Replicator.
//
// Every row is checked against the stored state before anything is written:
// the whole batch is looked up, each row runs through the conflict detector,
// and conflicted rows contribute the *stored* wire document to the result.
// The scan never aborts early so the client receives the full conflict set
// in one round trip.
//
// If any conflict was found, nothing is written and the conflict list is
// returned. Otherwise all rows are applied in a single atomic transaction:
// upsert by (owner, key) with a fresh server timestamp and the row's
// soft-delete flag. A delete for a never-created key still upserts, leaving
// a tombstone, so a delete-before-create race resolves deterministically.
//
// Each write carries the server timestamp its conflict check observed, and
// the binding refuses the batch with ErrConcurrentWrite if any stored row no
// longer matches. The scan then re-runs against the fresh state, so a commit
// that lands between the scan and the apply is either reported as a conflict
// or re-checked, never silently overwritten.
//
// Two rows targeting the same key in one batch are both checked against the
// same snapshot; only the last row is written, so the last row wins.
func (s *Service) Push(ctx context.Context, collection, owner string, rows []models.PushRow) ([]models.WireDocument, error) {
	log := logger.FromContext(ctx)

	if owner == "" {
		return nil, ErrNoOwner
	}

	b, err := s.binding(collection)
	if err != nil {
		return nil, err
	}
	cfg := b.Config()

	keys, err := validateRows(cfg, rows)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return []models.WireDocument{}, nil
	}

	for attempt := 1; attempt <= maxPushAttempts; attempt++ {
		stored, err := b.Load(ctx, owner, keys)
		if err != nil {
			log.Err(err).
				Str("func", "Service.Push").
				Str("collection", collection).
				Str("owner", owner).
				Int("rows_count", len(rows)).
				Msg("failed to load stored documents for conflict check")
			return nil, fmt.Errorf("push %s: %w", collection, err)
		}

		conflicts, writes := scanBatch(cfg, rows, stored)

		if len(conflicts) > 0 {
			log.Info().
				Str("func", "Service.Push").
				Str("collection", collection).
				Str("owner", owner).
				Int("rows_count", len(rows)).
				Int("conflicts_count", len(conflicts)).
				Msg("push batch rejected in full")
			return conflicts, nil
		}

		err = b.Apply(ctx, owner, writes)
		if errors.Is(err, ErrConcurrentWrite) {
			log.Info().
				Str("func", "Service.Push").
				Str("collection", collection).
				Str("owner", owner).
				Int("attempt", attempt).
				Msg("stored state moved during push, rescanning batch")
			continue
		}
		if err != nil {
			log.Err(err).
				Str("func", "Service.Push").
				Str("collection", collection).
				Str("owner", owner).
				Int("rows_count", len(writes)).
				Msg("failed to apply push batch")
			return nil, fmt.Errorf("push %s: %w", collection, err)
		}

		log.Debug().
			Str("func", "Service.Push").
			Str("collection", collection).
			Str("owner", owner).
			Int("rows_count", len(writes)).
			Msg("push batch committed")

		return []models.WireDocument{}, nil
	}

	// Contention on every attempt. Nothing was committed, so the client can
	// safely retry the whole batch.
	return nil, fmt.Errorf("push %s: %w", collection, ErrConcurrentWrite)
}

// scanBatch runs the conflict detector over one loaded snapshot and renders
// the accepted rows into guarded writes.
//
// Rows sharing a key are all checked against the same snapshot, but only the
// last one is kept: the writes carry the snapshot's timestamp as their guard,
// and a second upsert for the same key could never pass a guard its
// predecessor just invalidated.
func scanBatch(cfg BindingConfig, rows []models.PushRow, stored map[string]models.StoredDocument) ([]models.WireDocument, []models.DocumentWrite) {
	conflicts := make([]models.WireDocument, 0)
	writes := make([]models.DocumentWrite, 0, len(rows))
	position := make(map[string]int, len(rows))

	for _, row := range rows {
		key, _ := row.NewDocumentState.Key(cfg.KeyField)

		var storedDoc models.WireDocument
		var expected *time.Time
		if cur, ok := stored[key]; ok {
			storedDoc = cur.Doc
			ts := cur.ServerTimestamp
			expected = &ts
		}

		if HasConflict(storedDoc, row.AssumedMasterState) {
			conflicts = append(conflicts, storedDoc)
			continue
		}

		w := models.DocumentWrite{
			Key:               key,
			Deleted:           row.NewDocumentState.Deleted(),
			ExpectedTimestamp: expected,
			Doc:               row.NewDocumentState,
		}

		if idx, seen := position[key]; seen {
			writes[idx] = w
			continue
		}
		position[key] = len(writes)
		writes = append(writes, w)
	}

	return conflicts, writes
}

// validateRows checks every row up front so that no partial work happens on
// malformed input, and collects the batch's document keys for the lookup
// phase.
func validateRows(cfg BindingConfig, rows []models.PushRow) ([]string, error) {
	keys := make([]string, 0, len(rows))

	for i, row := range rows {
		key, ok := row.NewDocumentState.Key(cfg.KeyField)
		if !ok || key == "" {
			return nil, fmt.Errorf("row %d: %w (field %q)", i, ErrMissingKey, cfg.KeyField)
		}

		if cfg.KeyIsUUID {
			if _, err := uuid.Parse(key); err != nil {
				return nil, fmt.Errorf("row %d: %w: %w", i, ErrInvalidKey, err)
			}
		}

		if row.AssumedMasterState != nil {
			assumedKey, ok := row.AssumedMasterState.Key(cfg.KeyField)
			if !ok || assumedKey != key {
				return nil, fmt.Errorf("row %d: %w", i, ErrMalformedAssumedState)
			}
		}

		keys = append(keys, key)
	}

	return keys, nil
}
