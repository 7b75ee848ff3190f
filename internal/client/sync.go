package client

import (
	"context"
	"fmt"

	"github.com/plannerhub/planner-sync/internal/clientstore"
	"github.com/plannerhub/planner-sync/internal/logger"
)

// Collection names one replicated collection and its wire key field.
type Collection struct {
	Name     string
	KeyField string
}

// DefaultBatchSize is the pull page size used when the Syncer is built
// without an explicit one.
const DefaultBatchSize = 50

// Syncer converges the local replica with the server: it pushes dirty local
// rows first, then pulls remote changes until the collection is drained.
type Syncer struct {
	client      *Client
	store       *clientstore.Store
	collections []Collection
	batchSize   int

	logger *logger.Logger
}

// NewSyncer builds a Syncer over the given client and local store.
func NewSyncer(cli *Client, store *clientstore.Store, collections []Collection, batchSize int, log *logger.Logger) *Syncer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Syncer{
		client:      cli,
		store:       store,
		collections: collections,
		batchSize:   batchSize,
		logger:      log,
	}
}

// FullSync runs one push-then-pull cycle over every registered collection.
// The first failing collection aborts the cycle.
func (s *Syncer) FullSync(ctx context.Context) error {
	for _, col := range s.collections {
		if err := s.SyncCollection(ctx, col); err != nil {
			return fmt.Errorf("sync collection %q: %w", col.Name, err)
		}
	}

	return nil
}

// SyncCollection converges a single collection.
func (s *Syncer) SyncCollection(ctx context.Context, col Collection) error {
	if err := s.pushDirty(ctx, col); err != nil {
		return err
	}

	return s.pullAll(ctx, col)
}

// pushDirty sends the locally edited rows. On success every pushed key is
// marked clean. On conflict the server's stored state overwrites the local
// copies of the conflicting keys; the remaining dirty rows were rolled back
// server-side and retry on the next cycle with a refreshed base.
func (s *Syncer) pushDirty(ctx context.Context, col Collection) error {
	log := s.logger.With().Str("func", "Syncer.pushDirty").Str("collection", col.Name).Logger()

	rows, err := s.store.DirtyRows(ctx, col.Name)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	conflicts, err := s.client.Push(ctx, col.Name, rows)
	if err != nil {
		return err
	}

	if len(conflicts) > 0 {
		log.Info().Int("conflicts", len(conflicts)).Msg("push rejected with conflicts, accepting server state")
		return s.store.ApplyRemote(ctx, col.Name, col.KeyField, conflicts)
	}

	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		if key, ok := row.NewDocumentState.Key(col.KeyField); ok {
			keys = append(keys, key)
		}
	}

	log.Debug().Int("pushed", len(keys)).Msg("push committed")
	return s.store.MarkClean(ctx, col.Name, keys)
}

// pullAll pages through the server's changes from the stored checkpoint until
// a short batch signals the end, persisting the checkpoint after every page.
func (s *Syncer) pullAll(ctx context.Context, col Collection) error {
	log := s.logger.With().Str("func", "Syncer.pullAll").Str("collection", col.Name).Logger()

	key, serverTimestamp, err := s.store.Checkpoint(ctx, col.Name)
	if err != nil {
		return err
	}

	for {
		resp, err := s.client.Pull(ctx, col.Name, col.KeyField, key, serverTimestamp, s.batchSize)
		if err != nil {
			return err
		}

		if len(resp.Documents) > 0 {
			if err = s.store.ApplyRemote(ctx, col.Name, col.KeyField, resp.Documents); err != nil {
				return err
			}
		}

		if resp.Checkpoint != nil {
			key = resp.Checkpoint[col.KeyField]
			serverTimestamp = resp.Checkpoint["serverTimestamp"]
			if err = s.store.SaveCheckpoint(ctx, col.Name, key, serverTimestamp); err != nil {
				return err
			}
		}

		if len(resp.Documents) < s.batchSize {
			log.Debug().Msg("collection drained")
			return nil
		}
	}
}
