package replication

import (
	"context"
	"fmt"

	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/models"
)

// Pull implements Replicator.
//
// It returns the next batch of the owner's documents ordered by
// (serverTimestamp asc, key asc), each in wire shape with the soft-delete
// flag attached. The composite checkpoint predicate is applied by the
// binding; the key tie-break guarantees forward progress even when many
// writes share a timestamp.
//
// When zero documents match, the input checkpoint is returned unchanged so
// the client keeps its position; a nil input checkpoint stays nil. Pull has
// no side effects and is safe to repeat.
func (s *Service) Pull(ctx context.Context, collection, owner string, after *models.Checkpoint, batchSize int) (models.PullResult, error) {
	log := logger.FromContext(ctx)

	if owner == "" {
		return models.PullResult{}, ErrNoOwner
	}

	b, err := s.binding(collection)
	if err != nil {
		return models.PullResult{}, err
	}

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	changes, err := b.Changes(ctx, owner, after, batchSize)
	if err != nil {
		log.Err(err).
			Str("func", "Service.Pull").
			Str("collection", collection).
			Str("owner", owner).
			Msg("failed to read changed documents")
		return models.PullResult{}, fmt.Errorf("pull %s: %w", collection, err)
	}

	if len(changes) == 0 {
		return models.PullResult{
			Documents:  []models.WireDocument{},
			Checkpoint: after,
		}, nil
	}

	documents := make([]models.WireDocument, 0, len(changes))
	for _, doc := range changes {
		documents = append(documents, doc.Doc)
	}

	last := changes[len(changes)-1]

	log.Debug().
		Str("func", "Service.Pull").
		Str("collection", collection).
		Str("owner", owner).
		Int("documents", len(documents)).
		Str("checkpoint_key", last.Key).
		Msg("pull batch served")

	return models.PullResult{
		Documents: documents,
		Checkpoint: &models.Checkpoint{
			Key:             last.Key,
			ServerTimestamp: last.ServerTimestamp,
		},
	}, nil
}
