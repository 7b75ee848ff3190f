package replication

//go:generate mockgen -source=interfaces.go -destination=../mock/replicator_mock.go -package=mock

import (
	"context"

	"github.com/plannerhub/planner-sync/models"
)

// Replicator is the contract the transport layer calls through. The Service
// type is the production implementation.
type Replicator interface {
	// Config resolves the binding configuration for a collection name,
	// returning ErrUnknownCollection for unregistered collections.
	Config(collection string) (BindingConfig, error)

	// Pull returns the next batch of changed documents for the owner along
	// with the checkpoint to resume from. Read-only and safe to repeat.
	Pull(ctx context.Context, collection, owner string, after *models.Checkpoint, batchSize int) (models.PullResult, error)

	// Push validates every row against the stored state and applies the
	// whole batch atomically when no conflicts are found. The returned
	// slice holds the stored wire documents of conflicting keys; an empty
	// slice means the batch was committed in full.
	Push(ctx context.Context, collection, owner string, rows []models.PushRow) ([]models.WireDocument, error)
}
