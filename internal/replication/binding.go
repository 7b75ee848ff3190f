package replication

//go:generate mockgen -source=binding.go -destination=../mock/collection_binding_mock.go -package=mock

import (
	"context"

	"github.com/plannerhub/planner-sync/models"
)

// BindingConfig describes the collection-level configuration a binding
// supplies to the generic handlers. The key field name is configuration,
// not a type parameter, so the handlers stay identical across collections.
type BindingConfig struct {
	// Collection is the collection name used in routes and log fields.
	Collection string

	// KeyField is the wire field holding the document key ("id" or "uuid").
	KeyField string

	// KeyIsUUID requires keys to parse as UUIDs during push validation.
	KeyIsUUID bool
}

// CollectionBinding is the abstraction boundary between the generic
// pull/push handlers and a concrete collection's storage.
//
// Implementations own the document transform: every StoredDocument they
// return carries the wire representation (JSON columns decoded, owner and
// raw timestamp stripped, deletion exposed as models.DeletedField), and
// Apply re-encodes wire documents back into rows.
type CollectionBinding interface {
	// Config returns the collection's static binding configuration.
	Config() BindingConfig

	// Load fetches the currently stored documents for the given keys,
	// keyed by document key. Absent keys are simply missing from the map.
	// Soft-deleted documents are returned like any other; the conflict
	// detector treats tombstones as regular stored state.
	Load(ctx context.Context, owner string, keys []string) (map[string]models.StoredDocument, error)

	// Changes returns up to limit documents owned by owner that sort after
	// the checkpoint in (serverTimestamp, key) order. A nil checkpoint
	// means "from the beginning".
	Changes(ctx context.Context, owner string, after *models.Checkpoint, limit int) ([]models.StoredDocument, error)

	// Apply upserts all writes in a single atomic transaction, stamping a
	// fresh server timestamp on every row. Either every write commits or
	// none does.
	//
	// Each write is guarded by its ExpectedTimestamp: the upsert must only
	// land while the stored row still carries that timestamp (or is still
	// absent, for a nil expectation). If any guard fails the whole
	// transaction is rolled back and ErrConcurrentWrite returned, so the
	// conflict scan and the write phase behave as one unit even though
	// another writer may commit in between.
	Apply(ctx context.Context, owner string, writes []models.DocumentWrite) error
}
