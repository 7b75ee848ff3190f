package replication

import (
	"fmt"
	"time"

	"github.com/plannerhub/planner-sync/models"
)

// DefaultBatchSize is the number of documents returned by a pull when the
// client does not specify a batch size.
const DefaultBatchSize = 10

// checkpointTimeLayout is the timestamp encoding used on the wire.
// RFC 3339 with nanoseconds keeps sub-second write bursts distinguishable.
const checkpointTimeLayout = time.RFC3339Nano

// DecodeCheckpoint parses the opaque cursor a client presents to resume a
// pull. An empty timestamp means "full resync from the beginning" and yields
// a nil checkpoint. A malformed timestamp is a client-input error.
func DecodeCheckpoint(rawKey, rawTimestamp string) (*models.Checkpoint, error) {
	if rawTimestamp == "" {
		return nil, nil
	}

	ts, err := time.Parse(checkpointTimeLayout, rawTimestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadCheckpoint, err)
	}

	return &models.Checkpoint{Key: rawKey, ServerTimestamp: ts}, nil
}

// EncodeCheckpoint renders a checkpoint into its wire shape, keyed by the
// collection's key field name. A nil checkpoint encodes to nil, which
// serializes as JSON null.
func EncodeCheckpoint(keyField string, cp *models.Checkpoint) map[string]string {
	if cp == nil {
		return nil
	}

	return map[string]string{
		keyField:          cp.Key,
		"serverTimestamp": cp.ServerTimestamp.UTC().Format(checkpointTimeLayout),
	}
}
