package models

import "time"

// DeletedField is the wire-level soft-delete marker. It is the only piece of
// server-side metadata exposed to clients; owner and server timestamp never
// leave the storage layer.
const DeletedField = "_deleted"

// WireDocument is the client-visible shape of a replicated record: the
// collection's key field, its payload fields with JSON-encoded columns already
// decoded to native arrays, and the DeletedField flag.
type WireDocument map[string]any

// Key extracts the document key stored under the given wire field name.
// The second return value is false when the field is absent or not a string.
func (d WireDocument) Key(field string) (string, bool) {
	v, ok := d[field]
	if !ok {
		return "", false
	}
	key, ok := v.(string)
	return key, ok
}

// Deleted reports whether the document carries a truthy DeletedField flag.
func (d WireDocument) Deleted() bool {
	v, ok := d[DeletedField].(bool)
	return ok && v
}

// Clone returns a shallow copy of the document. Nested values are shared.
func (d WireDocument) Clone() WireDocument {
	if d == nil {
		return nil
	}
	out := make(WireDocument, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// StoredDocument is a server-side row after the document transform: the wire
// representation plus the replication metadata needed for checkpointing.
type StoredDocument struct {
	// Key is the per-collection document key ("id" or "uuid" field).
	Key string

	// ServerTimestamp is the instant of the last accepted write. It is the
	// sole ordering field for pull pagination, with Key as the tie-break.
	ServerTimestamp time.Time

	// Deleted mirrors the soft-delete column. The document stays in storage
	// as a tombstone so other replicas learn about the deletion.
	Deleted bool

	// Doc is the wire representation, including DeletedField.
	Doc WireDocument
}

// DocumentWrite is one accepted push row ready to be upserted.
//
// ExpectedTimestamp is the ServerTimestamp the conflict check observed for
// this key, nil when no row was stored. The binding must refuse the write if
// the stored row no longer matches, so a commit that lands between the
// conflict scan and the apply cannot be overwritten unreported.
type DocumentWrite struct {
	Key               string
	Deleted           bool
	ExpectedTimestamp *time.Time
	Doc               WireDocument
}

// PushRow is one element of a push batch as sent by the client.
//
// AssumedMasterState is the state the client last observed server-side.
// When omitted the client asserts "I don't care what is there" and the
// conflict check is skipped for this row.
type PushRow struct {
	NewDocumentState   WireDocument `json:"newDocumentState"`
	AssumedMasterState WireDocument `json:"assumedMasterState,omitempty"`
}

// Checkpoint is the client-held pull cursor, scoped to (owner, collection).
// The server never persists it.
type Checkpoint struct {
	Key             string
	ServerTimestamp time.Time
}

// PullResult is the outcome of one pull call: the next ordered batch of
// changed documents and the checkpoint to present on the following pull.
type PullResult struct {
	Documents  []WireDocument
	Checkpoint *Checkpoint
}
