package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/plannerhub/planner-sync/models"
)

// Column maps one payload database column to its wire field.
type Column struct {
	// Name is the database column name.
	Name string

	// Field is the wire document field name.
	Field string

	// JSON marks a column persisted as JSON-encoded text that must be
	// decoded to a native array on read and re-encoded on write.
	JSON bool
}

// TableSpec is the per-collection configuration driving the document
// transform and the generated SQL. Payload columns are nullable text; array
// fields are JSON-encoded text.
//
// Every table shares the replication metadata columns: owner_id, updated_at
// and deleted. They are managed by the store and never appear in the wire
// shape except as the models.DeletedField flag.
type TableSpec struct {
	// Table is the database table (also the collection route name).
	Table string

	// KeyColumn is the database column holding the document key.
	KeyColumn string

	// KeyField is the wire field name of the key ("id" or "uuid").
	KeyField string

	// KeyIsUUID requires keys to parse as UUIDs on push.
	KeyIsUUID bool

	// Columns lists the payload columns in scan/insert order.
	Columns []Column
}

// selectColumns returns the full column list for reads: key, payload
// columns, then the replication metadata.
func (s TableSpec) selectColumns() []string {
	cols := make([]string, 0, len(s.Columns)+3)
	cols = append(cols, s.KeyColumn)
	for _, c := range s.Columns {
		cols = append(cols, c.Name)
	}
	cols = append(cols, "updated_at", "deleted")
	return cols
}

// insertColumns returns the full column list for upserts: owner, key,
// payload columns, then the replication metadata.
func (s TableSpec) insertColumns() []string {
	cols := make([]string, 0, len(s.Columns)+4)
	cols = append(cols, "owner_id", s.KeyColumn)
	for _, c := range s.Columns {
		cols = append(cols, c.Name)
	}
	cols = append(cols, "updated_at", "deleted")
	return cols
}

// scanRow reads one result row in selectColumns order and applies the
// document transform: JSON columns are decoded to native arrays (falling
// back to an empty array on NULL or malformed text), NULL payload fields are
// omitted, ownership metadata never reaches the wire shape, and the
// soft-delete flag is exposed as models.DeletedField.
func (s TableSpec) scanRow(rows *sql.Rows) (models.StoredDocument, error) {
	var key string
	var updatedAt time.Time
	var deleted bool

	payload := make([]sql.NullString, len(s.Columns))

	dest := make([]any, 0, len(s.Columns)+3)
	dest = append(dest, &key)
	for i := range payload {
		dest = append(dest, &payload[i])
	}
	dest = append(dest, &updatedAt, &deleted)

	if err := rows.Scan(dest...); err != nil {
		return models.StoredDocument{}, err
	}

	doc := make(models.WireDocument, len(s.Columns)+2)
	doc[s.KeyField] = key
	for i, col := range s.Columns {
		if col.JSON {
			doc[col.Field] = decodeJSONList(payload[i])
			continue
		}
		if payload[i].Valid {
			doc[col.Field] = payload[i].String
		}
	}
	doc[models.DeletedField] = deleted

	return models.StoredDocument{
		Key:             key,
		ServerTimestamp: updatedAt,
		Deleted:         deleted,
		Doc:             doc,
	}, nil
}

// writeValues renders a document write into insertColumns order, re-encoding
// JSON fields via the transform's inverse.
func (s TableSpec) writeValues(owner string, w models.DocumentWrite, now time.Time) ([]any, error) {
	vals := make([]any, 0, len(s.Columns)+4)
	vals = append(vals, owner, w.Key)
	for _, col := range s.Columns {
		v, err := encodeColumn(col, w.Doc[col.Field])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", col.Field, err)
		}
		vals = append(vals, v)
	}
	vals = append(vals, now, w.Deleted)
	return vals, nil
}

// encodeColumn renders one wire field into its column value. Text columns
// accept strings and nil only: a non-string scalar would be stored as text
// and come back as a string on the next pull, a lossy round trip the client
// would later see as a spurious conflict.
func encodeColumn(col Column, v any) (any, error) {
	if col.JSON {
		return encodeJSONList(v), nil
	}

	switch val := v.(type) {
	case string:
		return val, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedFieldValue, v)
	}
}

// decodeJSONList decodes a JSON-encoded text column into a native array.
// Absent values and decode failures yield an empty array rather than an
// error; clients always see a list for array-typed fields.
func decodeJSONList(ns sql.NullString) []any {
	if !ns.Valid || ns.String == "" {
		return []any{}
	}

	var list []any
	if err := json.Unmarshal([]byte(ns.String), &list); err != nil {
		return []any{}
	}
	if list == nil {
		return []any{}
	}

	return list
}

// encodeJSONList is the inverse of decodeJSONList. A missing or
// unmarshalable value is stored as an empty JSON array.
func encodeJSONList(v any) string {
	if v == nil {
		return "[]"
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}

	return string(raw)
}
