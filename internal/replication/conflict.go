package replication

import (
	"encoding/json"
	"reflect"

	"github.com/plannerhub/planner-sync/models"
)

// HasConflict decides whether a client's push row may proceed against the
// currently stored document.
//
// Rules:
//   - No stored document ⇒ never a conflict: the push is a fresh create,
//     whatever prior state the client claims.
//   - No claimed prior state ⇒ no check to perform. This is a deliberate
//     trust boundary: callers wanting compare-and-swap semantics must always
//     supply the state they last observed.
//   - Otherwise both sides are normalized to the wire shape with null-valued
//     fields stripped, and compared structurally. Any difference is a
//     conflict.
//
// The comparison operates on wire representations only, so storage-layer
// representational quirks (absent key vs. explicit null) cannot produce
// false mismatches.
func HasConflict(stored, assumed models.WireDocument) bool {
	if stored == nil {
		return false
	}
	if assumed == nil {
		return false
	}

	return !reflect.DeepEqual(normalizeWire(stored), normalizeWire(assumed))
}

// normalizeWire round-trips the document through JSON so that equivalent
// values compare equal regardless of their in-memory Go types ([]string vs
// []any, int vs float64), then strips null-valued fields at every level.
func normalizeWire(doc models.WireDocument) any {
	raw, err := json.Marshal(doc)
	if err != nil {
		// Wire documents come from JSON decoding or the document transform;
		// neither produces unmarshalable values. Fall back to the original
		// map so the comparison still runs.
		return stripNulls(map[string]any(doc))
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return stripNulls(map[string]any(doc))
	}

	return stripNulls(generic)
}

func stripNulls(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			out[k] = stripNulls(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, stripNulls(item))
		}
		return out
	default:
		return v
	}
}
