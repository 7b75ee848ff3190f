package http

import (
	"errors"
	"net/http"

	"github.com/plannerhub/planner-sync/internal/replication"
	"github.com/plannerhub/planner-sync/internal/store"
)

// errorStatusMap translates the engine's error taxonomy into HTTP statuses.
// Conflicts never appear here: they are a normal protocol outcome returned
// as data with HTTP 200. Storage failures map to 5xx so clients know the
// batch did not commit and a retry is safe.
var errorStatusMap = map[error]int{
	replication.ErrNoOwner:               http.StatusUnauthorized,
	replication.ErrUnknownCollection:     http.StatusNotFound,
	replication.ErrBadCheckpoint:         http.StatusBadRequest,
	replication.ErrMissingKey:            http.StatusBadRequest,
	replication.ErrInvalidKey:            http.StatusBadRequest,
	replication.ErrMalformedAssumedState: http.StatusBadRequest,

	// contention on every rescan attempt: nothing committed, retry is safe
	replication.ErrConcurrentWrite: http.StatusInternalServerError,

	store.ErrUnsupportedFieldValue: http.StatusBadRequest,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
