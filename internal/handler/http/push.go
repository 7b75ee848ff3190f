package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/internal/replication"
	"github.com/plannerhub/planner-sync/internal/utils"
	"github.com/plannerhub/planner-sync/models"
)

// push serves POST /api/{collection}/push.
//
// The body is an array of push rows. The 200 response body is the conflict
// list: the stored wire documents of every rejected key. An empty array means
// the whole batch was committed. A non-empty array means the batch was
// rejected in full and nothing was written.
func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	owner, found := utils.GetOwnerFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.push").Msg("no owner was resolved for request")
		http.Error(w, "no owner was resolved for request", http.StatusUnauthorized)
		return
	}

	collection := chi.URLParam(r, "collection")

	var rows []models.PushRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		log.Err(err).Str("func", "*Handler.push").Str("collection", collection).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	conflicts, err := h.replicator.Push(ctx, collection, owner, rows)
	if err != nil {
		if errors.Is(err, replication.ErrUnknownCollection) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Err(err).
			Str("func", "*Handler.push").
			Str("collection", collection).
			Int("rows_count", len(rows)).
			Msg("error pushing documents")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if conflicts == nil {
		conflicts = []models.WireDocument{}
	}

	utils.WriteJSON(w, conflicts, http.StatusOK)
}
