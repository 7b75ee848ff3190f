package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/internal/replication"
	"github.com/plannerhub/planner-sync/internal/utils"
	"github.com/plannerhub/planner-sync/models"
)

// pull serves GET /api/{collection}/pull.
//
// Query parameters: the collection's key field (e.g. "id" or "uuid"),
// "serverTimestamp" (ISO 8601, empty for a full resync), and an optional
// "batchSize". The response carries the next batch of wire documents and the
// checkpoint to resume from.
func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	owner, found := utils.GetOwnerFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.pull").Msg("no owner was resolved for request")
		http.Error(w, "no owner was resolved for request", http.StatusUnauthorized)
		return
	}

	collection := chi.URLParam(r, "collection")
	cfg, err := h.replicator.Config(collection)
	if err != nil {
		if errors.Is(err, replication.ErrUnknownCollection) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	query := r.URL.Query()

	checkpoint, err := replication.DecodeCheckpoint(query.Get(cfg.KeyField), query.Get("serverTimestamp"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.pull").Str("collection", collection).Msg("malformed checkpoint in query")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	batchSize := 0
	if raw := query.Get("batchSize"); raw != "" {
		batchSize, err = strconv.Atoi(raw)
		if err != nil || batchSize <= 0 {
			log.Error().Str("func", "*Handler.pull").Str("batch_size", raw).Msg("invalid batchSize in query")
			http.Error(w, "invalid batchSize", http.StatusBadRequest)
			return
		}
	}

	result, err := h.replicator.Pull(ctx, collection, owner, checkpoint, batchSize)
	if err != nil {
		log.Err(err).Str("func", "*Handler.pull").Str("collection", collection).Msg("error pulling documents")
		http.Error(w, "error pulling documents", statusFromError(err))
		return
	}

	response := models.PullResponse{
		Documents:  result.Documents,
		Checkpoint: replication.EncodeCheckpoint(cfg.KeyField, result.Checkpoint),
	}

	utils.WriteJSON(w, response, http.StatusOK)
}
