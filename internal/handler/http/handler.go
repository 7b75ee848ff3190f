package http

import (
	"github.com/plannerhub/planner-sync/internal/config"
	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/internal/replication"
)

// Handler owns the HTTP transport: routing, authentication, and the
// collection-agnostic pull/push endpoints over a [replication.Replicator].
type Handler struct {
	replicator replication.Replicator
	appCfg     config.App

	logger *logger.Logger
}

// NewHandler constructs the HTTP handler over the replication service.
func NewHandler(replicator replication.Replicator, appCfg config.App, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		replicator: replicator,
		appCfg:     appCfg,
		logger:     logger,
	}
}
