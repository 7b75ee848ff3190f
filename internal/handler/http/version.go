package http

import (
	"net/http"

	"github.com/plannerhub/planner-sync/internal/utils"
	"github.com/plannerhub/planner-sync/models"
)

func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, models.AppBuildInfo{Version: h.appCfg.Version}, http.StatusOK)
}
