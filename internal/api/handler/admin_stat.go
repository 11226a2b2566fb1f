package handler

import (
	"net/http"

	"github.com/popeat/popeat/internal/service"
)

// AdminStatHandler serves the platform overview figures.
type AdminStatHandler struct {
	stats service.StatsService
}

// NewAdminStatHandler binds the stats service.
func NewAdminStatHandler(stats service.StatsService) *AdminStatHandler {
	return &AdminStatHandler{stats: stats}
}

// Overview returns order counts per status, revenue and account totals.
func (h *AdminStatHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.stats.Overview(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": overview})
}
