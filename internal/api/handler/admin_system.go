package handler

import (
	"net/http"

	"github.com/popeat/popeat/internal/service"
)

// AdminSystemHandler serves the host health snapshot.
type AdminSystemHandler struct {
	system service.SystemService
}

// NewAdminSystemHandler binds the system service.
func NewAdminSystemHandler(system service.SystemService) *AdminSystemHandler {
	return &AdminSystemHandler{system: system}
}

// Status returns CPU, memory, disk and load figures for the host.
func (h *AdminSystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.system.Status(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": status})
}
