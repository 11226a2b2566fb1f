package handler

import (
	"net/http"
	"time"
)

// Health writes the liveness payload.
func Health(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	})
}
