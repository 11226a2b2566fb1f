package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/popeat/popeat/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	var nf *service.NotFoundError
	var ve *service.ValidationError
	var it *service.InvalidTransitionError
	switch {
	case errors.As(err, &nf):
		respondError(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &it):
		respondError(w, http.StatusBadRequest, it.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, service.ErrStatusConflict):
		respondError(w, http.StatusConflict, "order was modified concurrently, retry")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "too many attempts")
	case errors.Is(err, service.ErrEmailExists):
		respondError(w, http.StatusConflict, "email already registered")
	default:
		slog.Error("request failed with unexpected error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
