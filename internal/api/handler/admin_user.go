package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/service"
)

// AdminUserHandler exposes the administrative account endpoints.
type AdminUserHandler struct {
	users service.UserService
}

// NewAdminUserHandler binds the user service.
func NewAdminUserHandler(users service.UserService) *AdminUserHandler {
	return &AdminUserHandler{users: users}
}

type grantRoleRequest struct {
	Role string `json:"role"`
}

// List returns a page of accounts.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": users})
}

// Get returns one account.
func (h *AdminUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": user})
}

// GrantRole adds a role to an account.
func (h *AdminUserHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload grantRoleRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	parsed, err := role.Parse(payload.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}
	user, err := h.users.GrantRole(r.Context(), id, parsed)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": user})
}

// RevokeRole removes a role from an account; the last role never goes.
func (h *AdminUserHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	parsed, err := role.Parse(chi.URLParam(r, "role"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}
	user, err := h.users.RevokeRole(r.Context(), id, parsed)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": user})
}
