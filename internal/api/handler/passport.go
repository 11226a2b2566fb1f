package handler

import (
	"net/http"

	"github.com/popeat/popeat/internal/api/middleware"
	"github.com/popeat/popeat/internal/api/requestctx"
	"github.com/popeat/popeat/internal/service"
)

// PassportHandler handles registration and login.
type PassportHandler struct {
	auth service.AuthService
}

// NewPassportHandler binds the auth service.
func NewPassportHandler(auth service.AuthService) *PassportHandler {
	return &PassportHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns a fresh token.
func (h *PassportHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
		Role:     payload.Role,
		IP:       middleware.ClientIP(r),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": result})
}

// Login exchanges credentials for a token.
func (h *PassportHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    payload.Email,
		Password: payload.Password,
		IP:       middleware.ClientIP(r),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}

// Me returns the authenticated caller's identity.
func (h *PassportHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestctx.IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"user_id": identity.UserID,
		"email":   identity.Email,
		"roles":   identity.Roles.Strings(),
	}})
}
