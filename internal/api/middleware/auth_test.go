package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/security"
	"github.com/popeat/popeat/internal/service"
)

type stubAuth struct {
	claims map[string]*service.Claims
}

func (s *stubAuth) Register(context.Context, service.RegisterInput) (*service.AuthResult, error) {
	panic("not used")
}

func (s *stubAuth) Login(context.Context, service.LoginInput) (*service.AuthResult, error) {
	panic("not used")
}

func (s *stubAuth) Verify(_ context.Context, raw string) (*service.Claims, error) {
	if c, ok := s.claims[raw]; ok {
		return c, nil
	}
	return nil, service.ErrInvalidCredentials
}

type memRecorder struct {
	mu     sync.Mutex
	events []security.Event
}

func (r *memRecorder) Record(_ context.Context, event security.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticator(t *testing.T) {
	auth := &stubAuth{claims: map[string]*service.Claims{
		"good-token": {UserID: 42, Email: "c@example.com", Roles: role.NewSet(role.Client)},
	}}
	handler := Authenticator(auth)(okHandler())

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	auth := &stubAuth{claims: map[string]*service.Claims{
		"client-token": {UserID: 1, Roles: role.NewSet(role.Client)},
		"admin-token":  {UserID: 2, Roles: role.NewSet(role.Admin, role.Client)},
	}}
	audit := &memRecorder{}
	handler := Authenticator(auth)(RequireRoles(audit, role.Admin)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer client-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	audit.mu.Lock()
	require.Len(t, audit.events, 1)
	assert.Equal(t, "access.denied.role", audit.events[0].Kind)
	assert.Equal(t, "1", audit.events[0].ActorID)
	assert.Equal(t, []string{"CLIENT"}, audit.events[0].Metadata["caller_roles"])
	assert.Equal(t, []string{"ADMIN"}, audit.events[0].Metadata["required_roles"])
	audit.mu.Unlock()

	req = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesUnauthenticated(t *testing.T) {
	audit := &memRecorder{}
	handler := RequireRoles(audit, role.Admin)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	audit.mu.Lock()
	require.Len(t, audit.events, 1)
	assert.Equal(t, "access.denied.unauthenticated", audit.events[0].Kind)
	assert.Empty(t, audit.events[0].Metadata["caller_roles"])
	assert.Equal(t, []string{"ADMIN"}, audit.events[0].Metadata["required_roles"])
	audit.mu.Unlock()
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", extractBearer("Bearer abc"))
	assert.Equal(t, "abc", extractBearer("bearer abc"))
	assert.Equal(t, "abc", extractBearer("abc"))
	assert.Equal(t, "", extractBearer(""))
}
