package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/popeat/popeat/internal/api/requestctx"
	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/security"
	"github.com/popeat/popeat/internal/service"
)

// Authenticator verifies the bearer token and attaches the caller
// identity to the request context. Requests without a valid token get 401.
func Authenticator(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil {
				writeUnauthorized(w, "auth service unavailable")
				return
			}
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				writeUnauthorized(w, "missing authorization header")
				return
			}
			claims, err := auth.Verify(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			ctx := requestctx.WithIdentity(r.Context(), requestctx.Identity{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles guards a route group: the caller must hold at least one of
// the listed roles. An empty list leaves the route open to any
// authenticated caller. Denials are recorded on the audit trail.
func RequireRoles(audit security.Recorder, roles ...role.Role) func(http.Handler) http.Handler {
	required := role.NewSet(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := requestctx.IdentityFrom(r.Context())
			if !ok {
				recordDenial(audit, r, "access.denied.unauthenticated", "", nil, required)
				writeUnauthorized(w, "authentication required")
				return
			}
			if !role.HasAny(required, identity.Roles) {
				recordDenial(audit, r, "access.denied.role", strconv.FormatInt(identity.UserID, 10), identity.Roles, required)
				writeForbidden(w, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func recordDenial(audit security.Recorder, r *http.Request, kind, actorID string, held, required role.Set) {
	if audit == nil {
		return
	}
	audit.Record(r.Context(), security.Event{
		Kind:    kind,
		ActorID: actorID,
		Route:   r.Method + " " + r.URL.Path,
		IP:      ClientIP(r),
		Metadata: map[string]any{
			"caller_roles":   held.Strings(),
			"required_roles": required.Strings(),
		},
		Occurred: time.Now().UTC(),
	})
}

func extractBearer(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return trimmed
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func writeForbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
