// Package requestctx carries the authenticated caller identity through
// request contexts.
package requestctx

import (
	"context"

	"github.com/popeat/popeat/internal/auth/role"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached by the auth middleware.
type Identity struct {
	UserID int64
	Email  string
	Roles  role.Set
}

// WithIdentity attaches the caller identity to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the caller identity, if present.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
