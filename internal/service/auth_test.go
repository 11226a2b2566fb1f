package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/auth/token"
	"github.com/popeat/popeat/internal/cache"
	"github.com/popeat/popeat/internal/security"
	"github.com/popeat/popeat/internal/support/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	mgr := token.MustManager(token.Options{
		SigningKey: []byte("test-secret-please-rotate"),
		Issuer:     "popeat",
		TTL:        time.Hour,
	})
	limiter, err := security.NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)
	return NewAuthService(repo, hash.MustBcryptHasher(4), mgr, limiter, nil), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Email:    "Peach@Example.com",
		Name:     "Peach",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "peach@example.com", res.Email)
	assert.Equal(t, []string{"CLIENT"}, res.Roles)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.UserID, claims.UserID)
	assert.True(t, claims.Roles.Has(role.Client))

	logged, err := svc.Login(ctx, LoginInput{Email: "peach@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, res.UserID, logged.UserID)

	_, err = svc.Login(ctx, LoginInput{Email: "peach@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "longenough"})
	assert.True(t, IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.example", Password: "short"})
	assert.True(t, IsValidation(err))

	// ADMIN can never be self-assigned at registration.
	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.example", Password: "longenough", Role: "ADMIN"})
	assert.True(t, IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.example", Password: "longenough", Role: "livreur"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "A@b.example", Password: "longenough"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLoginRateLimited(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "bowser@example.com", Password: "longenough"})
	require.NoError(t, err)

	for i := 0; i < loginLimit; i++ {
		_, err = svc.Login(ctx, LoginInput{Email: "bowser@example.com", Password: fmt.Sprintf("bad-%d", i)})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = svc.Login(ctx, LoginInput{Email: "bowser@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Verify(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
