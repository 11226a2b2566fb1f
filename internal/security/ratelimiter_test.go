package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeat/popeat/internal/cache"
)

func TestRateLimiterWindow(t *testing.T) {
	limiter, err := NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3-(i+1), res.Remaining)
	}

	res, err := limiter.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)

	// Other keys are not affected.
	other, err := limiter.Allow(ctx, "login:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRateLimiterReset(t *testing.T) {
	limiter, err := NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := limiter.Allow(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
	}
	limiter.Reset(ctx, "k")

	res, err := limiter.Allow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimiterValidation(t *testing.T) {
	_, err := NewRateLimiter(nil)
	assert.Error(t, err)

	limiter, err := NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)
	_, err = limiter.Allow(context.Background(), "k", 0, time.Minute)
	assert.Error(t, err)
}
