package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the in-memory cache shared by rate limiting and login-failure
// tracking.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (any, bool)
	Delete(ctx context.Context, key string)
	TTL(ctx context.Context, key string) (time.Duration, bool)
	Namespace(prefix string) Store

	// Increment adds delta to the stored integer, returning the new value.
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
}

// Options configure the in-memory cache.
type Options struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	Prefix          string
}

// NewStore builds a go-cache backed store with namespace support.
func NewStore(opts Options) Store {
	defaultTTL := opts.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = defaultTTL
	}
	return &goCacheStore{
		backend:    gocache.New(defaultTTL, cleanup),
		defaultTTL: defaultTTL,
		prefix:     normalizePrefix(opts.Prefix),
	}
}

type goCacheStore struct {
	backend    *gocache.Cache
	defaultTTL time.Duration
	prefix     string
}

func (s *goCacheStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	s.backend.Set(s.prefixed(key), value, s.normalizeTTL(ttl))
	return nil
}

func (s *goCacheStore) Get(_ context.Context, key string) (any, bool) {
	return s.backend.Get(s.prefixed(key))
}

func (s *goCacheStore) Delete(_ context.Context, key string) {
	s.backend.Delete(s.prefixed(key))
}

func (s *goCacheStore) TTL(_ context.Context, key string) (time.Duration, bool) {
	_, expires, ok := s.backend.GetWithExpiration(s.prefixed(key))
	if !ok {
		return 0, false
	}
	if expires.IsZero() {
		return 0, true
	}
	remaining := time.Until(expires)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func (s *goCacheStore) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	full := s.prefixed(key)
	if _, ok := s.backend.Get(full); !ok {
		s.backend.Set(full, delta, s.normalizeTTL(ttl))
		return delta, nil
	}
	value, err := s.backend.IncrementInt64(full, delta)
	if err != nil {
		return 0, fmt.Errorf("increment %q: %w", key, err)
	}
	return value, nil
}

func (s *goCacheStore) Namespace(prefix string) Store {
	combined := s.prefix + normalizePrefix(prefix)
	return &goCacheStore{backend: s.backend, defaultTTL: s.defaultTTL, prefix: combined}
}

func (s *goCacheStore) prefixed(key string) string {
	return s.prefix + key
}

func (s *goCacheStore) normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return s.defaultTTL
	}
	return ttl
}

func normalizePrefix(prefix string) string {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return ""
	}
	if !strings.HasSuffix(trimmed, ":") {
		trimmed += ":"
	}
	return trimmed
}
