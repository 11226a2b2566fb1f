package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(Options{
		SigningKey: []byte("test-signing-key"),
		Issuer:     "popeat",
		Audience:   "popeat-api",
		TTL:        ttl,
	})
	require.NoError(t, err)
	return m
}

func TestIssueParseRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)

	signed, issued, err := m.Issue("42", "client@example.com", []string{"CLIENT", "LIVREUR"})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	parsed, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "42", parsed.Subject)
	assert.Equal(t, "client@example.com", parsed.Email)
	assert.Equal(t, []string{"CLIENT", "LIVREUR"}, parsed.Roles)
	assert.Equal(t, issued.ID, parsed.ID)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	m := newTestManager(t, time.Hour)
	other := newTestManager(t, time.Hour)
	other.secret = []byte("different-key")

	signed, _, err := other.Issue("42", "", nil)
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := newTestManager(t, time.Nanosecond)

	signed, _, err := m.Issue("42", "", nil)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewManagerRequiresKey(t *testing.T) {
	_, err := NewManager(Options{})
	assert.Error(t, err)
}
