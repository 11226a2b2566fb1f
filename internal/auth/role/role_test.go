package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	r, err := Parse(" livreur ")
	require.NoError(t, err)
	assert.Equal(t, Livreur, r)

	_, err = Parse("SUPERUSER")
	assert.Error(t, err)
}

func TestSetOrderAndUniqueness(t *testing.T) {
	s := NewSet(Client, Restaurateur, Client)
	assert.Equal(t, Set{Client, Restaurateur}, s)
	assert.Equal(t, Client, s.Primary())

	s = s.Remove(Client)
	assert.Equal(t, Restaurateur, s.Primary())
	assert.False(t, s.Has(Client))
}

func TestHasAny(t *testing.T) {
	tests := []struct {
		name     string
		required Set
		held     Set
		want     bool
	}{
		{"public operation", nil, nil, true},
		{"public with caller", nil, NewSet(Client), true},
		{"single match", NewSet(Admin), NewSet(Client, Admin), true},
		{"any-of semantics", NewSet(Restaurateur, Admin), NewSet(Restaurateur), true},
		{"no match", NewSet(Admin), NewSet(Client, Livreur), false},
		{"unauthenticated", NewSet(Client), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAny(tt.required, tt.held))
		})
	}
}
