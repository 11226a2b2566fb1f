package service

import (
	"testing"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/repository"
	"github.com/stretchr/testify/assert"
)

// expectedTransitions mirrors the product rules: current status → role →
// permitted next statuses. Pairs absent here must permit nothing.
var expectedTransitions = map[repository.OrderStatus]map[role.Role][]repository.OrderStatus{
	repository.StatusPending: {
		role.Client:       {repository.StatusCanceled},
		role.Restaurateur: {repository.StatusAccepted, repository.StatusCanceled},
		role.Admin:        {repository.StatusAccepted, repository.StatusCanceled},
	},
	repository.StatusAccepted: {
		role.Restaurateur: {repository.StatusInProgress, repository.StatusCanceled},
		role.Admin:        {repository.StatusInProgress, repository.StatusCanceled},
	},
	repository.StatusInProgress: {
		role.Restaurateur: {repository.StatusReady},
		role.Admin:        {repository.StatusReady},
	},
	repository.StatusReady: {
		role.Livreur: {repository.StatusDelivered},
		role.Admin:   {repository.StatusDelivered},
	},
}

func TestTransitionTableCompleteness(t *testing.T) {
	for _, from := range repository.OrderStatuses {
		for _, r := range role.All {
			expected := expectedTransitions[from][r]
			for _, to := range repository.OrderStatuses {
				want := false
				for _, allowed := range expected {
					if allowed == to {
						want = true
					}
				}
				assert.Equalf(t, want, CanTransition(from, to, r),
					"%s: %s -> %s", r, from, to)
			}
		}
	}
}

func TestTerminalStatesPermitNothing(t *testing.T) {
	for _, terminal := range []repository.OrderStatus{repository.StatusDelivered, repository.StatusCanceled} {
		assert.True(t, IsTerminal(terminal))
		for _, r := range role.All {
			assert.Emptyf(t, PermittedTransitions(terminal, r), "%s from %s", r, terminal)
		}
	}
	assert.False(t, IsTerminal(repository.StatusPending))
}

func TestLivreurOnlyDelivers(t *testing.T) {
	for _, from := range repository.OrderStatuses {
		for _, to := range repository.OrderStatuses {
			if from == repository.StatusReady && to == repository.StatusDelivered {
				continue
			}
			assert.Falsef(t, CanTransition(from, to, role.Livreur), "%s -> %s", from, to)
		}
	}
	assert.True(t, CanTransition(repository.StatusReady, repository.StatusDelivered, role.Livreur))
}

func TestClientOnlyCancelsPending(t *testing.T) {
	for _, from := range repository.OrderStatuses {
		for _, to := range repository.OrderStatuses {
			if from == repository.StatusPending && to == repository.StatusCanceled {
				continue
			}
			assert.Falsef(t, CanTransition(from, to, role.Client), "%s -> %s", from, to)
		}
	}
	assert.True(t, CanTransition(repository.StatusPending, repository.StatusCanceled, role.Client))
}
