package service

import (
	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/repository"
)

// roleTransitions is the order lifecycle state machine: for each current
// status, the set of next statuses each role may request. A missing role
// entry means the role may do nothing in that state. DELIVERED and
// CANCELED have no entries at all; they are terminal for every role.
var roleTransitions = map[repository.OrderStatus]map[role.Role][]repository.OrderStatus{
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

// PermittedTransitions returns the statuses r may move an order in from to.
// The returned slice is a copy.
func PermittedTransitions(from repository.OrderStatus, r role.Role) []repository.OrderStatus {
	byRole, ok := roleTransitions[from]
	if !ok {
		return nil
	}
	allowed, ok := byRole[r]
	if !ok {
		return nil
	}
	out := make([]repository.OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransition reports whether r may move an order from from to to.
func CanTransition(from, to repository.OrderStatus, r role.Role) bool {
	for _, allowed := range PermittedTransitions(from, r) {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no role has any outgoing transition from s.
func IsTerminal(s repository.OrderStatus) bool {
	return len(roleTransitions[s]) == 0
}
