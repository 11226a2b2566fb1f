package service

import (
	"errors"
	"fmt"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/repository"
)

var (
	// ErrForbidden indicates the caller lacks the role or the ownership
	// relationship the operation requires. Deliberately generic so no
	// resource ownership is leaked to the caller.
	ErrForbidden = errors.New("service: access denied")
	// ErrInvalidCredentials indicates login with a wrong email or password.
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	// ErrRateLimited indicates the caller exceeded allowed attempts.
	ErrRateLimited = errors.New("service: rate limited")
	// ErrEmailExists indicates the email is already registered.
	ErrEmailExists = errors.New("service: email already exists")
	// ErrStatusConflict indicates a concurrent transition won the
	// compare-and-swap on the order row.
	ErrStatusConflict = errors.New("service: order changed concurrently")
)

// NotFoundError reports a missing referenced entity by name and id.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("service: %s %v not found", e.Entity, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError reports malformed input with field-level detail.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("service: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvalidTransitionError reports a status change the transition table does
// not permit for the acting role.
type InvalidTransitionError struct {
	From repository.OrderStatus
	To   repository.OrderStatus
	Role role.Role
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("service: %s may not move order from %s to %s", e.Role, e.From, e.To)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var it *InvalidTransitionError
	return errors.As(err, &it)
}
