package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/repository"
)

// UserService exposes the administrative account operations.
type UserService interface {
	List(ctx context.Context, limit, offset int) ([]UserView, error)
	Get(ctx context.Context, id int64) (*UserView, error)
	GrantRole(ctx context.Context, id int64, r role.Role) (*UserView, error)
	// RevokeRole removes a role. A user keeps at least one role at all
	// times; revoking the last one is rejected. When the primary role is
	// revoked the next remaining role becomes primary.
	RevokeRole(ctx context.Context, id int64, r role.Role) (*UserView, error)
}

// UserView is the account shape returned to the admin surface.
type UserView struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	PrimaryRole string   `json:"primary_role"`
	CreatedAt   int64    `json:"created_at"`
}

type userService struct {
	users repository.UserRepository
	now   func() time.Time
}

// NewUserService wires the account repository.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users, now: time.Now}
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]UserView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	return views, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*UserView, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := newUserView(user)
	return &view, nil
}

func (s *userService) GrantRole(ctx context.Context, id int64, r role.Role) (*UserView, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := user.Roles.Add(r)
	if len(updated) != len(user.Roles) {
		if err := s.users.UpdateRoles(ctx, id, updated.Strings(), s.now().UTC().Unix()); err != nil {
			return nil, fmt.Errorf("update roles: %w", err)
		}
		user.Roles = updated
	}
	view := newUserView(user)
	return &view, nil
}

func (s *userService) RevokeRole(ctx context.Context, id int64, r role.Role) (*UserView, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Roles.Has(r) {
		return nil, &ValidationError{Field: "role", Reason: fmt.Sprintf("user does not hold %s", r)}
	}
	if len(user.Roles) == 1 {
		return nil, &ValidationError{Field: "role", Reason: "cannot remove the last role"}
	}
	updated := user.Roles.Remove(r)
	if err := s.users.UpdateRoles(ctx, id, updated.Strings(), s.now().UTC().Unix()); err != nil {
		return nil, fmt.Errorf("update roles: %w", err)
	}
	user.Roles = updated
	view := newUserView(user)
	return &view, nil
}

func (s *userService) load(ctx context.Context, id int64) (*repository.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "user", ID: id}
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func newUserView(u *repository.User) UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Roles:       u.Roles.Strings(),
		PrimaryRole: string(u.Roles.Primary()),
		CreatedAt:   u.CreatedAt,
	}
}
