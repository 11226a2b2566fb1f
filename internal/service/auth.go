package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/auth/token"
	"github.com/popeat/popeat/internal/repository"
	"github.com/popeat/popeat/internal/security"
	"github.com/popeat/popeat/internal/support/hash"
)

// AuthService handles registration, login and token verification.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// RegisterInput is the payload for account creation. Role defaults to
// CLIENT; ADMIN can never be self-assigned.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
	IP       string
}

// LoginInput is the payload for credential login.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// AuthResult carries the issued token and an account snapshot.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
}

// Claims is the authenticated caller payload extracted from a token.
type Claims struct {
	UserID int64
	Email  string
	Roles  role.Set
}

const (
	loginLimit  = 10
	loginWindow = time.Minute
	minPassword = 8
)

type authService struct {
	users    repository.UserRepository
	hasher   hash.Hasher
	tokenMgr *token.Manager
	rate     *security.RateLimiter
	audit    security.Recorder
	now      func() time.Time
}

// NewAuthService wires repositories and auth infrastructure.
func NewAuthService(users repository.UserRepository, hasher hash.Hasher, tokenMgr *token.Manager, rate *security.RateLimiter, audit security.Recorder) AuthService {
	return &authService{
		users:    users,
		hasher:   hasher,
		tokenMgr: tokenMgr,
		rate:     rate,
		audit:    audit,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &ValidationError{Field: "email", Reason: "malformed address"}
	}
	if len(input.Password) < minPassword {
		return nil, &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPassword)}
	}

	requested := role.Client
	if raw := strings.TrimSpace(input.Role); raw != "" {
		parsed, err := role.Parse(raw)
		if err != nil || parsed == role.Admin {
			return nil, &ValidationError{Field: "role", Reason: "must be one of CLIENT, RESTAURATEUR, LIVREUR"}
		}
		requested = parsed
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC().Unix()
	user, err := s.users.Create(ctx, &repository.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hashed,
		Roles:        role.NewSet(requested),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.recordAudit(ctx, "auth.registered", user.ID, input.IP, map[string]any{"role": string(requested)})
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if s.rate != nil {
		res, err := s.rate.Allow(ctx, "login:"+email, loginLimit, loginWindow)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			s.recordAudit(ctx, "auth.login.rate_limited", 0, input.IP, map[string]any{"email": email})
			return nil, ErrRateLimited
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordAudit(ctx, "auth.login.failed", 0, input.IP, map[string]any{"email": email, "reason": "unknown account"})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, hash.ErrPasswordMismatch) {
			s.recordAudit(ctx, "auth.login.failed", user.ID, input.IP, map[string]any{"reason": "bad password"})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if s.rate != nil {
		s.rate.Reset(ctx, "login:"+email)
	}
	s.recordAudit(ctx, "auth.login.succeeded", user.ID, input.IP, nil)
	return s.issue(user)
}

func (s *authService) Verify(_ context.Context, rawToken string) (*Claims, error) {
	claims, err := s.tokenMgr.Parse(strings.TrimSpace(rawToken))
	if err != nil {
		return nil, err
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, token.ErrInvalidToken
	}
	roles, err := role.ParseSet(claims.Roles)
	if err != nil {
		return nil, token.ErrInvalidToken
	}
	return &Claims{UserID: userID, Email: claims.Email, Roles: roles}, nil
}

func (s *authService) issue(user *repository.User) (*AuthResult, error) {
	signed, claims, err := s.tokenMgr.Issue(strconv.FormatInt(user.ID, 10), user.Email, user.Roles.Strings())
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Roles:     user.Roles.Strings(),
	}, nil
}

func (s *authService) recordAudit(ctx context.Context, kind string, userID int64, ip string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	actor := ""
	if userID != 0 {
		actor = strconv.FormatInt(userID, 10)
	}
	s.audit.Record(ctx, security.Event{
		Kind:     kind,
		ActorID:  actor,
		IP:       ip,
		Metadata: metadata,
		Occurred: s.now().UTC(),
	})
}
