// Package auth issues bearer tokens and verifies them on every API request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/users"
)

// ErrRegistrationDisabled is returned when self registration is switched off.
var ErrRegistrationDisabled = &shared.Error{Kind: shared.ErrForbidden, Message: "Registration is disabled"}

// UserStore is the subset of the users service auth depends on.
type UserStore interface {
	Get(ctx context.Context, id int64) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	Create(ctx context.Context, req users.CreateUserRequest) (*users.User, error)
}

// PermissionLister lists "resource.action" grants for a role.
type PermissionLister interface {
	Granted(ctx context.Context, role string) ([]string, error)
}

// Options configures the auth service.
type Options struct {
	RegistrationEnabled bool
	RegistrationRole    string
}

// Service wraps authentication business rules.
type Service struct {
	users       UserStore
	permissions PermissionLister
	tokens      *TokenIssuer
	revocations *RevocationStore
	opts        Options
	logger      *slog.Logger
	dummyHash   []byte
}

// NewService constructs a new Service.
func NewService(usersStore UserStore, permissions PermissionLister, tokens *TokenIssuer, revocations *RevocationStore, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("odyssey-ats-timing"), bcrypt.MinCost)
	return &Service{
		users:       usersStore,
		permissions: permissions,
		tokens:      tokens,
		revocations: revocations,
		opts:        opts,
		logger:      logger,
		dummyHash:   dummy,
	}
}

// Session is returned by login and register.
type Session struct {
	User        *users.User `json:"user"`
	Permissions []string    `json:"permissions"`
	Token       string      `json:"token"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a token. A user whose role cannot be resolved
// is refused rather than granted any default access.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, shared.Invalid("Email and password are required")
	}
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// RegisterRequest is the body of the register action.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account with the configured registration role.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if !s.opts.RegistrationEnabled {
		return nil, ErrRegistrationDisabled
	}
	user, err := s.users.Create(ctx, users.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     s.opts.RegistrationRole,
	})
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *Service) issue(ctx context.Context, user *users.User) (*Session, error) {
	perms, err := s.permissions.Granted(ctx, user.Role)
	if err != nil {
		return nil, err
	}
	token, claims, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Permissions: perms, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks a bearer token and reloads its user. Revoked tokens and
// deleted or deactivated users are rejected.
func (s *Service) Verify(ctx context.Context, token string) (*shared.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return &shared.Principal{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		TeamID:    user.TeamID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the principal's token.
func (s *Service) Logout(ctx context.Context, p *shared.Principal) error {
	if p == nil || p.TokenID == "" {
		return shared.ErrUnauthorized
	}
	return s.revocations.Revoke(ctx, p.TokenID, p.ExpiresAt)
}

// Me returns the principal's user and permissions.
func (s *Service) Me(ctx context.Context, p *shared.Principal) (*Session, error) {
	if p == nil {
		return nil, shared.ErrUnauthorized
	}
	user, err := s.users.Get(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	perms, err := s.permissions.Granted(ctx, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Permissions: perms, ExpiresAt: p.ExpiresAt}, nil
}
