// Package admins implements administrator account management: login with
// token issuance, token-gated registration, profile lookup, and password
// change. Passwords use bcrypt with cost 12; emails are case-folded before
// storage and lookup.
package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/buildercircle/server/internal/auth"
	"github.com/buildercircle/server/internal/domain/ids"
	"github.com/buildercircle/server/internal/sanitize"
)

var (
	// ErrNotFound is returned when an administrator lookup fails.
	ErrNotFound = errors.New("admin not found")

	// ErrEmailTaken is returned when registering with an email already present.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials is returned when email/password authentication
	// fails. Unknown email and wrong password are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidRole is returned when a registration names a role outside the
	// closed set.
	ErrInvalidRole = errors.New("invalid role")
)

type Service struct {
	repo      Repository
	tokens    *auth.Manager
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, tokens *auth.Manager, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		logger:    logger.With().Str("component", "admins").Logger(),
		validator: validator.New(),
	}
}

// Login authenticates an administrator and issues a bearer token. The
// last-login stamp is best-effort: a failure to record it never fails the
// login itself.
func (s *Service) Login(ctx context.Context, email, password string) (*Admin, string, error) {
	email = NormalizeEmail(email)

	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup admin: %w", err)
	}

	if !auth.CheckPassword(password, admin.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin.ID, admin.Email, admin.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	if err := s.repo.UpdateLastLogin(ctx, admin.ID); err != nil {
		s.logger.Warn().Err(err).Str("admin_id", admin.ID).Msg("failed to record last login")
	}

	s.logger.Info().Str("admin_id", admin.ID).Msg("admin logged in")
	return admin, token, nil
}

// Register creates a new administrator account. Callers must already hold a
// valid admin token; that gate lives in the middleware, not here.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Admin, error) {
	params.Email = NormalizeEmail(params.Email)
	if err := s.validator.Var(params.Email, "required,email"); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}

	if params.Role == "" {
		params.Role = RoleAdmin
	}
	if !ValidRole(params.Role) {
		return nil, ErrInvalidRole
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("mint id: %w", err)
	}

	admin := &Admin{
		ID:           id,
		Email:        params.Email,
		PasswordHash: hash,
		Name:         sanitize.Text(strings.TrimSpace(params.Name)),
		Role:         params.Role,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info().Str("admin_id", admin.ID).Str("role", admin.Role).Msg("admin registered")
	return admin, nil
}

// GetByID resolves an administrator account, typically for the auth
// middleware and the profile endpoint.
func (s *Service) GetByID(ctx context.Context, id string) (*Admin, error) {
	return s.repo.GetByID(ctx, id)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(current, admin.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info().Str("admin_id", id).Msg("admin password changed")
	return nil
}

// NormalizeEmail case-folds and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
