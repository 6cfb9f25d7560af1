package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/userhubapp/userhub/internal/user"
	"github.com/userhubapp/userhub/pkg/logger"
	"github.com/userhubapp/userhub/pkg/sanitizer"
	"github.com/userhubapp/userhub/pkg/validator"
)

// Validation bounds for signup fields.
const (
	usernameMinLen = 4
	usernameMaxLen = 50
	passwordMinLen = 8
	passwordMaxLen = 128
)

// Storage defines the persistence operations the service requires.
// *user.Store satisfies it.
type Storage interface {
	Create(ctx context.Context, username, email, passwordHash string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id uuid.UUID, patch user.Patch) (*user.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

// Service orchestrates signup, sign-in, and user updates over Storage.
type Service struct {
	storage Storage
	hasher  *Hasher
	logger  *slog.Logger
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithServiceLogger sets a custom logger for the service.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates the auth service.
func NewService(storage Storage, hasher *Hasher, opts ...ServiceOption) *Service {
	s := &Service{
		storage: storage,
		hasher:  hasher,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// Register validates the signup fields, probes for existing accounts, hashes
// the password, and creates the user. Field-level failures come back as
// validator.ValidationErrors; the unique constraints settle any concurrent
// duplicate as user.ErrUsernameTaken / user.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	in.Username = sanitizer.NormalizeUsername(in.Username)
	in.Email = sanitizer.NormalizeEmail(in.Email)

	if err := validator.Apply(signupRules(in)...); err != nil {
		return nil, err
	}

	// Existence probes produce field errors friendlier than a constraint
	// violation. The insert below remains the source of truth for races.
	var fieldErrs validator.ValidationErrors
	if taken, err := s.storage.UsernameExists(ctx, in.Username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		fieldErrs = append(fieldErrs, validator.ValidationError{Field: "username", Message: "is already taken"})
	}
	if taken, err := s.storage.EmailExists(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if taken {
		fieldErrs = append(fieldErrs, validator.ValidationError{Field: "email", Message: "is already registered"})
	}
	if !fieldErrs.IsEmpty() {
		return nil, fieldErrs
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.storage.Create(ctx, in.Username, in.Email, hash)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(u.ID.String()),
		logger.Component("auth"),
	)

	return u, nil
}

// Authenticate verifies a username/password pair. Every failure mode returns
// ErrInvalidCredentials so the caller cannot tell an unknown username from a
// wrong password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	username = sanitizer.NormalizeUsername(username)

	if err := validator.Apply(
		validator.Required("username", username),
		validator.Required("password", password),
	); err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.storage.TouchLastLogin(ctx, u.ID); err != nil {
		// Sign-in still succeeds; the timestamp is informational.
		s.logger.ErrorContext(ctx, "failed to record last login",
			logger.UserID(u.ID.String()),
			logger.Error(err),
			logger.Component("auth"),
		)
	}

	return u, nil
}

// UpdateInput carries a partial user update. Nil fields are untouched.
type UpdateInput struct {
	Username *string
	Email    *string
	Password *string
}

// Update validates the present fields, re-hashes the password when it
// changes, and applies the patch.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*user.User, error) {
	var rules []validator.Rule
	patch := user.Patch{}

	if in.Username != nil {
		username := sanitizer.NormalizeUsername(*in.Username)
		rules = append(rules, validator.ValidUsername("username", username, usernameMinLen, usernameMaxLen))
		patch.Username = &username
	}
	if in.Email != nil {
		email := sanitizer.NormalizeEmail(*in.Email)
		rules = append(rules, validator.ValidEmail("email", email))
		patch.Email = &email
	}
	if in.Password != nil {
		rules = append(rules, passwordRules(*in.Password)...)
	}

	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	return s.storage.Update(ctx, id, patch)
}

func signupRules(in RegisterInput) []validator.Rule {
	rules := []validator.Rule{
		validator.Required("username", in.Username),
		validator.ValidUsername("username", in.Username, usernameMinLen, usernameMaxLen),
		validator.Required("email", in.Email),
		validator.ValidEmail("email", in.Email),
	}
	rules = append(rules, passwordRules(in.Password)...)
	rules = append(rules, validator.Equals("password2", in.PasswordConfirm, in.Password, "password"))
	return rules
}

func passwordRules(password string) []validator.Rule {
	return []validator.Rule{
		validator.MinLen("password", password, passwordMinLen),
		validator.MaxLen("password", password, passwordMaxLen),
		validator.ContainsUppercase("password", password),
		validator.ContainsLowercase("password", password),
		validator.ContainsDigit("password", password),
		validator.NoWhitespace("password", password),
	}
}
