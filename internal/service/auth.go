// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pulsedash/pulsedash/internal/auth"
	"github.com/pulsedash/pulsedash/internal/metrics"
	"github.com/pulsedash/pulsedash/internal/model"
	"github.com/pulsedash/pulsedash/internal/repository"
)

// Service errors.
var (
	ErrValidation         = errors.New("all fields are required")
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", auth.MaxPasswordBytes)
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInternal           = errors.New("internal error")
)

// CredentialStore persists user credentials.
// Both the PostgreSQL repository and the Redis store satisfy it.
type CredentialStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthResult is returned by a successful Register or Login.
type AuthResult struct {
	Token  string
	UserID string
	User   model.UserView
}

// AuthService handles registration and login.
type AuthService struct {
	store   CredentialStore
	tokens  *auth.TokenIssuer
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(store CredentialStore, tokens *auth.TokenIssuer, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		tokens:  tokens,
		metrics: recorder,
		now:     time.Now,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a credential record and returns a fresh session token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if isBlank(input.Name) || isBlank(input.Email) || isBlank(input.Password) {
		s.metrics.IncRegistration(metrics.StatusInvalid)
		return nil, ErrValidation
	}

	hash, err := auth.HashPassword(input.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		s.metrics.IncRegistration(metrics.StatusInvalid)
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		s.metrics.IncRegistration(metrics.StatusError)
		return nil, fmt.Errorf("%w: hash password: %v", ErrInternal, err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncRegistration(metrics.StatusConflict)
			return nil, ErrDuplicateUser
		}
		s.metrics.IncRegistration(metrics.StatusError)
		return nil, fmt.Errorf("%w: create user: %w", ErrInternal, err)
	}

	result, err := s.issue(user)
	if err != nil {
		s.metrics.IncRegistration(metrics.StatusError)
		return nil, err
	}

	s.metrics.IncRegistration(metrics.StatusSuccess)
	return result, nil
}

// Login verifies credentials and returns a fresh session token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if isBlank(email) || isBlank(password) {
		s.metrics.IncLogin(metrics.StatusInvalid)
		return nil, ErrValidation
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin(metrics.StatusInvalid)
			return nil, ErrInvalidCredentials
		}
		s.metrics.IncLogin(metrics.StatusError)
		return nil, fmt.Errorf("%w: get user: %w", ErrInternal, err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.metrics.IncLogin(metrics.StatusError)
		return nil, fmt.Errorf("%w: verify password: %w", ErrInternal, err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.StatusInvalid)
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		s.metrics.IncLogin(metrics.StatusError)
		return nil, err
	}

	s.metrics.IncLogin(metrics.StatusSuccess)
	return result, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %w", ErrInternal, err)
	}
	return &AuthResult{
		Token:  token,
		UserID: user.ID,
		User:   user.View(),
	}, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
