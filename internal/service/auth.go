// Package service holds the authentication and directory business logic.
//
// AuthService is the business logic layer for registration and login. It sits
// between the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
//	                   ↘ TokenService (JWT)
//
// Every error it returns is an *apperror.AppError: the classified ones carry
// the message the client sees, and anything unexpected is wrapped by
// apperror.Internal so the cause reaches the logs but not the response.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/metrics"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/repository"
)

// Client-facing messages.
const (
	MsgFieldsRequired    = "All fields are required"
	MsgEmailRegistered   = repository.DuplicateEmailMessage
	MsgEmailNotFound     = "Email is not registered"
	MsgPasswordIncorrect = "Password is incorrect"
	MsgPasswordTooLong   = "Password must be 72 bytes or fewer"
)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → mint access tokens
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - metrics    *metrics.Metrics           → outcome counters (may be nil)
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		metrics:   m,
		logger:    logger,
	}
}

// RegisterInput is the registration request. Values are used exactly as
// given; validation only rejects blank fields.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate requires every field to be present and not blank.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.By(notBlank)),
		validation.Field(&in.Email, validation.By(notBlank)),
		validation.Field(&in.Password, validation.By(notBlank)),
	)
}

// LoginInput is the login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate requires both fields to be present and not blank.
func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.By(notBlank)),
		validation.Field(&in.Password, validation.By(notBlank)),
	)
}

// RegisterResult is returned by a successful registration.
type RegisterResult struct {
	User        *model.User
	AccessToken string
}

// LoginResult is returned by a successful login. It deliberately carries
// only the token: login does not echo the profile back.
type LoginResult struct {
	AccessToken string
}

// Register creates a new account and issues its first access token.
//
// FLOW:
//  1. Validate that name, email and password are not blank
//  2. Reject an email that is already registered
//  3. Hash the password
//  4. Insert the record (the store's unique index is the real guard)
//  5. Issue an access token for the new id + email
//
// The lookup in step 2 only produces the friendly error early. Two
// concurrent registrations can both pass it; the unique constraint in
// step 4 then lets exactly one of them win and the other gets the same
// Conflict error.
//
// If insert succeeds but token issuance fails, the account exists and the
// caller simply has to log in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := in.Validate(); err != nil {
		s.metrics.RecordRegistration(metrics.OutcomeInvalid)
		return nil, validationError(err)
	}

	_, found, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return nil, apperror.Internal(err)
	}
	if found {
		s.metrics.RecordRegistration(metrics.OutcomeConflict)
		return nil, apperror.Conflict(MsgEmailRegistered)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			s.metrics.RecordRegistration(metrics.OutcomeInvalid)
			return nil, apperror.ValidationFailed("password", MsgPasswordTooLong)
		}
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return nil, apperror.Internal(err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.metrics.RecordRegistration(metrics.OutcomeConflict)
			return nil, apperror.Conflict(MsgEmailRegistered)
		}
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return nil, apperror.Internal(err)
	}

	token, err := s.tokens.Issue(auth.Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return nil, apperror.Internal(err)
	}

	s.metrics.RecordRegistration(metrics.OutcomeSuccess)
	s.logger.Info("user registered", slog.String("userID", user.ID))

	return &RegisterResult{User: user, AccessToken: token}, nil
}

// Login verifies credentials and issues an access token.
//
// Unknown email and wrong password produce different errors (404 vs 401).
// That tells a caller whether an address has an account; clients rely on
// the distinction, so it is kept.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := in.Validate(); err != nil {
		s.metrics.RecordLogin(metrics.OutcomeInvalid)
		return nil, validationError(err)
	}

	user, found, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeError)
		return nil, apperror.Internal(err)
	}
	if !found {
		s.metrics.RecordLogin(metrics.OutcomeNotFound)
		return nil, apperror.NotFound(MsgEmailNotFound)
	}

	if !s.passwords.Verify(in.Password, user.PasswordHash) {
		s.metrics.RecordLogin(metrics.OutcomeUnauthorized)
		return nil, apperror.Unauthorized(MsgPasswordIncorrect)
	}

	token, err := s.tokens.Issue(auth.Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeError)
		return nil, apperror.Internal(err)
	}

	s.metrics.RecordLogin(metrics.OutcomeSuccess)
	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &LoginResult{AccessToken: token}, nil
}

// notBlank is an ozzo rule: the string must contain a non-space character.
// validation.Required alone accepts "   ".
func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// validationError converts ozzo's per-field errors into the single message
// clients get, keeping the offending field names for logs.
func validationError(err error) error {
	var fields []string
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for f := range verrs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
	}
	return apperror.ValidationFailed(strings.Join(fields, ","), MsgFieldsRequired)
}
