package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/prediction-league/internal/domain/account"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/session"
)

// SessionStore is the slice of the session layer the auth flows need.
type SessionStore interface {
	Set(sess session.Session) error
	Clear() error
	Current() (session.Session, bool)
	IsAuthenticated() bool
	UpdateProfile(profile account.Profile) error
}

type registerInput struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=8"`
	Password1 string `validate:"required,eqfield=Password"`
}

type passwordChangeInput struct {
	OldPassword  string `validate:"required"`
	NewPassword  string `validate:"required,min=8"`
	NewPassword1 string `validate:"required,eqfield=NewPassword"`
}

// AuthService owns registration, login, logout, and the password flows.
// It is also the session guard: pages that need a login ask RequireAuth.
type AuthService struct {
	gateway  AccountGateway
	sessions SessionStore
	validate *validator.Validate
	logger   *logging.Logger
}

func NewAuthService(gateway AccountGateway, sessions SessionStore, logger *logging.Logger) (*AuthService, error) {
	if gateway == nil {
		return nil, fmt.Errorf("account gateway is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &AuthService{
		gateway:  gateway,
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}, nil
}

// Register creates an account; the user must activate it via email before
// logging in.
func (s *AuthService) Register(ctx context.Context, email, password, password1 string) error {
	ctx, span := startUsecaseSpan(ctx, "auth.register")
	defer span.End()

	input := registerInput{Email: strings.TrimSpace(email), Password: password, Password1: password1}
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}
	return s.gateway.Register(ctx, input.Email, input.Password, input.Password1)
}

// Login exchanges credentials for tokens and stores the session, enriched
// with the profile snapshot when the profile endpoint answers.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	ctx, span := startUsecaseSpan(ctx, "auth.login")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	tokens, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return err
	}

	sess := session.Session{Tokens: tokens, Profile: account.Profile{Email: email}}
	if err := s.sessions.Set(sess); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	// Profile hydration is best effort; login already succeeded.
	profile, err := s.gateway.FetchProfile(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "profile hydration after login failed", "error", err)
		return nil
	}
	if err := s.sessions.UpdateProfile(profile); err != nil {
		s.logger.WarnContext(ctx, "persist hydrated profile failed", "error", err)
	}
	return nil
}

// Logout always clears the local session. The server-side token revocation is
// attempted first, but its failure only gets logged; a user pressing logout
// ends up logged out no matter what the backend says.
func (s *AuthService) Logout(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "auth.logout")
	defer span.End()

	if err := s.gateway.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "server-side logout failed, clearing local session anyway", "error", err)
	}
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// RequireAuth is the guard for authenticated pages.
func (s *AuthService) RequireAuth() error {
	if !s.sessions.IsAuthenticated() {
		return fmt.Errorf("%w: please log in first", ErrUnauthorized)
	}
	return nil
}

// CurrentSession exposes the active session for display purposes.
func (s *AuthService) CurrentSession() (session.Session, bool) {
	return s.sessions.Current()
}

// Activate redeems an account activation token.
func (s *AuthService) Activate(ctx context.Context, token string) error {
	ctx, span := startUsecaseSpan(ctx, "auth.activate")
	defer span.End()

	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: activation token is required", ErrInvalidInput)
	}
	return s.gateway.ActivateAccount(ctx, token)
}

// ResendActivation requests a fresh activation email.
func (s *AuthService) ResendActivation(ctx context.Context, email string) error {
	ctx, span := startUsecaseSpan(ctx, "auth.resend_activation")
	defer span.End()

	if err := s.validate.Var(strings.TrimSpace(email), "required,email"); err != nil {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	return s.gateway.ResendActivation(ctx, strings.TrimSpace(email))
}

// RequestPasswordReset starts the forgot-password flow.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := startUsecaseSpan(ctx, "auth.request_password_reset")
	defer span.End()

	if err := s.validate.Var(strings.TrimSpace(email), "required,email"); err != nil {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	return s.gateway.RequestPasswordReset(ctx, strings.TrimSpace(email))
}

// ConfirmPasswordReset finishes the forgot-password flow.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword, newPassword1 string) error {
	ctx, span := startUsecaseSpan(ctx, "auth.confirm_password_reset")
	defer span.End()

	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: reset token is required", ErrInvalidInput)
	}
	if newPassword != newPassword1 {
		return fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	return s.gateway.ConfirmPasswordReset(ctx, token, newPassword, newPassword1)
}

// ChangePassword rotates the logged-in user's password.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword, newPassword1 string) error {
	ctx, span := startUsecaseSpan(ctx, "auth.change_password")
	defer span.End()

	if err := s.RequireAuth(); err != nil {
		return err
	}
	input := passwordChangeInput{OldPassword: oldPassword, NewPassword: newPassword, NewPassword1: newPassword1}
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}
	return s.gateway.ChangePassword(ctx, oldPassword, newPassword, newPassword1)
}

func describeValidation(err error) string {
	invalid, ok := err.(validator.ValidationErrors)
	if !ok || len(invalid) == 0 {
		return "invalid input"
	}

	parts := make([]string, 0, len(invalid))
	for _, fieldErr := range invalid {
		switch fieldErr.Tag() {
		case "email":
			parts = append(parts, "a valid email is required")
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s characters", strings.ToLower(fieldErr.Field()), fieldErr.Param()))
		case "eqfield":
			parts = append(parts, "passwords do not match")
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", strings.ToLower(fieldErr.Field())))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", strings.ToLower(fieldErr.Field())))
		}
	}
	return strings.Join(parts, "; ")
}
