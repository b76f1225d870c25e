package leagueapi

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/domain/account"
	"github.com/valyala/bytebufferpool"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password1 string `json:"password1"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordResetConfirmRequest struct {
	NewPassword  string `json:"new_password"`
	NewPassword1 string `json:"new_password1"`
}

type passwordChangeRequest struct {
	OldPassword  string `json:"old_password"`
	NewPassword  string `json:"new_password"`
	NewPassword1 string `json:"new_password1"`
}

type profilePayload struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Description string `json:"description"`
	ImageURL    string `json:"image"`
}

// Register creates a new account. The backend sends an activation email; the
// returned error carries field-level validation messages when rejected.
func (c *Client) Register(ctx context.Context, email, password, password1 string) error {
	payload := registerRequest{Email: strings.TrimSpace(email), Password: password, Password1: password1}
	if err := c.doSend(ctx, "POST", "/accounts/api/v1/register/", payload, nil); err != nil {
		return fmt.Errorf("register account: %w", err)
	}
	return nil
}

// Login exchanges credentials for a JWT pair.
func (c *Client) Login(ctx context.Context, email, password string) (account.TokenPair, error) {
	payload := loginRequest{Email: strings.TrimSpace(email), Password: password}
	var tokens account.TokenPair
	if err := c.doSend(ctx, "POST", "/accounts/api/v1/jwt/create/", payload, &tokens); err != nil {
		return account.TokenPair{}, fmt.Errorf("login: %w", err)
	}
	if strings.TrimSpace(tokens.Access) == "" {
		return account.TokenPair{}, fmt.Errorf("login: backend returned no access token")
	}
	return tokens, nil
}

// Logout invalidates the server-side token. Callers clear the local session
// regardless of the outcome here.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doSend(ctx, "POST", "/accounts/api/v1/token/logout/", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ActivateAccount redeems an activation token from the registration email.
func (c *Client) ActivateAccount(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("activation token is required")
	}
	path := fmt.Sprintf("/accounts/api/v1/activate/%s/", url.PathEscape(token))
	if err := c.doGET(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("activate account: %w", err)
	}
	return nil
}

// ResendActivation requests a fresh activation email.
func (c *Client) ResendActivation(ctx context.Context, email string) error {
	payload := map[string]string{"email": strings.TrimSpace(email)}
	if err := c.doSend(ctx, "POST", "/accounts/api/v1/resend-activation/", payload, nil); err != nil {
		return fmt.Errorf("resend activation: %w", err)
	}
	return nil
}

// RequestPasswordReset starts the forgot-password flow.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	payload := map[string]string{"email": strings.TrimSpace(email)}
	if err := c.doSend(ctx, "POST", "/accounts/api/v1/password-reset/", payload, nil); err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}
	return nil
}

// ConfirmPasswordReset completes the forgot-password flow with the emailed token.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword, newPassword1 string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("reset token is required")
	}
	path := fmt.Sprintf("/accounts/api/v1/password-reset/confirm/%s/", url.PathEscape(token))
	payload := passwordResetConfirmRequest{NewPassword: newPassword, NewPassword1: newPassword1}
	if err := c.doSend(ctx, "POST", path, payload, nil); err != nil {
		return fmt.Errorf("confirm password reset: %w", err)
	}
	return nil
}

// ChangePassword rotates the password of the logged-in user.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword, newPassword1 string) error {
	payload := passwordChangeRequest{OldPassword: oldPassword, NewPassword: newPassword, NewPassword1: newPassword1}
	if err := c.doSend(ctx, "PUT", "/accounts/api/v1/password-change/", payload, nil); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// FetchProfile returns the logged-in user's profile.
func (c *Client) FetchProfile(ctx context.Context) (account.Profile, error) {
	var payload profilePayload
	if err := c.doGET(ctx, "/accounts/api/v1/profile/", nil, &payload); err != nil {
		return account.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return mapProfile(payload), nil
}

// UpdateProfile sends only the changed fields as a multipart form, attaching
// the avatar file when an image path is set. The form body is assembled in a
// pooled buffer since avatar uploads can run to megabytes.
func (c *Client) UpdateProfile(ctx context.Context, update account.ProfileUpdate) (account.Profile, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	form := multipart.NewWriter(buf)
	fields := map[string]string{
		"first_name":  strings.TrimSpace(update.FirstName),
		"last_name":   strings.TrimSpace(update.LastName),
		"description": strings.TrimSpace(update.Description),
	}
	for _, key := range []string{"first_name", "last_name", "description"} {
		value := fields[key]
		if value == "" {
			continue
		}
		if err := form.WriteField(key, value); err != nil {
			return account.Profile{}, fmt.Errorf("write form field %s: %w", key, err)
		}
	}

	if imagePath := strings.TrimSpace(update.ImagePath); imagePath != "" {
		raw, err := os.ReadFile(imagePath)
		if err != nil {
			return account.Profile{}, fmt.Errorf("read avatar file: %w", err)
		}
		part, err := form.CreateFormFile("image", filepath.Base(imagePath))
		if err != nil {
			return account.Profile{}, fmt.Errorf("create avatar form part: %w", err)
		}
		if _, err := part.Write(raw); err != nil {
			return account.Profile{}, fmt.Errorf("write avatar form part: %w", err)
		}
	}

	if err := form.Close(); err != nil {
		return account.Profile{}, fmt.Errorf("finalize form body: %w", err)
	}

	body := append([]byte(nil), buf.Bytes()...)
	var payload profilePayload
	if err := c.executeMultipart(ctx, "PUT", "/accounts/api/v1/profile/", body, form.FormDataContentType(), &payload); err != nil {
		return account.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return mapProfile(payload), nil
}

func mapProfile(payload profilePayload) account.Profile {
	return account.Profile{
		Email:       strings.TrimSpace(payload.Email),
		FirstName:   strings.TrimSpace(payload.FirstName),
		LastName:    strings.TrimSpace(payload.LastName),
		Description: strings.TrimSpace(payload.Description),
		ImageURL:    strings.TrimSpace(payload.ImageURL),
	}
}
