package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lumen-gear/storefront/internal/domain"
)

const (
	defaultIdentityEndpoint = "https://identitytoolkit.googleapis.com/v1"
	defaultRequestTimeout   = 10 * time.Second
)

// Session is an authenticated backend session as minted by the Identity
// Toolkit. IDToken is the bearer credential presented on subsequent requests.
type Session struct {
	User         domain.User
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// IdentityClient talks to the Identity Toolkit REST API for password flows
// the Admin SDK does not expose.
type IdentityClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// IdentityOption customises IdentityClient construction.
type IdentityOption func(*IdentityClient)

// WithHTTPClient overrides the HTTP client used for REST calls.
func WithHTTPClient(client *http.Client) IdentityOption {
	return func(c *IdentityClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithEndpoint overrides the Identity Toolkit base URL (primarily for tests
// and the auth emulator).
func WithEndpoint(endpoint string) IdentityOption {
	return func(c *IdentityClient) {
		if trimmed := strings.TrimRight(strings.TrimSpace(endpoint), "/"); trimmed != "" {
			c.endpoint = trimmed
		}
	}
}

// NewIdentityClient constructs a REST client for the given web API key.
func NewIdentityClient(apiKey string, opts ...IdentityOption) (*IdentityClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("identity client requires an api key")
	}

	client := &IdentityClient{
		apiKey:     apiKey,
		endpoint:   defaultIdentityEndpoint,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type identityTokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type identityErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword exchanges an email/password pair for a session.
func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var resp identityTokenResponse
	if err := c.post(ctx, "accounts:signInWithPassword", payload, &resp); err != nil {
		return Session{}, err
	}
	return sessionFromToken(resp), nil
}

// SignUp creates a new account and applies the display name in the same
// round trip sequence the sign-up form performs.
func (c *IdentityClient) SignUp(ctx context.Context, email, password, displayName string) (Session, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var resp identityTokenResponse
	if err := c.post(ctx, "accounts:signUp", payload, &resp); err != nil {
		return Session{}, err
	}

	session := sessionFromToken(resp)
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return session, nil
	}

	update := map[string]any{
		"idToken":           session.IDToken,
		"displayName":       displayName,
		"returnSecureToken": true,
	}
	var updated identityTokenResponse
	if err := c.post(ctx, "accounts:update", update, &updated); err != nil {
		return Session{}, err
	}

	merged := sessionFromToken(updated)
	if merged.IDToken == "" {
		merged.IDToken = session.IDToken
	}
	if merged.RefreshToken == "" {
		merged.RefreshToken = session.RefreshToken
	}
	if merged.User.ID == "" {
		merged.User.ID = session.User.ID
	}
	if merged.User.Email == "" {
		merged.User.Email = session.User.Email
	}
	merged.User.DisplayName = displayName
	return merged, nil
}

// SendPasswordReset dispatches the password reset email. The continue URL
// brings the user back to the reset form after the link is opened.
func (c *IdentityClient) SendPasswordReset(ctx context.Context, email, continueURL string) error {
	payload := map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}
	if trimmed := strings.TrimSpace(continueURL); trimmed != "" {
		payload["continueUrl"] = trimmed
	}
	return c.post(ctx, "accounts:sendOobCode", payload, &struct{}{})
}

// UpdatePassword sets a new password for the session's account.
func (c *IdentityClient) UpdatePassword(ctx context.Context, idToken, newPassword string) (Session, error) {
	payload := map[string]any{
		"idToken":           idToken,
		"password":          newPassword,
		"returnSecureToken": true,
	}

	var resp identityTokenResponse
	if err := c.post(ctx, "accounts:update", payload, &resp); err != nil {
		return Session{}, err
	}
	return sessionFromToken(resp), nil
}

func (c *IdentityClient) post(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("auth backend: encode %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.endpoint, method, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("auth backend: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ErrUnavailable, method, err)
	}

	if resp.StatusCode >= 400 {
		return mapIdentityError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("auth backend: decode %s response: %w", method, err)
	}
	return nil
}

func mapIdentityError(status int, body []byte) error {
	var parsed identityErrorResponse
	_ = json.Unmarshal(body, &parsed)
	code := strings.TrimSpace(parsed.Error.Message)

	// Error reasons carry suffixes like "WEAK_PASSWORD : ...".
	if idx := strings.IndexAny(code, " :"); idx > 0 {
		code = code[:idx]
	}

	switch code {
	case "EMAIL_NOT_FOUND":
		return ErrUserNotFound
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "MISSING_PASSWORD":
		return ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return ErrEmailAlreadyInUse
	case "WEAK_PASSWORD", "PASSWORD_LOGIN_DISABLED":
		return ErrWeakPassword
	case "USER_DISABLED":
		return ErrUserDisabled
	case "INVALID_ID_TOKEN", "TOKEN_EXPIRED", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		return ErrTokenInvalid
	}

	if status >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}
	return fmt.Errorf("auth backend: request rejected (%d): %s", status, code)
}

func sessionFromToken(resp identityTokenResponse) Session {
	session := Session{
		User: domain.User{
			ID:          resp.LocalID,
			Email:       resp.Email,
			DisplayName: resp.DisplayName,
		},
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
	}
	if seconds, err := strconv.Atoi(strings.TrimSpace(resp.ExpiresIn)); err == nil && seconds > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(seconds) * time.Second)
	}
	return session
}
