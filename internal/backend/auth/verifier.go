package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/config"
)

const defaultVerifyTimeout = 5 * time.Second

// adminClient is the slice of the Firebase Admin SDK auth surface the
// verifier uses, narrowed so tests can stub it.
type adminClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
	GetUser(ctx context.Context, uid string) (*firebaseauth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}

// Verifier wraps the Firebase Admin SDK for session verification, sign-out
// revocation, and admin claim management.
type Verifier struct {
	client  adminClient
	timeout time.Duration
}

// VerifierOption customises Verifier instances.
type VerifierOption func(*Verifier)

// WithVerifyTimeout overrides the timeout used for Admin SDK calls.
func WithVerifyTimeout(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithAdminClient injects a preconfigured Admin SDK client (primarily for tests).
func WithAdminClient(client adminClient) VerifierOption {
	return func(v *Verifier) {
		if client != nil {
			v.client = client
		}
	}
}

// NewVerifier constructs a Verifier backed by the Admin SDK.
func NewVerifier(ctx context.Context, cfg config.FirebaseConfig, opts ...VerifierOption) (*Verifier, error) {
	verifier := &Verifier{timeout: defaultVerifyTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(verifier)
		}
	}

	if verifier.client == nil {
		if cfg.ProjectID == "" {
			return nil, errors.New("firebase project id is required")
		}

		var clientOpts []option.ClientOption
		if cfg.CredentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
		}

		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("initialise firebase app: %w", err)
		}

		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialise firebase auth client: %w", err)
		}
		verifier.client = authClient
	}

	return verifier, nil
}

// VerifySession validates the bearer token and returns the authenticated
// identity along with any custom claims minted on the account.
func (v *Verifier) VerifySession(ctx context.Context, idToken string) (domain.User, map[string]interface{}, error) {
	if v == nil || v.client == nil {
		return domain.User{}, nil, errors.New("verifier not initialised")
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return domain.User{}, nil, ErrTokenInvalid
	}

	ctx, cancel := v.contextWithTimeout(ctx)
	if cancel != nil {
		defer cancel()
	}

	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.User{}, nil, err
		}
		return domain.User{}, nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	user := domain.User{ID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		user.DisplayName = name
	}
	return user, token.Claims, nil
}

// RevokeSessions invalidates every refresh token minted for the user. Issued
// ID tokens expire naturally within the hour.
func (v *Verifier) RevokeSessions(ctx context.Context, uid string) error {
	if v == nil || v.client == nil {
		return errors.New("verifier not initialised")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return errors.New("auth backend: uid is required")
	}

	ctx, cancel := v.contextWithTimeout(ctx)
	if cancel != nil {
		defer cancel()
	}
	return v.client.RevokeRefreshTokens(ctx, uid)
}

// GrantAdminClaim marks the account with the admin custom claim. The claim
// appears on tokens minted after the next refresh.
func (v *Verifier) GrantAdminClaim(ctx context.Context, uid string) error {
	if v == nil || v.client == nil {
		return errors.New("verifier not initialised")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return errors.New("auth backend: uid is required")
	}

	ctx, cancel := v.contextWithTimeout(ctx)
	if cancel != nil {
		defer cancel()
	}

	record, err := v.client.GetUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("auth backend: load user %s: %w", uid, err)
	}

	claims := map[string]interface{}{}
	for k, val := range record.CustomClaims {
		claims[k] = val
	}
	claims["admin"] = true
	return v.client.SetCustomUserClaims(ctx, uid, claims)
}

func (v *Verifier) contextWithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if v == nil || v.timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, v.timeout)
}
