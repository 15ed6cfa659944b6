package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/lumen-gear/storefront/internal/domain"
)

const (
	maxBodySize = 16 * 1024

	clientIDHeader = "X-Client-ID"
	bearerPrefix   = "Bearer "
)

var errBodyTooLarge = errors.New("request body too large")

type contextKey string

const identityContextKey contextKey = "storefront/identity"

// identityToContext stores the verified user on the request context.
func identityToContext(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, identityContextKey, user)
}

// identityFromContext returns the verified user for the request, if any.
func identityFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(identityContextKey).(domain.User)
	if !ok || strings.TrimSpace(user.ID) == "" {
		return domain.User{}, false
	}
	return user, true
}

// clientID identifies the device/session before authentication; it keys the
// pending-action slot and the session registry.
func clientID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(clientIDHeader))
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}
