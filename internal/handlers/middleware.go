package handlers

import (
	"net/http"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/httpx"
	"github.com/lumen-gear/storefront/internal/platform/requestctx"
	"github.com/lumen-gear/storefront/internal/services"
)

// Authenticator verifies bearer tokens and annotates the request context
// with the authenticated identity.
type Authenticator struct {
	sessions services.SessionService
}

// NewAuthenticator constructs the request authenticator.
func NewAuthenticator(sessions services.SessionService) *Authenticator {
	return &Authenticator{sessions: sessions}
}

// RequireAuth rejects requests without a verifiable bearer token.
func (a *Authenticator) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
				return
			}

			user, err := a.sessions.Verify(ctx, token)
			if err != nil {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "session token rejected", http.StatusUnauthorized))
				return
			}

			ctx = identityToContext(ctx, user)
			ctx = requestctx.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// navigationEnvelope is the JSON translation of a guard redirect. The
// client owns the actual view transition; the server only names the
// destination.
type navigationEnvelope struct {
	Navigate domain.Destination `json:"navigate"`
	ReturnTo string             `json:"returnTo,omitempty"`
	Notice   string             `json:"notice,omitempty"`
}

// RouteGuardMiddleware translates guard decisions for one view class into
// HTTP responses: Loading becomes 202, redirects become 401/403 carrying a
// navigation envelope, Allow passes through.
func RouteGuardMiddleware(guard services.RouteGuard, sessions services.SessionService, class services.ViewClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			snapshot := sessions.Current(ctx, clientID(r))
			if user, ok := identityFromContext(ctx); ok {
				// A verified bearer token outranks the client registry.
				snapshot.User = &user
				snapshot.IsAuthenticated = true
				snapshot.Loading = false
			}

			decision, err := guard.Evaluate(ctx, class, snapshot, r.URL.Path)
			if err != nil {
				httpx.WriteError(ctx, w, httpx.NewError("guard_error", "route guard rejected the request", http.StatusInternalServerError))
				return
			}

			switch decision.Outcome {
			case services.GuardAllow:
				next.ServeHTTP(w, r)

			case services.GuardLoading:
				httpx.WriteJSON(w, http.StatusAccepted, map[string]any{"state": "loading"})

			case services.GuardRedirect:
				status := http.StatusForbidden
				if decision.Destination == domain.DestinationLogin {
					status = http.StatusUnauthorized
				}
				httpx.WriteJSON(w, status, navigationEnvelope{
					Navigate: decision.Destination,
					ReturnTo: decision.ReturnTo,
					Notice:   decision.Notice,
				})

			default:
				httpx.WriteError(ctx, w, httpx.NewError("guard_error", "unknown guard outcome", http.StatusInternalServerError))
			}
		})
	}
}
