package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/services"
)

func guardedRouter(sessions services.SessionService, class services.ViewClass) chi.Router {
	guard := services.NewRouteGuard(services.RouteGuardDeps{})
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(RouteGuardMiddleware(guard, sessions, class))
		r.Get("/checkout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return router
}

func TestGuardMiddlewareLoadingReturns202(t *testing.T) {
	sessions := &stubSessionService{
		currentFunc: func(ctx context.Context, clientID string) domain.SessionSnapshot {
			return domain.SessionSnapshot{Loading: true}
		},
	}
	router := guardedRouter(sessions, services.ViewAuthOnly)

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set(clientIDHeader, "client-1")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status 202 while loading, got %d", rr.Code)
	}
}

func TestGuardMiddlewareRedirectsUnauthenticatedToLogin(t *testing.T) {
	router := guardedRouter(&stubSessionService{}, services.ViewAuthOnly)

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set(clientIDHeader, "client-1")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}

	var envelope navigationEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if envelope.Navigate != domain.DestinationLogin {
		t.Fatalf("expected login destination, got %q", envelope.Navigate)
	}
	if envelope.ReturnTo != "/checkout" {
		t.Fatalf("expected returnTo /checkout, got %q", envelope.ReturnTo)
	}
}

func TestGuardMiddlewareAllowsAuthenticated(t *testing.T) {
	sessions := &stubSessionService{
		currentFunc: func(ctx context.Context, clientID string) domain.SessionSnapshot {
			return domain.SessionSnapshot{
				User:            &domain.User{ID: "user-7"},
				IsAuthenticated: true,
			}
		},
	}
	router := guardedRouter(sessions, services.ViewAuthOnly)

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set(clientIDHeader, "client-1")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGuardMiddlewareAdminDenialCarriesNotice(t *testing.T) {
	sessions := &stubSessionService{
		currentFunc: func(ctx context.Context, clientID string) domain.SessionSnapshot {
			return domain.SessionSnapshot{
				User:            &domain.User{ID: "user-7"},
				IsAuthenticated: true,
				IsAdmin:         false,
			}
		},
	}
	router := guardedRouter(sessions, services.ViewAdminOnly)

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set(clientIDHeader, "client-1")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}

	var envelope navigationEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if envelope.Navigate != domain.DestinationHome {
		t.Fatalf("expected home destination, got %q", envelope.Navigate)
	}
	if envelope.Notice == "" {
		t.Fatalf("expected denial notice")
	}
}

func TestGuardMiddlewareVerifiedBearerOverridesRegistry(t *testing.T) {
	sessions := &stubSessionService{
		verifyFunc: func(ctx context.Context, idToken string) (domain.User, error) {
			if idToken != "token-1" {
				t.Fatalf("unexpected token %q", idToken)
			}
			return domain.User{ID: "user-7", Email: "asha@example.com"}, nil
		},
	}

	guard := services.NewRouteGuard(services.RouteGuardDeps{})
	auth := NewAuthenticator(sessions)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth())
		r.Use(RouteGuardMiddleware(guard, sessions, services.ViewAuthOnly))
		r.Get("/checkout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set("Authorization", "Bearer token-1")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGuardMiddlewareGuestOnlyRedirectsAuthenticated(t *testing.T) {
	sessions := &stubSessionService{
		currentFunc: func(ctx context.Context, clientID string) domain.SessionSnapshot {
			return domain.SessionSnapshot{
				User:            &domain.User{ID: "user-7"},
				IsAuthenticated: true,
			}
		},
	}
	router := guardedRouter(sessions, services.ViewGuestOnly)

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set(clientIDHeader, "client-1")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}

	var envelope navigationEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if envelope.Navigate != domain.DestinationHome {
		t.Fatalf("expected home destination, got %q", envelope.Navigate)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	auth := NewAuthenticator(&stubSessionService{})

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth())
		r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	sessions := &stubSessionService{
		verifyFunc: func(ctx context.Context, idToken string) (domain.User, error) {
			return domain.User{}, services.ErrSessionUnauthenticated
		},
	}
	auth := NewAuthenticator(sessions)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth())
		r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer expired-token")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}
