package services

import (
	"context"
	"errors"
	"strings"

	"github.com/lumen-gear/storefront/internal/domain"
)

// ViewClass partitions storefront views by who may enter them.
type ViewClass string

const (
	// ViewPublic is reachable by anyone.
	ViewPublic ViewClass = "public"
	// ViewAuthOnly requires an authenticated session.
	ViewAuthOnly ViewClass = "auth"
	// ViewGuestOnly is for login/signup style views; authenticated users bounce home.
	ViewGuestOnly ViewClass = "guest"
	// ViewAdminOnly requires authentication plus the admin routing hint.
	ViewAdminOnly ViewClass = "admin"
)

// Valid reports whether the class is known.
func (c ViewClass) Valid() bool {
	switch c {
	case ViewPublic, ViewAuthOnly, ViewGuestOnly, ViewAdminOnly:
		return true
	}
	return false
}

// GuardOutcome discriminates guard decisions.
type GuardOutcome string

const (
	// GuardAllow lets the request through.
	GuardAllow GuardOutcome = "allow"
	// GuardLoading means session state is unresolved; render a wait state, never a redirect.
	GuardLoading GuardOutcome = "loading"
	// GuardRedirect bounces the request to Destination.
	GuardRedirect GuardOutcome = "redirect"
)

// GuardDecision is the route guard's verdict for one request. The guard
// never mutates session or cart state.
type GuardDecision struct {
	Outcome     GuardOutcome
	Destination domain.Destination
	// ReturnTo is the originally requested location, preserved on auth
	// redirects so sign-in can resume it. An armed pending action takes
	// precedence over this when both exist.
	ReturnTo string
	// Notice carries a non-fatal message, e.g. a failed admin check.
	Notice string
}

// ErrGuardInvalidInput indicates an unknown view class was supplied.
var ErrGuardInvalidInput = errors.New("route guard: invalid input")

// RouteGuard evaluates access decisions from session snapshots.
type RouteGuard interface {
	Evaluate(ctx context.Context, class ViewClass, snapshot domain.SessionSnapshot, requested string) (GuardDecision, error)
}

// RouteGuardDeps wires ambient dependencies for the guard.
type RouteGuardDeps struct {
	Logger func(context.Context, string, map[string]any)
}

type routeGuard struct {
	logger func(context.Context, string, map[string]any)
}

// NewRouteGuard constructs the storefront route guard.
func NewRouteGuard(deps RouteGuardDeps) RouteGuard {
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &routeGuard{logger: logger}
}

func (g *routeGuard) Evaluate(ctx context.Context, class ViewClass, snapshot domain.SessionSnapshot, requested string) (GuardDecision, error) {
	if !class.Valid() {
		return GuardDecision{}, ErrGuardInvalidInput
	}
	requested = strings.TrimSpace(requested)

	// Unresolved session state always waits. Redirecting here would bounce
	// users whose session restore has simply not finished.
	if snapshot.Loading {
		return GuardDecision{Outcome: GuardLoading}, nil
	}

	switch class {
	case ViewPublic:
		return GuardDecision{Outcome: GuardAllow}, nil

	case ViewGuestOnly:
		if snapshot.IsAuthenticated {
			return GuardDecision{Outcome: GuardRedirect, Destination: domain.DestinationHome}, nil
		}
		return GuardDecision{Outcome: GuardAllow}, nil

	case ViewAuthOnly:
		if !snapshot.IsAuthenticated {
			return GuardDecision{
				Outcome:     GuardRedirect,
				Destination: domain.DestinationLogin,
				ReturnTo:    requested,
			}, nil
		}
		return GuardDecision{Outcome: GuardAllow}, nil

	case ViewAdminOnly:
		if !snapshot.IsAuthenticated {
			return GuardDecision{
				Outcome:     GuardRedirect,
				Destination: domain.DestinationLogin,
				ReturnTo:    requested,
			}, nil
		}
		// The admin lookup runs after base session resolution and has its
		// own loading flag.
		if snapshot.AdminCheckLoading {
			return GuardDecision{Outcome: GuardLoading}, nil
		}
		if !snapshot.IsAdmin {
			g.logger(ctx, "guard.admin_denied", map[string]any{
				"requested": requested,
			})
			return GuardDecision{
				Outcome:     GuardRedirect,
				Destination: domain.DestinationHome,
				Notice:      "access denied: admin privileges required",
			}, nil
		}
		return GuardDecision{Outcome: GuardAllow}, nil
	}

	return GuardDecision{}, ErrGuardInvalidInput
}
