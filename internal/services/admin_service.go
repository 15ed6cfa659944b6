package services

import (
	"context"
	"errors"
	"strings"

	"github.com/lumen-gear/storefront/internal/domain"
)

var (
	errAdminBackendRequired = errors.New("admin service: data backend is required")
	errAdminClaimsRequired  = errors.New("admin service: claim granter is required")
)

// ErrAdminInvalidInput indicates the caller supplied invalid input.
var ErrAdminInvalidInput = errors.New("admin service: invalid input")

// ErrAdminUserNotFound indicates no profile exists for the supplied email.
var ErrAdminUserNotFound = errors.New("admin service: user not found")

// ErrAdminUnavailable indicates the backend cannot be reached.
var ErrAdminUnavailable = errors.New("admin service: unavailable")

// AdminBackend is the admin slice of the backend data client.
type AdminBackend interface {
	FindProfileByEmail(ctx context.Context, email string) (domain.UserProfile, bool, error)
	ListProfiles(ctx context.Context, limit int) ([]domain.UserProfile, error)
	MakeUserAdmin(ctx context.Context, userID string) error
}

// ClaimGranter mints the admin custom claim on the auth account.
type ClaimGranter interface {
	GrantAdminClaim(ctx context.Context, uid string) error
}

// AdminService drives the storefront's administrative operations. Route
// guarding is a UI hint; the backend's security rules do the real
// enforcement for these writes.
type AdminService interface {
	ListUsers(ctx context.Context, limit int) ([]domain.UserProfile, error)
	ElevateAdmin(ctx context.Context, email string) (domain.UserProfile, error)
}

// AdminServiceDeps wires backend dependencies for admin operations.
type AdminServiceDeps struct {
	Backend AdminBackend
	Claims  ClaimGranter
	Logger  func(context.Context, string, map[string]any)
}

type adminService struct {
	backend AdminBackend
	claims  ClaimGranter
	logger  func(context.Context, string, map[string]any)
}

// NewAdminService constructs an AdminService enforcing dependency validation.
func NewAdminService(deps AdminServiceDeps) (AdminService, error) {
	if deps.Backend == nil {
		return nil, errAdminBackendRequired
	}
	if deps.Claims == nil {
		return nil, errAdminClaimsRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &adminService{
		backend: deps.Backend,
		claims:  deps.Claims,
		logger:  logger,
	}, nil
}

// ListUsers returns stored profiles for the admin console.
func (s *adminService) ListUsers(ctx context.Context, limit int) ([]domain.UserProfile, error) {
	profiles, err := s.backend.ListProfiles(ctx, limit)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger(ctx, "admin.list_users_failed", map[string]any{"error": err.Error()})
		return nil, ErrAdminUnavailable
	}
	return profiles, nil
}

// ElevateAdmin promotes the account behind email: the profile role first,
// then the auth custom claim so future tokens carry it.
func (s *adminService) ElevateAdmin(ctx context.Context, email string) (domain.UserProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.UserProfile{}, ErrAdminInvalidInput
	}

	profile, ok, err := s.backend.FindProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.UserProfile{}, err
		}
		s.logger(ctx, "admin.lookup_failed", map[string]any{"email": email, "error": err.Error()})
		return domain.UserProfile{}, ErrAdminUnavailable
	}
	if !ok {
		return domain.UserProfile{}, ErrAdminUserNotFound
	}

	if err := s.backend.MakeUserAdmin(ctx, profile.ID); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.UserProfile{}, err
		}
		s.logger(ctx, "admin.promote_failed", map[string]any{"userID": profile.ID, "error": err.Error()})
		return domain.UserProfile{}, ErrAdminUnavailable
	}

	if err := s.claims.GrantAdminClaim(ctx, profile.ID); err != nil {
		// The role write already landed; claim minting retries on the next
		// elevation attempt.
		s.logger(ctx, "admin.claim_failed", map[string]any{"userID": profile.ID, "error": err.Error()})
	}

	profile.Role = "admin"
	s.logger(ctx, "admin.promoted", map[string]any{"userID": profile.ID})
	return profile, nil
}
