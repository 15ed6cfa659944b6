package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/repositories"
)

var (
	errProfileBackendRequired = errors.New("profile service: data backend is required")
	errProfileCacheRequired   = errors.New("profile service: profile cache is required")
	errOrderCacheRequired     = errors.New("profile service: order cache is required")
)

// ErrProfileInvalidInput indicates the caller supplied invalid input.
var ErrProfileInvalidInput = errors.New("profile service: invalid input")

// ErrProfileUnavailable indicates neither backend nor cache could serve the request.
var ErrProfileUnavailable = errors.New("profile service: unavailable")

// ProfileBackend is the profile slice of the backend data client.
type ProfileBackend interface {
	EnsureProfile(ctx context.Context, user domain.User) (domain.UserProfile, error)
	UpsertProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
}

// OrderBackend is the order slice of the backend data client.
type OrderBackend interface {
	ListOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error)
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
}

// ProfileView is a profile read annotated with its provenance. Stale means
// the backend was unreachable and the copy came from the local mirror or
// was derived from the session identity.
type ProfileView struct {
	Profile domain.UserProfile
	Stale   bool
}

// OrdersView is an order-history read annotated with provenance.
type OrdersView struct {
	Orders []domain.Order
	Stale  bool
}

// ProfileService is the read-through / write-through local mirror over the
// backend profile and order records.
type ProfileService interface {
	GetProfile(ctx context.Context, user domain.User) (ProfileView, error)
	UpdateProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
	ListOrders(ctx context.Context, userID string, limit int) (OrdersView, error)
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	EvictUser(ctx context.Context, userID string) error
}

// ProfileServiceDeps wires the backend client and local caches.
type ProfileServiceDeps struct {
	Backend      ProfileBackend
	Orders       OrderBackend
	ProfileCache repositories.ProfileCacheRepository
	OrderCache   repositories.OrderCacheRepository

	DefaultOrderLimit int

	Clock  func() time.Time
	Logger func(context.Context, string, map[string]any)
}

type profileService struct {
	backend      ProfileBackend
	orders       OrderBackend
	profileCache repositories.ProfileCacheRepository
	orderCache   repositories.OrderCacheRepository

	defaultOrderLimit int

	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewProfileService constructs a ProfileService enforcing dependency validation.
func NewProfileService(deps ProfileServiceDeps) (ProfileService, error) {
	if deps.Backend == nil || deps.Orders == nil {
		return nil, errProfileBackendRequired
	}
	if deps.ProfileCache == nil {
		return nil, errProfileCacheRequired
	}
	if deps.OrderCache == nil {
		return nil, errOrderCacheRequired
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	limit := deps.DefaultOrderLimit
	if limit <= 0 {
		limit = 50
	}

	return &profileService{
		backend:           deps.Backend,
		orders:            deps.Orders,
		profileCache:      deps.ProfileCache,
		orderCache:        deps.OrderCache,
		defaultOrderLimit: limit,
		now:               func() time.Time { return clock().UTC() },
		logger:            logger,
	}, nil
}

// GetProfile fetches the profile from the backend and mirrors it locally.
// When the backend is unreachable it serves the cached copy, and failing
// that derives a minimal profile from the session identity. Reads never
// block on an outage.
func (s *profileService) GetProfile(ctx context.Context, user domain.User) (ProfileView, error) {
	userID := strings.TrimSpace(user.ID)
	if userID == "" {
		return ProfileView{}, ErrProfileInvalidInput
	}
	user.ID = userID

	profile, err := s.backend.EnsureProfile(ctx, user)
	if err == nil {
		if cacheErr := s.profileCache.PutProfile(ctx, profile); cacheErr != nil {
			s.logger(ctx, "profile.cache_write_failed", map[string]any{
				"userID": userID,
				"error":  cacheErr.Error(),
			})
		}
		return ProfileView{Profile: profile}, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ProfileView{}, err
	}

	s.logger(ctx, "profile.backend_unavailable", map[string]any{
		"userID": userID,
		"error":  err.Error(),
	})

	cached, ok, cacheErr := s.profileCache.GetProfile(ctx, userID)
	if cacheErr == nil && ok {
		return ProfileView{Profile: cached, Stale: true}, nil
	}
	if cacheErr != nil {
		s.logger(ctx, "profile.cache_read_failed", map[string]any{
			"userID": userID,
			"error":  cacheErr.Error(),
		})
	}

	now := s.now()
	return ProfileView{
		Profile: domain.UserProfile{
			ID:        userID,
			Name:      strings.TrimSpace(user.DisplayName),
			Email:     strings.TrimSpace(user.Email),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Stale: true,
	}, nil
}

// UpdateProfile writes the backend first and mirrors into the cache only
// after the backend accepted the update.
func (s *profileService) UpdateProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if strings.TrimSpace(profile.ID) == "" {
		return domain.UserProfile{}, ErrProfileInvalidInput
	}

	saved, err := s.backend.UpsertProfile(ctx, profile)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.UserProfile{}, err
		}
		s.logger(ctx, "profile.update_failed", map[string]any{
			"userID": profile.ID,
			"error":  err.Error(),
		})
		return domain.UserProfile{}, ErrProfileUnavailable
	}

	if cacheErr := s.profileCache.PutProfile(ctx, saved); cacheErr != nil {
		s.logger(ctx, "profile.cache_write_failed", map[string]any{
			"userID": saved.ID,
			"error":  cacheErr.Error(),
		})
	}
	return saved, nil
}

// ListOrders fetches order history newest first and mirrors it locally,
// falling back to the cached list when the backend is unreachable.
func (s *profileService) ListOrders(ctx context.Context, userID string, limit int) (OrdersView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return OrdersView{}, ErrProfileInvalidInput
	}
	if limit <= 0 {
		limit = s.defaultOrderLimit
	}

	orders, err := s.orders.ListOrders(ctx, userID, limit)
	if err == nil {
		if cacheErr := s.orderCache.PutOrders(ctx, userID, orders); cacheErr != nil {
			s.logger(ctx, "orders.cache_write_failed", map[string]any{
				"userID": userID,
				"error":  cacheErr.Error(),
			})
		}
		return OrdersView{Orders: orders}, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OrdersView{}, err
	}

	s.logger(ctx, "orders.backend_unavailable", map[string]any{
		"userID": userID,
		"error":  err.Error(),
	})

	cached, ok, cacheErr := s.orderCache.GetOrders(ctx, userID)
	if cacheErr == nil && ok {
		return OrdersView{Orders: cached, Stale: true}, nil
	}
	if cacheErr != nil {
		s.logger(ctx, "orders.cache_read_failed", map[string]any{
			"userID": userID,
			"error":  cacheErr.Error(),
		})
	}
	return OrdersView{Stale: true}, nil
}

// CreateOrder persists the order on the backend and prepends it to the
// local mirror, keeping the newest-first ordering. The mirror is never
// pruned.
func (s *profileService) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if strings.TrimSpace(order.UserID) == "" || len(order.Items) == 0 {
		return domain.Order{}, ErrProfileInvalidInput
	}

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Order{}, err
		}
		s.logger(ctx, "orders.create_failed", map[string]any{
			"userID": order.UserID,
			"error":  err.Error(),
		})
		return domain.Order{}, ErrProfileUnavailable
	}

	cached, _, cacheErr := s.orderCache.GetOrders(ctx, created.UserID)
	if cacheErr == nil {
		updated := append([]domain.Order{created}, cached...)
		cacheErr = s.orderCache.PutOrders(ctx, created.UserID, updated)
	}
	if cacheErr != nil {
		s.logger(ctx, "orders.cache_write_failed", map[string]any{
			"userID": created.UserID,
			"error":  cacheErr.Error(),
		})
	}

	s.logger(ctx, "orders.created", map[string]any{
		"userID":  created.UserID,
		"orderID": created.ID,
		"total":   created.TotalPrice,
	})
	return created, nil
}

// EvictUser drops the local mirror for the user, the sign-out cleanup.
func (s *profileService) EvictUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrProfileInvalidInput
	}

	var firstErr error
	if err := s.profileCache.DeleteProfile(ctx, userID); err != nil {
		firstErr = err
	}
	if err := s.orderCache.DeleteOrders(ctx, userID); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		s.logger(ctx, "profile.evict_failed", map[string]any{
			"userID": userID,
			"error":  firstErr.Error(),
		})
		return ErrProfileUnavailable
	}
	return nil
}
