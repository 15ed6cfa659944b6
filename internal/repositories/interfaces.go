package repositories

import (
	"context"

	"github.com/lumen-gear/storefront/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Carts() CartRepository
	Profiles() ProfileCacheRepository
	Orders() OrderCacheRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CartRepository persists per-user carts across restarts. A user with no
// stored cart reads back an empty cart rather than an error.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
	SaveCart(ctx context.Context, cart domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

// ProfileCacheRepository mirrors the backend profile record locally so reads
// survive backend outages.
type ProfileCacheRepository interface {
	GetProfile(ctx context.Context, userID string) (domain.UserProfile, bool, error)
	PutProfile(ctx context.Context, profile domain.UserProfile) error
	DeleteProfile(ctx context.Context, userID string) error
}

// OrderCacheRepository mirrors the backend order history locally.
type OrderCacheRepository interface {
	GetOrders(ctx context.Context, userID string) ([]domain.Order, bool, error)
	PutOrders(ctx context.Context, userID string, orders []domain.Order) error
	DeleteOrders(ctx context.Context, userID string) error
}
