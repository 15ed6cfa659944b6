package localstore

import (
	"context"
	"errors"

	"github.com/lumen-gear/storefront/internal/platform/localstore"
	"github.com/lumen-gear/storefront/internal/repositories"
)

// Registry wires the local-store backed repositories behind the
// repositories.Registry interface.
type Registry struct {
	carts    *CartRepository
	profiles *ProfileCacheRepository
	orders   *OrderCacheRepository
}

// NewRegistry constructs the full repository set over one store directory.
func NewRegistry(store *localstore.Store) (*Registry, error) {
	if store == nil {
		return nil, errors.New("registry requires local store")
	}

	carts, err := NewCartRepository(store)
	if err != nil {
		return nil, err
	}
	profiles, err := NewProfileCacheRepository(store)
	if err != nil {
		return nil, err
	}
	orders, err := NewOrderCacheRepository(store)
	if err != nil {
		return nil, err
	}

	return &Registry{
		carts:    carts,
		profiles: profiles,
		orders:   orders,
	}, nil
}

// Close releases registry resources. The file store holds no open handles.
func (r *Registry) Close(ctx context.Context) error {
	return nil
}

// Carts returns the cart repository.
func (r *Registry) Carts() repositories.CartRepository { return r.carts }

// Profiles returns the profile cache repository.
func (r *Registry) Profiles() repositories.ProfileCacheRepository { return r.profiles }

// Orders returns the order cache repository.
func (r *Registry) Orders() repositories.OrderCacheRepository { return r.orders }

var _ repositories.Registry = (*Registry)(nil)
