package localstore

import (
	"context"
	"errors"
	"strings"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/localstore"
)

// OrderCacheRepository mirrors backend order history locally.
type OrderCacheRepository struct {
	store *localstore.Store
}

// NewOrderCacheRepository constructs a local-store backed order cache.
func NewOrderCacheRepository(store *localstore.Store) (*OrderCacheRepository, error) {
	if store == nil {
		return nil, errors.New("order cache requires local store")
	}
	return &OrderCacheRepository{store: store}, nil
}

// GetOrders returns the cached order list for userID. The boolean reports
// whether a usable cached copy existed.
func (r *OrderCacheRepository) GetOrders(ctx context.Context, userID string) ([]domain.Order, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, false, wrapError("order cache: get", errors.New("user id is required"))
	}

	var docs []orderDocument
	ok, err := r.store.GetJSON(ordersKey(userID), &docs)
	if err != nil {
		return nil, false, wrapError("order cache: get", err)
	}
	if !ok {
		return nil, false, nil
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, orderFromDocument(doc))
	}
	return orders, true, nil
}

// PutOrders replaces the cached order list, preserving the supplied ordering.
func (r *OrderCacheRepository) PutOrders(ctx context.Context, userID string, orders []domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return wrapError("order cache: put", errors.New("user id is required"))
	}

	docs := make([]orderDocument, 0, len(orders))
	for _, order := range orders {
		docs = append(docs, orderToDocument(order))
	}
	if err := r.store.PutJSON(ordersKey(userID), docs); err != nil {
		return wrapError("order cache: put", err)
	}
	return nil
}

// DeleteOrders evicts the cached order list; an absent entry is a no-op.
func (r *OrderCacheRepository) DeleteOrders(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return wrapError("order cache: delete", errors.New("user id is required"))
	}
	if err := r.store.Delete(ordersKey(userID)); err != nil {
		return wrapError("order cache: delete", err)
	}
	return nil
}

func ordersKey(userID string) string {
	return "userOrders_" + userID
}
