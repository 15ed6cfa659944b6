package localstore

import (
	"context"
	"errors"
	"strings"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/localstore"
)

// CartRepository persists carts as keyed JSON entries in the local store.
type CartRepository struct {
	store *localstore.Store
}

// NewCartRepository constructs a local-store backed cart repository.
func NewCartRepository(store *localstore.Store) (*CartRepository, error) {
	if store == nil {
		return nil, errors.New("cart repository requires local store")
	}
	return &CartRepository{store: store}, nil
}

// GetCart loads the stored cart for userID. A missing or unreadable entry
// yields an empty cart for that user.
func (r *CartRepository) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Cart{}, wrapError("cart repository: get", errors.New("user id is required"))
	}

	var doc cartDocument
	ok, err := r.store.GetJSON(cartKey(userID), &doc)
	if err != nil {
		return domain.Cart{}, wrapError("cart repository: get", err)
	}
	if !ok {
		return domain.Cart{UserID: userID}, nil
	}

	cart := cartFromDocument(doc)
	cart.UserID = userID
	return cart, nil
}

// SaveCart durably replaces the stored cart for the cart's user.
func (r *CartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID := strings.TrimSpace(cart.UserID)
	if userID == "" {
		return wrapError("cart repository: save", errors.New("user id is required"))
	}
	cart.UserID = userID

	if err := r.store.PutJSON(cartKey(userID), cartToDocument(cart)); err != nil {
		return wrapError("cart repository: save", err)
	}
	return nil
}

// DeleteCart removes the stored cart; deleting an absent cart is a no-op.
func (r *CartRepository) DeleteCart(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return wrapError("cart repository: delete", errors.New("user id is required"))
	}
	if err := r.store.Delete(cartKey(userID)); err != nil {
		return wrapError("cart repository: delete", err)
	}
	return nil
}

func cartKey(userID string) string {
	return "cart_" + userID
}
