package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/localstore"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	store, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	registry, err := NewRegistry(store)
	if err != nil {
		t.Fatalf("unexpected error creating registry: %v", err)
	}
	return registry
}

func TestCartRepositoryMissingCartIsEmpty(t *testing.T) {
	registry := newTestRegistry(t)

	cart, err := registry.Carts().GetCart(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.UserID != "user-1" {
		t.Fatalf("expected cart bound to user, got %q", cart.UserID)
	}
	if len(cart.Items) != 0 || len(cart.BuyNow) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestCartRepositoryRoundTrip(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	cart := domain.Cart{
		UserID: "user-1",
		Items: []domain.CartLine{
			{ProductID: "tripod-01", Name: "Carbon Tripod", UnitPrice: 125000, Quantity: 2, AddedAt: now, UpdatedAt: now},
		},
		BuyNow: []domain.CartLine{
			{ProductID: "lens-50", Name: "50mm Prime", UnitPrice: 450000, Quantity: 1, AddedAt: now, UpdatedAt: now},
		},
		UpdatedAt: now,
	}

	if err := registry.Carts().SaveCart(ctx, cart); err != nil {
		t.Fatalf("unexpected error saving cart: %v", err)
	}

	got, err := registry.Carts().GetCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error loading cart: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart items %+v", got.Items)
	}
	if len(got.BuyNow) != 1 || got.BuyNow[0].ProductID != "lens-50" {
		t.Fatalf("unexpected buy-now items %+v", got.BuyNow)
	}
	if got.Subtotal() != 250000 {
		t.Fatalf("unexpected subtotal %d", got.Subtotal())
	}
}

func TestCartRepositoryDeleteRemovesCart(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	cart := domain.Cart{
		UserID: "user-2",
		Items:  []domain.CartLine{{ProductID: "bag-01", Name: "Camera Bag", UnitPrice: 80000, Quantity: 1}},
	}
	if err := registry.Carts().SaveCart(ctx, cart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := registry.Carts().DeleteCart(ctx, "user-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := registry.Carts().GetCart(ctx, "user-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected empty cart after delete, got %+v", got.Items)
	}
}

func TestCartRepositoryRequiresUserID(t *testing.T) {
	registry := newTestRegistry(t)

	if _, err := registry.Carts().GetCart(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for blank user id")
	}
	if err := registry.Carts().SaveCart(context.Background(), domain.Cart{}); err == nil {
		t.Fatalf("expected error for cart without user id")
	}
}

func TestProfileCacheRoundTrip(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	profile := domain.UserProfile{
		ID:          "user-1",
		Name:        "Asha Rao",
		Email:       "asha@example.com",
		PhoneNumber: "+91 98450 00000",
		Role:        "customer",
		Address:     domain.Address{City: "Bengaluru", Country: "IN"},
	}

	if _, ok, err := registry.Profiles().GetProfile(ctx, "user-1"); err != nil || ok {
		t.Fatalf("expected miss before put, ok=%v err=%v", ok, err)
	}

	if err := registry.Profiles().PutProfile(ctx, profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := registry.Profiles().GetProfile(ctx, "user-1")
	if err != nil || !ok {
		t.Fatalf("expected cached profile, ok=%v err=%v", ok, err)
	}
	if got.Name != "Asha Rao" || got.Address.City != "Bengaluru" {
		t.Fatalf("unexpected profile %+v", got)
	}

	if err := registry.Profiles().DeleteProfile(ctx, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, err := registry.Profiles().GetProfile(ctx, "user-1"); err != nil || ok {
		t.Fatalf("expected miss after delete, ok=%v err=%v", ok, err)
	}
}

func TestOrderCachePreservesOrdering(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()
	now := time.Now().UTC()

	orders := []domain.Order{
		{ID: "order-2", UserID: "user-1", Status: "delivered", TotalPrice: 450000, CreatedAt: now},
		{ID: "order-1", UserID: "user-1", Status: "delivered", TotalPrice: 125000, CreatedAt: now.Add(-24 * time.Hour)},
	}

	if err := registry.Orders().PutOrders(ctx, "user-1", orders); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := registry.Orders().GetOrders(ctx, "user-1")
	if err != nil || !ok {
		t.Fatalf("expected cached orders, ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0].ID != "order-2" || got[1].ID != "order-1" {
		t.Fatalf("expected newest-first ordering preserved, got %+v", got)
	}
}

func TestOrderCacheMissForUnknownUser(t *testing.T) {
	registry := newTestRegistry(t)

	orders, ok, err := registry.Orders().GetOrders(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || orders != nil {
		t.Fatalf("expected cache miss, got ok=%v orders=%+v", ok, orders)
	}
}
