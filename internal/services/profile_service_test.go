package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumen-gear/storefront/internal/domain"
)

type profileFixture struct {
	service      ProfileService
	backend      *stubProfileBackend
	orders       *stubOrderBackend
	profileCache *stubProfileCache
	orderCache   *stubOrderCache
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	backend := &stubProfileBackend{}
	orders := &stubOrderBackend{}
	profileCache := newStubProfileCache()
	orderCache := newStubOrderCache()

	service, err := NewProfileService(ProfileServiceDeps{
		Backend:      backend,
		Orders:       orders,
		ProfileCache: profileCache,
		OrderCache:   orderCache,
		Clock:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected error constructing profile service: %v", err)
	}

	return &profileFixture{
		service:      service,
		backend:      backend,
		orders:       orders,
		profileCache: profileCache,
		orderCache:   orderCache,
	}
}

func TestProfileGetMirrorsBackendIntoCache(t *testing.T) {
	fixture := newProfileFixture(t)
	ctx := context.Background()

	fixture.backend.ensureFunc = func(ctx context.Context, user domain.User) (domain.UserProfile, error) {
		return domain.UserProfile{ID: user.ID, Name: "Asha Rao", Email: user.Email, Role: "customer"}, nil
	}

	view, err := fixture.service.GetProfile(ctx, domain.User{ID: "user-1", Email: "asha@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Stale {
		t.Fatalf("expected fresh backend read")
	}
	if view.Profile.Name != "Asha Rao" {
		t.Fatalf("unexpected profile %+v", view.Profile)
	}

	cached, ok, err := fixture.profileCache.GetProfile(ctx, "user-1")
	if err != nil || !ok {
		t.Fatalf("expected profile mirrored into cache, ok=%v err=%v", ok, err)
	}
	if cached.Name != "Asha Rao" {
		t.Fatalf("unexpected cached profile %+v", cached)
	}
}

func TestProfileGetFallsBackToCacheOnOutage(t *testing.T) {
	fixture := newProfileFixture(t)
	ctx := context.Background()

	fixture.profileCache.profiles["user-1"] = domain.UserProfile{ID: "user-1", Name: "Cached Asha", Email: "asha@example.com"}
	fixture.backend.ensureFunc = func(ctx context.Context, user domain.User) (domain.UserProfile, error) {
		return domain.UserProfile{}, errors.New("backend down")
	}

	view, err := fixture.service.GetProfile(ctx, domain.User{ID: "user-1", Email: "asha@example.com"})
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if !view.Stale {
		t.Fatalf("expected stale flag on cached fallback")
	}
	if view.Profile.Name != "Cached Asha" {
		t.Fatalf("unexpected fallback profile %+v", view.Profile)
	}
}

func TestProfileGetDerivesMinimalProfileWithoutCache(t *testing.T) {
	fixture := newProfileFixture(t)
	ctx := context.Background()

	fixture.backend.ensureFunc = func(ctx context.Context, user domain.User) (domain.UserProfile, error) {
		return domain.UserProfile{}, errors.New("backend down")
	}

	view, err := fixture.service.GetProfile(ctx, domain.User{ID: "user-1", Email: "asha@example.com", DisplayName: "Asha"})
	if err != nil {
		t.Fatalf("expected minimal profile, got error: %v", err)
	}
	if !view.Stale {
		t.Fatalf("expected stale flag")
	}
	if view.Profile.ID != "user-1" || view.Profile.Email != "asha@example.com" || view.Profile.Name != "Asha" {
		t.Fatalf("expected identity-derived profile, got %+v", view.Profile)
	}
}

func TestProfileUpdateWritesBackendFirst(t *testing.T) {
	fixture := newProfileFixture(t)
	ctx := context.Background()

	fixture.backend.upsertFunc = func(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
		return domain.UserProfile{}, errors.New("backend down")
	}

	_, err := fixture.service.UpdateProfile(ctx, domain.UserProfile{ID: "user-1", Name: "New Name"})
	if !errors.Is(err, ErrProfileUnavailable) {
		t.Fatalf("expected ErrProfileUnavailable, got %v", err)
	}
	if _, ok, _ := fixture.profileCache.GetProfile(ctx, "user-1"); ok {
		t.Fatalf("expected cache untouched when the backend rejects the write")
	}

	fixture.backend.upsertFunc = nil
	saved, err := fixture.service.UpdateProfile(ctx, domain.UserProfile{ID: "user-1", Name: "New Name"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cached, ok, _ := fixture.profileCache.GetProfile(ctx, "user-1")
	if !ok || cached.Name != saved.Name {
		t.Fatalf("expected accepted update mirrored, got ok=%v %+v", ok, cached)
	}
}

func TestOrdersListMirrorsBackendNewestFirst(t *testing.T) {
	fixture := newProfileFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	fixture.orders.listFunc = func(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
		if limit != 50 {
			t.Fatalf("expected default limit 50, got %d", limit)
		}
		return []domain.Order{
			{ID: "order-2", UserID: userID, CreatedAt: now},
			{ID: "order-1", UserID: userID, CreatedAt: now.Add(-time.Hour)},
		}, nil
	}

	view, err := fixture.service.ListOrders(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Stale || len(view.Orders) != 2 || view.Orders[0].ID != "order-2" {
		t.Fatalf("unexpected orders view %+v", view)
	}

	cached, ok, _ := fixture.orderCache.GetOrders(ctx, "user-1")
	if !ok || len(cached) != 2 {
		t.Fatalf("expected orders mirrored into cache")
	}
}

func TestOrdersListFallsBackToCache(t *testing.T) {
	fixture := newProfileFixture(t)
	ctx := context.Background()

	fixture.orderCache.orders["user-1"] = []domain.Order{{ID: "order-1", UserID: "user-1"}}
	fixture.orders.listFunc = func(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
		return nil, errors.New("backend down")
	}

	view, err := fixture.service.ListOrders(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("expected cached fallback, got error: %v", err)
	}
	if !view.Stale || len(view.Orders) != 1 {
		t.Fatalf("unexpected orders view %+v", view)
	}
}

func TestCreateOrderPrependsToLocalMirror(t *testing.T) {
	fixture := newProfileFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	fixture.orderCache.orders["user-1"] = []domain.Order{{ID: "order-1", UserID: "user-1", CreatedAt: now.Add(-time.Hour)}}
	fixture.orders.createFunc = func(ctx context.Context, order domain.Order) (domain.Order, error) {
		order.ID = "order-2"
		order.CreatedAt = now
		return order, nil
	}

	created, err := fixture.service.CreateOrder(ctx, domain.Order{
		UserID: "user-1",
		Items:  []domain.OrderItem{{Name: "Carbon Tripod", Quantity: 1, UnitPrice: 125000}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "order-2" {
		t.Fatalf("unexpected created order %+v", created)
	}

	cached, ok, _ := fixture.orderCache.GetOrders(ctx, "user-1")
	if !ok || len(cached) != 2 {
		t.Fatalf("expected two cached orders, got %+v", cached)
	}
	if cached[0].ID != "order-2" || cached[1].ID != "order-1" {
		t.Fatalf("expected newest-first ordering, got %+v", cached)
	}
}

func TestEvictUserDropsMirrors(t *testing.T) {
	fixture := newProfileFixture(t)
	ctx := context.Background()

	fixture.profileCache.profiles["user-1"] = domain.UserProfile{ID: "user-1"}
	fixture.orderCache.orders["user-1"] = []domain.Order{{ID: "order-1"}}

	if err := fixture.service.EvictUser(ctx, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := fixture.profileCache.GetProfile(ctx, "user-1"); ok {
		t.Fatalf("expected profile mirror dropped")
	}
	if _, ok, _ := fixture.orderCache.GetOrders(ctx, "user-1"); ok {
		t.Fatalf("expected order mirror dropped")
	}
}
