package services

import (
	"context"
	"sync"

	backendauth "github.com/lumen-gear/storefront/internal/backend/auth"
	"github.com/lumen-gear/storefront/internal/domain"
)

type stubCartRepository struct {
	mu      sync.Mutex
	carts   map[string]domain.Cart
	getErr  error
	saveErr error
	saves   int
}

func newStubCartRepository() *stubCartRepository {
	return &stubCartRepository{carts: map[string]domain.Cart{}}
}

func (r *stubCartRepository) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return domain.Cart{}, r.getErr
	}
	cart, ok := r.carts[userID]
	if !ok {
		return domain.Cart{UserID: userID}, nil
	}
	return cart, nil
}

func (r *stubCartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[cart.UserID] = cart
	r.saves++
	return nil
}

func (r *stubCartRepository) DeleteCart(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

type stubAuthGateway struct {
	signInFunc   func(ctx context.Context, email, password string) (backendauth.Session, error)
	signUpFunc   func(ctx context.Context, email, password, displayName string) (backendauth.Session, error)
	resetFunc    func(ctx context.Context, email, continueURL string) error
	passwordFunc func(ctx context.Context, idToken, newPassword string) (backendauth.Session, error)
}

func (g *stubAuthGateway) SignInWithPassword(ctx context.Context, email, password string) (backendauth.Session, error) {
	if g.signInFunc == nil {
		return backendauth.Session{}, nil
	}
	return g.signInFunc(ctx, email, password)
}

func (g *stubAuthGateway) SignUp(ctx context.Context, email, password, displayName string) (backendauth.Session, error) {
	if g.signUpFunc == nil {
		return backendauth.Session{}, nil
	}
	return g.signUpFunc(ctx, email, password, displayName)
}

func (g *stubAuthGateway) SendPasswordReset(ctx context.Context, email, continueURL string) error {
	if g.resetFunc == nil {
		return nil
	}
	return g.resetFunc(ctx, email, continueURL)
}

func (g *stubAuthGateway) UpdatePassword(ctx context.Context, idToken, newPassword string) (backendauth.Session, error) {
	if g.passwordFunc == nil {
		return backendauth.Session{}, nil
	}
	return g.passwordFunc(ctx, idToken, newPassword)
}

type stubVerifier struct {
	verifyFunc func(ctx context.Context, idToken string) (domain.User, map[string]interface{}, error)
	revokeFunc func(ctx context.Context, uid string) error
	revoked    []string
	mu         sync.Mutex
}

func (v *stubVerifier) VerifySession(ctx context.Context, idToken string) (domain.User, map[string]interface{}, error) {
	if v.verifyFunc == nil {
		return domain.User{}, nil, backendauth.ErrTokenInvalid
	}
	return v.verifyFunc(ctx, idToken)
}

func (v *stubVerifier) RevokeSessions(ctx context.Context, uid string) error {
	v.mu.Lock()
	v.revoked = append(v.revoked, uid)
	v.mu.Unlock()
	if v.revokeFunc == nil {
		return nil
	}
	return v.revokeFunc(ctx, uid)
}

type stubAdminChecker struct {
	isAdminFunc func(ctx context.Context, userID string) (bool, error)
}

func (c *stubAdminChecker) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if c.isAdminFunc == nil {
		return false, nil
	}
	return c.isAdminFunc(ctx, userID)
}

type stubProfileBackend struct {
	ensureFunc func(ctx context.Context, user domain.User) (domain.UserProfile, error)
	upsertFunc func(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
}

func (b *stubProfileBackend) EnsureProfile(ctx context.Context, user domain.User) (domain.UserProfile, error) {
	if b.ensureFunc == nil {
		return domain.UserProfile{ID: user.ID, Email: user.Email, Name: user.DisplayName}, nil
	}
	return b.ensureFunc(ctx, user)
}

func (b *stubProfileBackend) UpsertProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if b.upsertFunc == nil {
		return profile, nil
	}
	return b.upsertFunc(ctx, profile)
}

type stubOrderBackend struct {
	listFunc   func(ctx context.Context, userID string, limit int) ([]domain.Order, error)
	createFunc func(ctx context.Context, order domain.Order) (domain.Order, error)
}

func (b *stubOrderBackend) ListOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	if b.listFunc == nil {
		return nil, nil
	}
	return b.listFunc(ctx, userID, limit)
}

func (b *stubOrderBackend) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if b.createFunc == nil {
		return order, nil
	}
	return b.createFunc(ctx, order)
}

type stubProfileCache struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	getErr   error
	putErr   error
}

func newStubProfileCache() *stubProfileCache {
	return &stubProfileCache{profiles: map[string]domain.UserProfile{}}
}

func (c *stubProfileCache) GetProfile(ctx context.Context, userID string) (domain.UserProfile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return domain.UserProfile{}, false, c.getErr
	}
	profile, ok := c.profiles[userID]
	return profile, ok, nil
}

func (c *stubProfileCache) PutProfile(ctx context.Context, profile domain.UserProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.profiles[profile.ID] = profile
	return nil
}

func (c *stubProfileCache) DeleteProfile(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.profiles, userID)
	return nil
}

type stubOrderCache struct {
	mu     sync.Mutex
	orders map[string][]domain.Order
	getErr error
	putErr error
}

func newStubOrderCache() *stubOrderCache {
	return &stubOrderCache{orders: map[string][]domain.Order{}}
}

func (c *stubOrderCache) GetOrders(ctx context.Context, userID string) ([]domain.Order, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	orders, ok := c.orders[userID]
	return orders, ok, nil
}

func (c *stubOrderCache) PutOrders(ctx context.Context, userID string, orders []domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.orders[userID] = orders
	return nil
}

func (c *stubOrderCache) DeleteOrders(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.orders, userID)
	return nil
}

type stubAdminBackend struct {
	findFunc    func(ctx context.Context, email string) (domain.UserProfile, bool, error)
	listFunc    func(ctx context.Context, limit int) ([]domain.UserProfile, error)
	promoteFunc func(ctx context.Context, userID string) error
}

func (b *stubAdminBackend) FindProfileByEmail(ctx context.Context, email string) (domain.UserProfile, bool, error) {
	if b.findFunc == nil {
		return domain.UserProfile{}, false, nil
	}
	return b.findFunc(ctx, email)
}

func (b *stubAdminBackend) ListProfiles(ctx context.Context, limit int) ([]domain.UserProfile, error) {
	if b.listFunc == nil {
		return nil, nil
	}
	return b.listFunc(ctx, limit)
}

func (b *stubAdminBackend) MakeUserAdmin(ctx context.Context, userID string) error {
	if b.promoteFunc == nil {
		return nil
	}
	return b.promoteFunc(ctx, userID)
}

type stubClaimGranter struct {
	grantFunc func(ctx context.Context, uid string) error
	granted   []string
	mu        sync.Mutex
}

func (g *stubClaimGranter) GrantAdminClaim(ctx context.Context, uid string) error {
	g.mu.Lock()
	g.granted = append(g.granted, uid)
	g.mu.Unlock()
	if g.grantFunc == nil {
		return nil
	}
	return g.grantFunc(ctx, uid)
}
