package handlers

import (
	"context"

	backendauth "github.com/lumen-gear/storefront/internal/backend/auth"
	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/services"
)

type stubCartService struct {
	getFunc         func(ctx context.Context, userID string) (domain.Cart, error)
	addFunc         func(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Cart, error)
	removeFunc      func(ctx context.Context, userID, productID string) (domain.Cart, error)
	setQuantityFunc func(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error)
	clearFunc       func(ctx context.Context, userID string) (domain.Cart, error)
	buyNowFunc      func(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Cart, error)
	clearBuyNowFunc func(ctx context.Context, userID string) (domain.Cart, error)
}

func (s *stubCartService) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, userID)
	}
	return domain.Cart{UserID: userID}, nil
}

func (s *stubCartService) AddItem(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Cart, error) {
	if s.addFunc != nil {
		return s.addFunc(ctx, userID, product, quantity)
	}
	return domain.Cart{UserID: userID}, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	if s.removeFunc != nil {
		return s.removeFunc(ctx, userID, productID)
	}
	return domain.Cart{UserID: userID}, nil
}

func (s *stubCartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	if s.setQuantityFunc != nil {
		return s.setQuantityFunc(ctx, userID, productID, quantity)
	}
	return domain.Cart{UserID: userID}, nil
}

func (s *stubCartService) Clear(ctx context.Context, userID string) (domain.Cart, error) {
	if s.clearFunc != nil {
		return s.clearFunc(ctx, userID)
	}
	return domain.Cart{UserID: userID}, nil
}

func (s *stubCartService) AddToBuyNow(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Cart, error) {
	if s.buyNowFunc != nil {
		return s.buyNowFunc(ctx, userID, product, quantity)
	}
	return domain.Cart{UserID: userID}, nil
}

func (s *stubCartService) ClearBuyNow(ctx context.Context, userID string) (domain.Cart, error) {
	if s.clearBuyNowFunc != nil {
		return s.clearBuyNowFunc(ctx, userID)
	}
	return domain.Cart{UserID: userID}, nil
}

type stubSessionService struct {
	signInFunc   func(ctx context.Context, clientID, email, password string) (services.SignInResult, error)
	signUpFunc   func(ctx context.Context, clientID, email, password, displayName string) (services.SignInResult, error)
	signOutFunc  func(ctx context.Context, clientID string) error
	resetFunc    func(ctx context.Context, email string) error
	passwordFunc func(ctx context.Context, clientID, newPassword string) (backendauth.Session, error)
	verifyFunc   func(ctx context.Context, idToken string) (domain.User, error)
	currentFunc  func(ctx context.Context, clientID string) domain.SessionSnapshot
}

func (s *stubSessionService) SignIn(ctx context.Context, clientID, email, password string) (services.SignInResult, error) {
	if s.signInFunc != nil {
		return s.signInFunc(ctx, clientID, email, password)
	}
	return services.SignInResult{}, nil
}

func (s *stubSessionService) SignUp(ctx context.Context, clientID, email, password, displayName string) (services.SignInResult, error) {
	if s.signUpFunc != nil {
		return s.signUpFunc(ctx, clientID, email, password, displayName)
	}
	return services.SignInResult{}, nil
}

func (s *stubSessionService) SignOut(ctx context.Context, clientID string) error {
	if s.signOutFunc != nil {
		return s.signOutFunc(ctx, clientID)
	}
	return nil
}

func (s *stubSessionService) RequestPasswordReset(ctx context.Context, email string) error {
	if s.resetFunc != nil {
		return s.resetFunc(ctx, email)
	}
	return nil
}

func (s *stubSessionService) UpdatePassword(ctx context.Context, clientID, newPassword string) (backendauth.Session, error) {
	if s.passwordFunc != nil {
		return s.passwordFunc(ctx, clientID, newPassword)
	}
	return backendauth.Session{}, nil
}

func (s *stubSessionService) Verify(ctx context.Context, idToken string) (domain.User, error) {
	if s.verifyFunc != nil {
		return s.verifyFunc(ctx, idToken)
	}
	return domain.User{}, services.ErrSessionUnauthenticated
}

func (s *stubSessionService) Current(ctx context.Context, clientID string) domain.SessionSnapshot {
	if s.currentFunc != nil {
		return s.currentFunc(ctx, clientID)
	}
	return domain.SessionSnapshot{}
}

func (s *stubSessionService) Subscribe() (<-chan services.AuthEvent, func()) {
	events := make(chan services.AuthEvent)
	return events, func() {}
}

type stubProfileService struct {
	getFunc    func(ctx context.Context, user domain.User) (services.ProfileView, error)
	updateFunc func(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
	listFunc   func(ctx context.Context, userID string, limit int) (services.OrdersView, error)
	createFunc func(ctx context.Context, order domain.Order) (domain.Order, error)
	evictFunc  func(ctx context.Context, userID string) error
}

func (s *stubProfileService) GetProfile(ctx context.Context, user domain.User) (services.ProfileView, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, user)
	}
	return services.ProfileView{Profile: domain.UserProfile{ID: user.ID, Email: user.Email}}, nil
}

func (s *stubProfileService) UpdateProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, profile)
	}
	return profile, nil
}

func (s *stubProfileService) ListOrders(ctx context.Context, userID string, limit int) (services.OrdersView, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, userID, limit)
	}
	return services.OrdersView{}, nil
}

func (s *stubProfileService) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, order)
	}
	return order, nil
}

func (s *stubProfileService) EvictUser(ctx context.Context, userID string) error {
	if s.evictFunc != nil {
		return s.evictFunc(ctx, userID)
	}
	return nil
}

type stubAdminService struct {
	listFunc    func(ctx context.Context, limit int) ([]domain.UserProfile, error)
	elevateFunc func(ctx context.Context, email string) (domain.UserProfile, error)
}

func (s *stubAdminService) ListUsers(ctx context.Context, limit int) ([]domain.UserProfile, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, limit)
	}
	return nil, nil
}

func (s *stubAdminService) ElevateAdmin(ctx context.Context, email string) (domain.UserProfile, error) {
	if s.elevateFunc != nil {
		return s.elevateFunc(ctx, email)
	}
	return domain.UserProfile{Email: email, Role: "admin"}, nil
}
