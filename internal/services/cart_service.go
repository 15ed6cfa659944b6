package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/repositories"
)

var errCartRepositoryRequired = errors.New("cart service: repository is required")

const (
	minLineQuantity = 1
	maxLineQuantity = 99
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartUnavailable indicates the cart service cannot fulfil the request due to missing dependencies or backend issues.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// CartService owns the per-user cart and the separate buy-now container.
// Every mutation persists the whole cart through the repository.
type CartService interface {
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
	AddItem(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error)
	Clear(ctx context.Context, userID string) (domain.Cart, error)
	AddToBuyNow(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Cart, error)
	ClearBuyNow(ctx context.Context, userID string) (domain.Cart, error)
}

// CartServiceDeps wires the repository and ambient dependencies for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo   repositories.CartRepository
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		repo:   deps.Repository,
		now:    func() time.Time { return clock().UTC() },
		logger: logger,
	}, nil
}

// GetCart loads the persisted cart for the user.
func (s *cartService) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, s.translateRepoError(ctx, "cart.load_failed", uid, err)
	}
	return cart, nil
}

// AddItem merges the product into the cart: an existing line for the same
// product increments, a new product appends. Not idempotent.
func (s *cartService) AddItem(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Cart, error) {
	uid := strings.TrimSpace(userID)
	productID := strings.TrimSpace(product.ID)
	if uid == "" || productID == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}
	if quantity < minLineQuantity {
		quantity = minLineQuantity
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, s.translateRepoError(ctx, "cart.load_failed", uid, err)
	}

	now := s.now()
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = clampQuantity(cart.Items[i].Quantity + quantity)
			cart.Items[i].UpdatedAt = now
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, newCartLine(product, clampQuantity(quantity), now))
	}

	saved, err := s.persist(ctx, uid, cart, now)
	if err != nil {
		return domain.Cart{}, err
	}

	s.logger(ctx, "cart.item_added", map[string]any{
		"userID":    uid,
		"productID": productID,
		"merged":    merged,
		"itemCount": saved.ItemCount(),
	})
	return saved, nil
}

// RemoveItem deletes the product's line. Removing an absent product is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	uid := strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	if uid == "" || productID == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, s.translateRepoError(ctx, "cart.load_failed", uid, err)
	}

	filtered := cart.Items[:0]
	removed := false
	for _, line := range cart.Items {
		if line.ProductID == productID {
			removed = true
			continue
		}
		filtered = append(filtered, line)
	}
	if !removed {
		return cart, nil
	}
	cart.Items = filtered

	saved, err := s.persist(ctx, uid, cart, s.now())
	if err != nil {
		return domain.Cart{}, err
	}

	s.logger(ctx, "cart.item_removed", map[string]any{
		"userID":    uid,
		"productID": productID,
	})
	return saved, nil
}

// SetQuantity pins a line to an absolute quantity. Zero or negative removes
// the line; oversized values clamp to the per-line maximum. Idempotent.
func (s *cartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	uid := strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	if uid == "" || productID == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, s.translateRepoError(ctx, "cart.load_failed", uid, err)
	}

	now := s.now()
	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = clampQuantity(quantity)
			cart.Items[i].UpdatedAt = now
			found = true
			break
		}
	}
	if !found {
		return cart, nil
	}

	saved, err := s.persist(ctx, uid, cart, now)
	if err != nil {
		return domain.Cart{}, err
	}

	s.logger(ctx, "cart.quantity_set", map[string]any{
		"userID":    uid,
		"productID": productID,
		"quantity":  clampQuantity(quantity),
	})
	return saved, nil
}

// Clear empties the cart, the post-checkout reset. Idempotent.
func (s *cartService) Clear(ctx context.Context, userID string) (domain.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, s.translateRepoError(ctx, "cart.load_failed", uid, err)
	}
	cart.Items = nil

	saved, err := s.persist(ctx, uid, cart, s.now())
	if err != nil {
		return domain.Cart{}, err
	}

	s.logger(ctx, "cart.cleared", map[string]any{"userID": uid})
	return saved, nil
}

// AddToBuyNow replaces the buy-now container with a single sized line. The
// express flow never merges into the regular cart.
func (s *cartService) AddToBuyNow(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" || strings.TrimSpace(product.ID) == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}
	if quantity < minLineQuantity {
		quantity = minLineQuantity
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, s.translateRepoError(ctx, "cart.load_failed", uid, err)
	}

	now := s.now()
	cart.BuyNow = []domain.CartLine{newCartLine(product, clampQuantity(quantity), now)}

	saved, err := s.persist(ctx, uid, cart, now)
	if err != nil {
		return domain.Cart{}, err
	}

	s.logger(ctx, "cart.buy_now_set", map[string]any{
		"userID":    uid,
		"productID": strings.TrimSpace(product.ID),
		"quantity":  clampQuantity(quantity),
	})
	return saved, nil
}

// ClearBuyNow empties the buy-now container. Idempotent.
func (s *cartService) ClearBuyNow(ctx context.Context, userID string) (domain.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, s.translateRepoError(ctx, "cart.load_failed", uid, err)
	}
	cart.BuyNow = nil

	saved, err := s.persist(ctx, uid, cart, s.now())
	if err != nil {
		return domain.Cart{}, err
	}

	s.logger(ctx, "cart.buy_now_cleared", map[string]any{"userID": uid})
	return saved, nil
}

func (s *cartService) persist(ctx context.Context, uid string, cart domain.Cart, now time.Time) (domain.Cart, error) {
	cart.UserID = uid
	cart.UpdatedAt = now
	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return domain.Cart{}, s.translateRepoError(ctx, "cart.save_failed", uid, err)
	}
	return cart, nil
}

func (s *cartService) translateRepoError(ctx context.Context, event, uid string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.logger(ctx, event, map[string]any{
		"userID": uid,
		"error":  err.Error(),
	})
	return ErrCartUnavailable
}

func newCartLine(product domain.Product, quantity int, now time.Time) domain.CartLine {
	return domain.CartLine{
		ProductID: strings.TrimSpace(product.ID),
		Name:      strings.TrimSpace(product.Name),
		UnitPrice: product.UnitPrice,
		Quantity:  quantity,
		ImageRef:  strings.TrimSpace(product.ImageRef),
		AddedAt:   now,
		UpdatedAt: now,
	}
}

func clampQuantity(quantity int) int {
	if quantity < minLineQuantity {
		return minLineQuantity
	}
	if quantity > maxLineQuantity {
		return maxLineQuantity
	}
	return quantity
}
