package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/httpx"
	"github.com/lumen-gear/storefront/internal/services"
)

// CartHandlers exposes the authenticated cart surface.
type CartHandlers struct {
	carts services.CartService
}

// NewCartHandlers constructs the cart endpoint handlers.
func NewCartHandlers(carts services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.get)
	r.Delete("/", h.clear)
	r.Post("/items", h.addItem)
	r.Put("/items/{productID}", h.setQuantity)
	r.Delete("/items/{productID}", h.removeItem)
	r.Put("/buy-now", h.setBuyNow)
	r.Delete("/buy-now", h.clearBuyNow)
}

type productPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	ImageRef  string `json:"imageRef,omitempty"`
}

type addItemRequest struct {
	Product  productPayload `json:"product"`
	Quantity int            `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Cart        domain.Cart `json:"cart"`
	ItemCount   int         `json:"itemCount"`
	Subtotal    int64       `json:"subtotal"`
	BuyNowTotal int64       `json:"buyNowTotal"`
}

func (h *CartHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFromContext(ctx)
	if !ok {
		writeMissingIdentity(ctx, w)
		return
	}

	cart, err := h.carts.GetCart(ctx, user.ID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFromContext(ctx)
	if !ok {
		writeMissingIdentity(ctx, w)
		return
	}

	body, err := readLimitedBody(r, maxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req addItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.AddItem(ctx, user.ID, domain.Product{
		ID:        req.Product.ID,
		Name:      req.Product.Name,
		UnitPrice: req.Product.UnitPrice,
		ImageRef:  req.Product.ImageRef,
	}, req.Quantity)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandlers) setQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFromContext(ctx)
	if !ok {
		writeMissingIdentity(ctx, w)
		return
	}

	body, err := readLimitedBody(r, maxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req setQuantityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.SetQuantity(ctx, user.ID, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFromContext(ctx)
	if !ok {
		writeMissingIdentity(ctx, w)
		return
	}

	cart, err := h.carts.RemoveItem(ctx, user.ID, chi.URLParam(r, "productID"))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandlers) clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFromContext(ctx)
	if !ok {
		writeMissingIdentity(ctx, w)
		return
	}

	cart, err := h.carts.Clear(ctx, user.ID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandlers) setBuyNow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFromContext(ctx)
	if !ok {
		writeMissingIdentity(ctx, w)
		return
	}

	body, err := readLimitedBody(r, maxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req addItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.AddToBuyNow(ctx, user.ID, domain.Product{
		ID:        req.Product.ID,
		Name:      req.Product.Name,
		UnitPrice: req.Product.UnitPrice,
		ImageRef:  req.Product.ImageRef,
	}, req.Quantity)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandlers) clearBuyNow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFromContext(ctx)
	if !ok {
		writeMissingIdentity(ctx, w)
		return
	}

	cart, err := h.carts.ClearBuyNow(ctx, user.ID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

func writeCart(w http.ResponseWriter, status int, cart domain.Cart) {
	httpx.WriteJSON(w, status, cartResponse{
		Cart:        cart,
		ItemCount:   cart.ItemCount(),
		Subtotal:    cart.Subtotal(),
		BuyNowTotal: cart.BuyNowTotal(),
	})
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product and quantity are required", http.StatusBadRequest))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_timeout", "request cancelled", 499))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart storage unavailable", http.StatusServiceUnavailable))
	}
}

func writeMissingIdentity(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
}
