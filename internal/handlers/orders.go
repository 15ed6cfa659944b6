package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/httpx"
	"github.com/lumen-gear/storefront/internal/services"
)

// OrderHandlers exposes the authenticated order history surface.
type OrderHandlers struct {
	profiles services.ProfileService
	carts    services.CartService
}

// NewOrderHandlers constructs the order endpoint handlers.
func NewOrderHandlers(profiles services.ProfileService, carts services.CartService) *OrderHandlers {
	return &OrderHandlers{profiles: profiles, carts: carts}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.list)
	r.Post("/", h.create)
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
	Stale  bool           `json:"stale"`
}

type createOrderRequest struct {
	// BuyNow places the order from the express container instead of the cart.
	BuyNow bool `json:"buyNow"`
}

func (h *OrderHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFromContext(ctx)
	if !ok {
		writeMissingIdentity(ctx, w)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "limit must be a non-negative integer", http.StatusBadRequest))
			return
		}
		limit = parsed
	}

	view, err := h.profiles.ListOrders(ctx, user.ID, limit)
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ordersResponse{Orders: view.Orders, Stale: view.Stale})
}

// create places an order from the current cart or buy-now container, then
// clears the container it consumed.
func (h *OrderHandlers) create(w http.ResponseWriter, r *http.Request) {
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

	var req createOrderRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
			return
		}
	}

	cart, err := h.carts.GetCart(ctx, user.ID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}

	lines := cart.Items
	if req.BuyNow {
		lines = cart.BuyNow
	}
	if len(lines) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("empty_cart", "nothing to order", http.StatusUnprocessableEntity))
		return
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			ImageRef:  line.ImageRef,
		})
	}

	order, err := h.profiles.CreateOrder(ctx, domain.Order{UserID: user.ID, Items: items})
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}

	if req.BuyNow {
		_, err = h.carts.ClearBuyNow(ctx, user.ID)
	} else {
		_, err = h.carts.Clear(ctx, user.ID)
	}
	if err != nil {
		// The order stands even if the container reset fails; report the
		// order and let the client retry the clear.
		httpx.WriteJSON(w, http.StatusCreated, map[string]any{"order": order, "cartCleared": false})
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"order": order, "cartCleared": true})
}
