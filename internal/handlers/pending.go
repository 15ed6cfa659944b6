package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/httpx"
	"github.com/lumen-gear/storefront/internal/services"
)

// PendingHandlers exposes the deferred-intent slot. These endpoints are
// public: a guest arms the slot before any credentials exist, keyed only
// by the client identifier header.
type PendingHandlers struct {
	pending services.PendingActionService
}

// NewPendingHandlers constructs the pending-action endpoint handlers.
func NewPendingHandlers(pending services.PendingActionService) *PendingHandlers {
	return &PendingHandlers{pending: pending}
}

// Routes wires the /pending endpoints onto the provided router.
func (h *PendingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Put("/", h.arm)
	r.Get("/", h.peek)
	r.Delete("/", h.disarm)
}

type armRequest struct {
	Kind     domain.PendingKind `json:"kind"`
	Product  productPayload     `json:"product"`
	Quantity int                `json:"quantity"`
}

type pendingResponse struct {
	Armed    bool               `json:"armed"`
	Kind     domain.PendingKind `json:"kind,omitempty"`
	Product  *productPayload    `json:"product,omitempty"`
	Quantity int                `json:"quantity,omitempty"`
	ArmedAt  string             `json:"armedAt,omitempty"`
}

func (h *PendingHandlers) arm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client := clientID(r)
	if client == "" {
		httpx.WriteError(ctx, w, httpx.NewError("missing_client_id", "X-Client-ID header is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req armRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	err = h.pending.Arm(ctx, client, domain.PendingAction{
		Kind: req.Kind,
		Product: domain.Product{
			ID:        req.Product.ID,
			Name:      req.Product.Name,
			UnitPrice: req.Product.UnitPrice,
			ImageRef:  req.Product.ImageRef,
		},
		Quantity: req.Quantity,
	})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "a valid kind and product are required", http.StatusBadRequest))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "armed"})
}

func (h *PendingHandlers) peek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client := clientID(r)
	if client == "" {
		httpx.WriteError(ctx, w, httpx.NewError("missing_client_id", "X-Client-ID header is required", http.StatusBadRequest))
		return
	}

	action, ok := h.pending.Peek(ctx, client)
	if !ok {
		httpx.WriteJSON(w, http.StatusOK, pendingResponse{Armed: false})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pendingResponse{
		Armed: true,
		Kind:  action.Kind,
		Product: &productPayload{
			ID:        action.Product.ID,
			Name:      action.Product.Name,
			UnitPrice: action.Product.UnitPrice,
			ImageRef:  action.Product.ImageRef,
		},
		Quantity: action.Quantity,
		ArmedAt:  action.ArmedAt.UTC().Format(time.RFC3339),
	})
}

func (h *PendingHandlers) disarm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client := clientID(r)
	if client == "" {
		httpx.WriteError(ctx, w, httpx.NewError("missing_client_id", "X-Client-ID header is required", http.StatusBadRequest))
		return
	}

	if err := h.pending.Disarm(ctx, client); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unable to disarm pending action", http.StatusBadRequest))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "disarmed"})
}
