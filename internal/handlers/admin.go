package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/httpx"
	"github.com/lumen-gear/storefront/internal/services"
)

// AdminHandlers exposes the admin-only user management surface.
type AdminHandlers struct {
	admin services.AdminService
}

// NewAdminHandlers constructs the admin endpoint handlers.
func NewAdminHandlers(admin services.AdminService) *AdminHandlers {
	return &AdminHandlers{admin: admin}
}

// Routes wires the /admin endpoints onto the provided router.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/users", h.listUsers)
	r.Post("/users/elevate", h.elevate)
}

type elevateRequest struct {
	Email string `json:"email"`
}

func (h *AdminHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "limit must be a non-negative integer", http.StatusBadRequest))
			return
		}
		limit = parsed
	}

	users, err := h.admin.ListUsers(ctx, limit)
	if err != nil {
		writeAdminError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *AdminHandlers) elevate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readLimitedBody(r, maxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req elevateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	profile, err := h.admin.ElevateAdmin(ctx, req.Email)
	if err != nil {
		writeAdminError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]domain.UserProfile{"user": profile})
}

func writeAdminError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAdminInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "an email address is required", http.StatusBadRequest))
	case errors.Is(err, services.ErrAdminUserNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("user_not_found", "no account exists for this email", http.StatusNotFound))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_timeout", "request cancelled", 499))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("admin_unavailable", "user backend unavailable", http.StatusServiceUnavailable))
	}
}
