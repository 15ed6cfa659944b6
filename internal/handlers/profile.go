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

// ProfileHandlers exposes the authenticated profile surface.
type ProfileHandlers struct {
	profiles services.ProfileService
}

// NewProfileHandlers constructs the profile endpoint handlers.
func NewProfileHandlers(profiles services.ProfileService) *ProfileHandlers {
	return &ProfileHandlers{profiles: profiles}
}

// Routes wires the /profile endpoints onto the provided router.
func (h *ProfileHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.get)
	r.Put("/", h.update)
}

type profileResponse struct {
	Profile domain.UserProfile `json:"profile"`
	Stale   bool               `json:"stale"`
}

type updateProfileRequest struct {
	Name        string         `json:"name"`
	PhoneNumber string         `json:"phoneNumber"`
	Address     domain.Address `json:"address"`
	ImageRef    string         `json:"imageRef"`
}

func (h *ProfileHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFromContext(ctx)
	if !ok {
		writeMissingIdentity(ctx, w)
		return
	}

	view, err := h.profiles.GetProfile(ctx, user)
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profileResponse{Profile: view.Profile, Stale: view.Stale})
}

func (h *ProfileHandlers) update(w http.ResponseWriter, r *http.Request) {
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

	var req updateProfileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	saved, err := h.profiles.UpdateProfile(ctx, domain.UserProfile{
		ID:          user.ID,
		Name:        req.Name,
		Email:       user.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		ImageRef:    req.ImageRef,
	})
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profileResponse{Profile: saved})
}

func writeProfileError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProfileInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "a user identifier is required", http.StatusBadRequest))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_timeout", "request cancelled", 499))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("profile_unavailable", "profile backend unavailable", http.StatusServiceUnavailable))
	}
}
