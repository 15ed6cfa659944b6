package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	backendauth "github.com/lumen-gear/storefront/internal/backend/auth"
	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/httpx"
	"github.com/lumen-gear/storefront/internal/services"
)

// SessionHandlers exposes the sign-in/sign-up/sign-out surface.
type SessionHandlers struct {
	sessions services.SessionService
}

// NewSessionHandlers constructs the session endpoint handlers.
func NewSessionHandlers(sessions services.SessionService) *SessionHandlers {
	return &SessionHandlers{sessions: sessions}
}

// Routes wires the /session endpoints onto the provided router.
func (h *SessionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.current)
	r.Post("/sign-in", h.signIn)
	r.Post("/sign-up", h.signUp)
	r.Delete("/", h.signOut)
	r.Post("/password-reset", h.passwordReset)
	r.Post("/password", h.updatePassword)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type sessionPayload struct {
	User         userPayload `json:"user"`
	IDToken      string      `json:"idToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	ExpiresAt    string      `json:"expiresAt,omitempty"`
}

type userPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

type signInResponse struct {
	Session  sessionPayload      `json:"session"`
	Navigate domain.Destination  `json:"navigate"`
	Replay   *replayPayload      `json:"replay,omitempty"`
}

type replayPayload struct {
	Kind        domain.PendingKind `json:"kind"`
	ItemCount   int                `json:"itemCount"`
	Subtotal    int64              `json:"subtotal"`
	BuyNowTotal int64              `json:"buyNowTotal"`
}

func (h *SessionHandlers) signIn(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, false)
}

func (h *SessionHandlers) signUp(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, true)
}

func (h *SessionHandlers) authenticate(w http.ResponseWriter, r *http.Request, signUp bool) {
	ctx := r.Context()

	client := clientID(r)
	if client == "" {
		httpx.WriteError(ctx, w, httpx.NewError("missing_client_id", "X-Client-ID header is required", http.StatusBadRequest))
		return
	}

	req, ok := decodeCredentials(ctx, w, r)
	if !ok {
		return
	}

	var result services.SignInResult
	var err error
	if signUp {
		result, err = h.sessions.SignUp(ctx, client, req.Email, req.Password, req.Name)
	} else {
		result, err = h.sessions.SignIn(ctx, client, req.Email, req.Password)
	}
	if err != nil {
		h.writeSessionError(ctx, w, err)
		return
	}

	response := signInResponse{
		Session:  buildSessionPayload(result.Session),
		Navigate: result.Destination,
	}
	if result.Replay.Performed {
		response.Replay = &replayPayload{
			Kind:        result.Replay.Kind,
			ItemCount:   result.Replay.Cart.ItemCount(),
			Subtotal:    result.Replay.Cart.Subtotal(),
			BuyNowTotal: result.Replay.Cart.BuyNowTotal(),
		}
	}

	status := http.StatusOK
	if signUp {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, response)
}

func (h *SessionHandlers) signOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client := clientID(r)
	if client == "" {
		httpx.WriteError(ctx, w, httpx.NewError("missing_client_id", "X-Client-ID header is required", http.StatusBadRequest))
		return
	}

	if err := h.sessions.SignOut(ctx, client); err != nil {
		h.writeSessionError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"navigate": domain.DestinationHome})
}

func (h *SessionHandlers) current(w http.ResponseWriter, r *http.Request) {
	snapshot := h.sessions.Current(r.Context(), clientID(r))

	payload := map[string]any{
		"isAuthenticated":   snapshot.IsAuthenticated,
		"isAdmin":           snapshot.IsAdmin,
		"loading":           snapshot.Loading,
		"adminCheckLoading": snapshot.AdminCheckLoading,
	}
	if snapshot.User != nil {
		payload["user"] = userPayload{
			ID:          snapshot.User.ID,
			Email:       snapshot.User.Email,
			DisplayName: snapshot.User.DisplayName,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *SessionHandlers) passwordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := decodeCredentials(ctx, w, r)
	if !ok {
		return
	}

	if err := h.sessions.RequestPasswordReset(ctx, req.Email); err != nil {
		h.writeSessionError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, map[string]any{"status": "reset_email_sent"})
}

type updatePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (h *SessionHandlers) updatePassword(w http.ResponseWriter, r *http.Request) {
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

	var req updatePasswordRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	session, err := h.sessions.UpdatePassword(ctx, client, req.NewPassword)
	if err != nil {
		h.writeSessionError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"session": buildSessionPayload(session)})
}

func (h *SessionHandlers) writeSessionError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSessionInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "email and password are required", http.StatusBadRequest))
	case errors.Is(err, services.ErrSessionInvalidCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "email or password is incorrect", http.StatusUnauthorized))
	case errors.Is(err, services.ErrSessionEmailInUse):
		httpx.WriteError(ctx, w, httpx.NewError("email_in_use", "an account already exists for this email", http.StatusConflict))
	case errors.Is(err, services.ErrSessionWeakPassword):
		httpx.WriteError(ctx, w, httpx.NewError("weak_password", "password does not meet requirements", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrSessionUnauthenticated):
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_timeout", "request cancelled", 499))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "authentication backend unavailable", http.StatusServiceUnavailable))
	}
}

func decodeCredentials(ctx context.Context, w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	body, err := readLimitedBody(r, maxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return credentialsRequest{}, false
	}

	var req credentialsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return credentialsRequest{}, false
	}
	return req, true
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		return
	}
	httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unable to read request body", http.StatusBadRequest))
}

func buildSessionPayload(session backendauth.Session) sessionPayload {
	payload := sessionPayload{
		User: userPayload{
			ID:          session.User.ID,
			Email:       session.User.Email,
			DisplayName: session.User.DisplayName,
		},
		IDToken:      session.IDToken,
		RefreshToken: session.RefreshToken,
	}
	if !session.ExpiresAt.IsZero() {
		payload.ExpiresAt = session.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return payload
}
