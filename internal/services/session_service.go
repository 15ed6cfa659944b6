package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	backendauth "github.com/lumen-gear/storefront/internal/backend/auth"
	"github.com/lumen-gear/storefront/internal/domain"
)

var (
	errSessionAuthRequired     = errors.New("session service: auth gateway is required")
	errSessionVerifierRequired = errors.New("session service: verifier is required")
	errSessionPendingRequired  = errors.New("session service: pending action service is required")
	errSessionCartsRequired    = errors.New("session service: cart service is required")
)

// ErrSessionInvalidInput indicates the caller supplied invalid input.
var ErrSessionInvalidInput = errors.New("session service: invalid input")

// ErrSessionInvalidCredentials indicates the email/password pair was rejected.
var ErrSessionInvalidCredentials = errors.New("session service: invalid credentials")

// ErrSessionEmailInUse indicates sign-up hit an existing account.
var ErrSessionEmailInUse = errors.New("session service: email already in use")

// ErrSessionWeakPassword indicates the password failed backend policy.
var ErrSessionWeakPassword = errors.New("session service: weak password")

// ErrSessionUnauthenticated indicates no valid session backs the request.
var ErrSessionUnauthenticated = errors.New("session service: unauthenticated")

// ErrSessionUnavailable indicates the auth backend cannot be reached.
var ErrSessionUnavailable = errors.New("session service: unavailable")

// AuthGateway is the password-auth slice of the backend auth client.
type AuthGateway interface {
	SignInWithPassword(ctx context.Context, email, password string) (backendauth.Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (backendauth.Session, error)
	SendPasswordReset(ctx context.Context, email, continueURL string) error
	UpdatePassword(ctx context.Context, idToken, newPassword string) (backendauth.Session, error)
}

// SessionVerifier validates bearer tokens and revokes refresh tokens.
type SessionVerifier interface {
	VerifySession(ctx context.Context, idToken string) (domain.User, map[string]interface{}, error)
	RevokeSessions(ctx context.Context, uid string) error
}

// AdminChecker resolves the admin routing hint for a signed-in user.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// AuthEventType discriminates auth-state change events.
type AuthEventType string

const (
	// AuthEventSignedIn fires after a successful sign-in or sign-up.
	AuthEventSignedIn AuthEventType = "signed_in"
	// AuthEventSignedOut fires after sign-out.
	AuthEventSignedOut AuthEventType = "signed_out"
)

// AuthEvent is delivered to auth-state subscribers.
type AuthEvent struct {
	Type     AuthEventType
	ClientID string
	User     domain.User
}

// PendingReplay describes what a consumed pending action did after sign-in.
type PendingReplay struct {
	Performed   bool
	Kind        domain.PendingKind
	Cart        domain.Cart
	Destination domain.Destination
}

// SignInResult bundles the minted session with the pending-action replay
// outcome and the destination the client should navigate to.
type SignInResult struct {
	Session     backendauth.Session
	Replay      PendingReplay
	Destination domain.Destination
}

// SessionService wraps the backend auth client and owns per-client session
// state: the auth snapshot, the admin hint, and pending-action replay.
type SessionService interface {
	SignIn(ctx context.Context, clientID, email, password string) (SignInResult, error)
	SignUp(ctx context.Context, clientID, email, password, displayName string) (SignInResult, error)
	SignOut(ctx context.Context, clientID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, clientID, newPassword string) (backendauth.Session, error)
	Verify(ctx context.Context, idToken string) (domain.User, error)
	Current(ctx context.Context, clientID string) domain.SessionSnapshot
	Subscribe() (<-chan AuthEvent, func())
}

// SessionServiceDeps wires the backend clients and collaborating services.
type SessionServiceDeps struct {
	Auth     AuthGateway
	Verifier SessionVerifier
	Admin    AdminChecker
	Pending  PendingActionService
	Carts    CartService

	ResetRedirectURL  string
	AdminCheckTimeout time.Duration

	Clock  func() time.Time
	Logger func(context.Context, string, map[string]any)
}

type clientSession struct {
	user              domain.User
	idToken           string
	authenticated     bool
	isAdmin           bool
	adminCheckLoading bool
	// generation increments on every sign-in and sign-out; async admin
	// lookups carry the generation they started under and stale results
	// are dropped.
	generation uint64
}

type sessionService struct {
	auth     AuthGateway
	verifier SessionVerifier
	admin    AdminChecker
	pending  PendingActionService
	carts    CartService

	resetRedirectURL  string
	adminCheckTimeout time.Duration

	now    func() time.Time
	logger func(context.Context, string, map[string]any)

	mu       sync.Mutex
	sessions map[string]*clientSession

	subMu       sync.Mutex
	subscribers map[int]chan AuthEvent
	nextSubID   int
}

// NewSessionService constructs a SessionService enforcing dependency validation.
func NewSessionService(deps SessionServiceDeps) (SessionService, error) {
	if deps.Auth == nil {
		return nil, errSessionAuthRequired
	}
	if deps.Verifier == nil {
		return nil, errSessionVerifierRequired
	}
	if deps.Pending == nil {
		return nil, errSessionPendingRequired
	}
	if deps.Carts == nil {
		return nil, errSessionCartsRequired
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	timeout := deps.AdminCheckTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &sessionService{
		auth:              deps.Auth,
		verifier:          deps.Verifier,
		admin:             deps.Admin,
		pending:           deps.Pending,
		carts:             deps.Carts,
		resetRedirectURL:  strings.TrimSpace(deps.ResetRedirectURL),
		adminCheckTimeout: timeout,
		now:               func() time.Time { return clock().UTC() },
		logger:            logger,
		sessions:          make(map[string]*clientSession),
		subscribers:       make(map[int]chan AuthEvent),
	}, nil
}

// SignIn authenticates the client and, on success, consumes any armed
// pending action. A failed sign-in leaves the armed intent untouched.
func (s *sessionService) SignIn(ctx context.Context, clientID, email, password string) (SignInResult, error) {
	clientID = strings.TrimSpace(clientID)
	email = strings.TrimSpace(email)
	if clientID == "" || email == "" || password == "" {
		return SignInResult{}, ErrSessionInvalidInput
	}

	session, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return SignInResult{}, s.translateAuthError(ctx, "session.sign_in_failed", email, err)
	}

	return s.establish(ctx, clientID, session, "session.signed_in")
}

// SignUp registers a new account and establishes the session the same way a
// successful sign-in does, including pending-action replay.
func (s *sessionService) SignUp(ctx context.Context, clientID, email, password, displayName string) (SignInResult, error) {
	clientID = strings.TrimSpace(clientID)
	email = strings.TrimSpace(email)
	if clientID == "" || email == "" || password == "" {
		return SignInResult{}, ErrSessionInvalidInput
	}

	session, err := s.auth.SignUp(ctx, email, password, displayName)
	if err != nil {
		return SignInResult{}, s.translateAuthError(ctx, "session.sign_up_failed", email, err)
	}

	return s.establish(ctx, clientID, session, "session.signed_up")
}

func (s *sessionService) establish(ctx context.Context, clientID string, session backendauth.Session, event string) (SignInResult, error) {
	s.mu.Lock()
	state := s.sessions[clientID]
	if state == nil {
		state = &clientSession{}
		s.sessions[clientID] = state
	}
	state.generation++
	generation := state.generation
	state.user = session.User
	state.idToken = session.IDToken
	state.authenticated = true
	state.isAdmin = false
	state.adminCheckLoading = s.admin != nil
	s.mu.Unlock()

	s.logger(ctx, event, map[string]any{
		"clientID": clientID,
		"userID":   session.User.ID,
	})

	if s.admin != nil {
		go s.resolveAdminHint(clientID, session.User.ID, generation)
	}

	result := SignInResult{
		Session:     session,
		Destination: domain.DestinationHome,
	}

	action, armed := s.pending.Consume(ctx, clientID)
	if armed {
		replay, err := s.replayPendingAction(ctx, session.User.ID, action)
		if err != nil {
			// The session stands even when replay fails; surface the cart
			// state the client already had.
			s.logger(ctx, "session.pending_replay_failed", map[string]any{
				"clientID": clientID,
				"kind":     string(action.Kind),
				"error":    err.Error(),
			})
		} else {
			result.Replay = replay
			result.Destination = replay.Destination
		}
	}

	s.publish(AuthEvent{Type: AuthEventSignedIn, ClientID: clientID, User: session.User})
	return result, nil
}

func (s *sessionService) replayPendingAction(ctx context.Context, userID string, action domain.PendingAction) (PendingReplay, error) {
	switch action.Kind {
	case domain.PendingCart:
		cart, err := s.carts.AddItem(ctx, userID, action.Product, action.Quantity)
		if err != nil {
			return PendingReplay{}, err
		}
		return PendingReplay{
			Performed:   true,
			Kind:        domain.PendingCart,
			Cart:        cart,
			Destination: domain.DestinationCart,
		}, nil

	case domain.PendingBuyNow:
		cart, err := s.carts.AddToBuyNow(ctx, userID, action.Product, action.Quantity)
		if err != nil {
			return PendingReplay{}, err
		}
		return PendingReplay{
			Performed:   true,
			Kind:        domain.PendingBuyNow,
			Cart:        cart,
			Destination: domain.DestinationCheckout,
		}, nil
	}
	return PendingReplay{}, ErrPendingInvalidInput
}

// resolveAdminHint runs the async role lookup. A lookup failure reads as
// not-admin; the result is dropped when the session generation moved on.
func (s *sessionService) resolveAdminHint(clientID, userID string, generation uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.adminCheckTimeout)
	defer cancel()

	isAdmin, err := s.admin.IsAdmin(ctx, userID)
	if err != nil {
		s.logger(ctx, "session.admin_check_failed", map[string]any{
			"clientID": clientID,
			"userID":   userID,
			"error":    err.Error(),
		})
		isAdmin = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.sessions[clientID]
	if state == nil || state.generation != generation {
		return
	}
	state.isAdmin = isAdmin
	state.adminCheckLoading = false
}

// SignOut revokes backend refresh tokens, clears the admin hint, and
// disarms any pending action. Idempotent for unknown clients.
func (s *sessionService) SignOut(ctx context.Context, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return ErrSessionInvalidInput
	}

	s.mu.Lock()
	state := s.sessions[clientID]
	var user domain.User
	wasAuthenticated := false
	if state != nil {
		user = state.user
		wasAuthenticated = state.authenticated
		state.generation++
		state.user = domain.User{}
		state.idToken = ""
		state.authenticated = false
		state.isAdmin = false
		state.adminCheckLoading = false
	}
	s.mu.Unlock()

	_ = s.pending.Disarm(ctx, clientID)

	if !wasAuthenticated {
		return nil
	}

	if err := s.verifier.RevokeSessions(ctx, user.ID); err != nil {
		// Local state is already cleared; revocation failure only delays
		// remote token expiry.
		s.logger(ctx, "session.revoke_failed", map[string]any{
			"clientID": clientID,
			"userID":   user.ID,
			"error":    err.Error(),
		})
	}

	s.logger(ctx, "session.signed_out", map[string]any{
		"clientID": clientID,
		"userID":   user.ID,
	})
	s.publish(AuthEvent{Type: AuthEventSignedOut, ClientID: clientID, User: user})
	return nil
}

// RequestPasswordReset dispatches the reset email with the configured
// return target. Unknown addresses surface as invalid input upstream.
func (s *sessionService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrSessionInvalidInput
	}
	if err := s.auth.SendPasswordReset(ctx, email, s.resetRedirectURL); err != nil {
		return s.translateAuthError(ctx, "session.reset_request_failed", email, err)
	}
	s.logger(ctx, "session.reset_requested", map[string]any{"email": email})
	return nil
}

// UpdatePassword sets a new password for the client's current session and
// refreshes the stored token with the re-minted one.
func (s *sessionService) UpdatePassword(ctx context.Context, clientID, newPassword string) (backendauth.Session, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" || newPassword == "" {
		return backendauth.Session{}, ErrSessionInvalidInput
	}

	s.mu.Lock()
	state := s.sessions[clientID]
	var idToken string
	if state != nil && state.authenticated {
		idToken = state.idToken
	}
	s.mu.Unlock()

	if idToken == "" {
		return backendauth.Session{}, ErrSessionUnauthenticated
	}

	session, err := s.auth.UpdatePassword(ctx, idToken, newPassword)
	if err != nil {
		return backendauth.Session{}, s.translateAuthError(ctx, "session.password_update_failed", clientID, err)
	}

	s.mu.Lock()
	if state := s.sessions[clientID]; state != nil && state.authenticated {
		if session.IDToken != "" {
			state.idToken = session.IDToken
		}
		if session.User.ID != "" {
			state.user = session.User
		}
	}
	s.mu.Unlock()

	s.logger(ctx, "session.password_updated", map[string]any{"clientID": clientID})
	return session, nil
}

// Verify validates a bearer token independent of the client registry.
func (s *sessionService) Verify(ctx context.Context, idToken string) (domain.User, error) {
	user, _, err := s.verifier.VerifySession(ctx, idToken)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.User{}, err
		}
		return domain.User{}, ErrSessionUnauthenticated
	}
	return user, nil
}

// Current returns the point-in-time snapshot for the client. Unknown
// clients read as resolved and unauthenticated.
func (s *sessionService) Current(ctx context.Context, clientID string) domain.SessionSnapshot {
	clientID = strings.TrimSpace(clientID)

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.sessions[clientID]
	if state == nil || !state.authenticated {
		return domain.SessionSnapshot{}
	}

	user := state.user
	return domain.SessionSnapshot{
		User:              &user,
		IsAuthenticated:   true,
		IsAdmin:           state.isAdmin,
		AdminCheckLoading: state.adminCheckLoading,
	}
}

// Subscribe registers an auth-state listener. Slow consumers drop events
// rather than blocking sign-in.
func (s *sessionService) Subscribe() (<-chan AuthEvent, func()) {
	ch := make(chan AuthEvent, 8)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if existing, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(existing)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *sessionService) publish(event AuthEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (s *sessionService) translateAuthError(ctx context.Context, event, subject string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	s.logger(ctx, event, map[string]any{
		"subject": subject,
		"error":   err.Error(),
	})

	switch {
	case errors.Is(err, backendauth.ErrInvalidCredentials),
		errors.Is(err, backendauth.ErrUserNotFound),
		errors.Is(err, backendauth.ErrUserDisabled):
		return ErrSessionInvalidCredentials
	case errors.Is(err, backendauth.ErrEmailAlreadyInUse):
		return ErrSessionEmailInUse
	case errors.Is(err, backendauth.ErrWeakPassword):
		return ErrSessionWeakPassword
	case errors.Is(err, backendauth.ErrTokenInvalid):
		return ErrSessionUnauthenticated
	default:
		return ErrSessionUnavailable
	}
}
