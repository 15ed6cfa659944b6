package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lumen-gear/storefront/internal/domain"
)

// ErrPendingInvalidInput indicates the caller supplied invalid input.
var ErrPendingInvalidInput = errors.New("pending action: invalid input")

// PendingActionService is the one-deep deferred-intent slot. A guest who
// tries to buy before signing in has that intent parked here, keyed by the
// pre-auth client identifier, and replayed exactly once after sign-in.
type PendingActionService interface {
	// Arm records the intent, replacing any previous one. Last writer wins.
	Arm(ctx context.Context, clientID string, action domain.PendingAction) error
	// Peek returns the armed intent without consuming it.
	Peek(ctx context.Context, clientID string) (domain.PendingAction, bool)
	// Consume atomically empties the slot and returns what was armed.
	// A second consume observes an empty slot.
	Consume(ctx context.Context, clientID string) (domain.PendingAction, bool)
	// Disarm empties the slot without replay. Idempotent.
	Disarm(ctx context.Context, clientID string) error
}

// PendingActionDeps wires ambient dependencies for the slot.
type PendingActionDeps struct {
	Clock  func() time.Time
	Logger func(context.Context, string, map[string]any)
}

type pendingActionService struct {
	now    func() time.Time
	logger func(context.Context, string, map[string]any)

	mu    sync.Mutex
	slots map[string]domain.PendingAction
}

// NewPendingActionService constructs the in-memory slot store. Intents have
// no wall-clock expiry; they clear on consume, disarm, or process restart.
func NewPendingActionService(deps PendingActionDeps) PendingActionService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &pendingActionService{
		now:    func() time.Time { return clock().UTC() },
		logger: logger,
		slots:  make(map[string]domain.PendingAction),
	}
}

func (s *pendingActionService) Arm(ctx context.Context, clientID string, action domain.PendingAction) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" || !action.Kind.Valid() || strings.TrimSpace(action.Product.ID) == "" {
		return ErrPendingInvalidInput
	}
	if action.Quantity < 1 {
		action.Quantity = 1
	}
	action.ArmedAt = s.now()

	s.mu.Lock()
	s.slots[clientID] = action
	s.mu.Unlock()

	s.logger(ctx, "pending.armed", map[string]any{
		"clientID":  clientID,
		"kind":      string(action.Kind),
		"productID": action.Product.ID,
	})
	return nil
}

func (s *pendingActionService) Peek(ctx context.Context, clientID string) (domain.PendingAction, bool) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return domain.PendingAction{}, false
	}

	s.mu.Lock()
	action, ok := s.slots[clientID]
	s.mu.Unlock()
	return action, ok
}

func (s *pendingActionService) Consume(ctx context.Context, clientID string) (domain.PendingAction, bool) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return domain.PendingAction{}, false
	}

	// Swap to empty before the caller replays, so a duplicate sign-in
	// event finds nothing to do.
	s.mu.Lock()
	action, ok := s.slots[clientID]
	if ok {
		delete(s.slots, clientID)
	}
	s.mu.Unlock()

	if ok {
		s.logger(ctx, "pending.consumed", map[string]any{
			"clientID":  clientID,
			"kind":      string(action.Kind),
			"productID": action.Product.ID,
		})
	}
	return action, ok
}

func (s *pendingActionService) Disarm(ctx context.Context, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return ErrPendingInvalidInput
	}

	s.mu.Lock()
	_, existed := s.slots[clientID]
	delete(s.slots, clientID)
	s.mu.Unlock()

	if existed {
		s.logger(ctx, "pending.disarmed", map[string]any{"clientID": clientID})
	}
	return nil
}
