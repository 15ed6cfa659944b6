package data

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"
	"google.golang.org/api/iterator"

	"github.com/lumen-gear/storefront/internal/domain"
	pfirestore "github.com/lumen-gear/storefront/internal/platform/firestore"
)

const (
	profileCollection = "profiles"
	orderCollection   = "orders"

	defaultOrderStatus = "processing"
)

// Client owns profile and order access against the backend database. Role
// checks read the profile document; custom claims stay an auth concern.
type Client struct {
	provider *pfirestore.Provider
}

// NewClient constructs a data client over the shared Firestore provider.
func NewClient(provider *pfirestore.Provider) (*Client, error) {
	if provider == nil {
		return nil, errors.New("data client requires firestore provider")
	}
	return &Client{provider: provider}, nil
}

// GetProfile loads a profile document. The boolean reports existence; a
// missing profile is an expected state for first sign-ins, not an error.
func (c *Client) GetProfile(ctx context.Context, userID string) (domain.UserProfile, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserProfile{}, false, errors.New("data backend: user id is required")
	}

	client, err := c.provider.Client(ctx)
	if err != nil {
		return domain.UserProfile{}, false, pfirestore.WrapError("profile get", err)
	}

	snap, err := client.Collection(profileCollection).Doc(userID).Get(ctx)
	if err != nil {
		wrapped := pfirestore.WrapError("profile get", err)
		var repoErr *pfirestore.Error
		if errors.As(wrapped, &repoErr) && repoErr.IsNotFound() {
			return domain.UserProfile{}, false, nil
		}
		return domain.UserProfile{}, false, wrapped
	}

	var doc profileDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.UserProfile{}, false, pfirestore.WrapError("profile decode", err)
	}
	return profileFromDocument(snap.Ref.ID, doc), true, nil
}

// EnsureProfile returns the stored profile, creating a minimal record on
// first contact so later upserts always have a document to merge into.
func (c *Client) EnsureProfile(ctx context.Context, user domain.User) (domain.UserProfile, error) {
	profile, ok, err := c.GetProfile(ctx, user.ID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if ok {
		return profile, nil
	}

	now := time.Now().UTC()
	profile = domain.UserProfile{
		ID:        user.ID,
		Name:      strings.TrimSpace(user.DisplayName),
		Email:     strings.TrimSpace(user.Email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return c.UpsertProfile(ctx, profile)
}

// UpsertProfile writes the full profile document keyed by the user ID.
func (c *Client) UpsertProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	userID := strings.TrimSpace(profile.ID)
	if userID == "" {
		return domain.UserProfile{}, errors.New("data backend: profile id is required")
	}
	profile.ID = userID

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	client, err := c.provider.Client(ctx)
	if err != nil {
		return domain.UserProfile{}, pfirestore.WrapError("profile upsert", err)
	}

	if _, err := client.Collection(profileCollection).Doc(userID).Set(ctx, profileToDocument(profile)); err != nil {
		return domain.UserProfile{}, pfirestore.WrapError("profile upsert", err)
	}
	return profile, nil
}

// ListOrders returns the user's orders newest first. A limit of zero or less
// returns the full history.
func (c *Client) ListOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("data backend: user id is required")
	}

	client, err := c.provider.Client(ctx)
	if err != nil {
		return nil, pfirestore.WrapError("order list", err)
	}

	query := client.Collection(orderCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var orders []domain.Order
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("order list", err)
		}

		var doc orderDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, pfirestore.WrapError("order decode", err)
		}
		orders = append(orders, orderFromDocument(snap.Ref.ID, doc))
	}
	return orders, nil
}

// CreateOrder persists a new order with its nested line items and returns
// the stored record with generated identifiers filled in.
func (c *Client) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	userID := strings.TrimSpace(order.UserID)
	if userID == "" {
		return domain.Order{}, errors.New("data backend: order user id is required")
	}
	if len(order.Items) == 0 {
		return domain.Order{}, errors.New("data backend: order requires at least one item")
	}
	order.UserID = userID

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if strings.TrimSpace(order.Status) == "" {
		order.Status = defaultOrderStatus
	}
	if order.ID == "" {
		order.ID = newID(order.CreatedAt)
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = newID(order.CreatedAt)
		}
	}
	if order.TotalPrice <= 0 {
		order.TotalPrice = order.Total()
	}

	client, err := c.provider.Client(ctx)
	if err != nil {
		return domain.Order{}, pfirestore.WrapError("order create", err)
	}

	ref := client.Collection(orderCollection).Doc(order.ID)
	err = pfirestore.RunTransaction(ctx, client, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err == nil {
			return errors.New("order id already exists")
		}
		return tx.Create(ref, orderToDocument(order))
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// FindProfileByEmail resolves a profile by its stored email address.
func (c *Client) FindProfileByEmail(ctx context.Context, email string) (domain.UserProfile, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.UserProfile{}, false, errors.New("data backend: email is required")
	}

	client, err := c.provider.Client(ctx)
	if err != nil {
		return domain.UserProfile{}, false, pfirestore.WrapError("profile lookup", err)
	}

	iter := client.Collection(profileCollection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return domain.UserProfile{}, false, nil
	}
	if err != nil {
		return domain.UserProfile{}, false, pfirestore.WrapError("profile lookup", err)
	}

	var doc profileDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.UserProfile{}, false, pfirestore.WrapError("profile decode", err)
	}
	return profileFromDocument(snap.Ref.ID, doc), true, nil
}

// ListProfiles pages through stored profiles ordered by creation time.
func (c *Client) ListProfiles(ctx context.Context, limit int) ([]domain.UserProfile, error) {
	client, err := c.provider.Client(ctx)
	if err != nil {
		return nil, pfirestore.WrapError("profile list", err)
	}

	query := client.Collection(profileCollection).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var profiles []domain.UserProfile
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("profile list", err)
		}

		var doc profileDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, pfirestore.WrapError("profile decode", err)
		}
		profiles = append(profiles, profileFromDocument(snap.Ref.ID, doc))
	}
	return profiles, nil
}

// IsAdmin reports whether the profile role marks the user as admin. A
// missing profile reads as non-admin.
func (c *Client) IsAdmin(ctx context.Context, userID string) (bool, error) {
	profile, ok, err := c.GetProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return profile.IsAdminRole(), nil
}

// MakeUserAdmin promotes the profile role to admin.
func (c *Client) MakeUserAdmin(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("data backend: user id is required")
	}

	client, err := c.provider.Client(ctx)
	if err != nil {
		return pfirestore.WrapError("admin grant", err)
	}

	_, err = client.Collection(profileCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "role", Value: "admin"},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	return pfirestore.WrapError("admin grant", err)
}

func newID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()
}
