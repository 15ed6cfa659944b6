package localstore

import (
	"context"
	"errors"
	"strings"

	"github.com/lumen-gear/storefront/internal/domain"
	"github.com/lumen-gear/storefront/internal/platform/localstore"
)

// ProfileCacheRepository mirrors backend profile records locally.
type ProfileCacheRepository struct {
	store *localstore.Store
}

// NewProfileCacheRepository constructs a local-store backed profile cache.
func NewProfileCacheRepository(store *localstore.Store) (*ProfileCacheRepository, error) {
	if store == nil {
		return nil, errors.New("profile cache requires local store")
	}
	return &ProfileCacheRepository{store: store}, nil
}

// GetProfile returns the cached profile for userID. The boolean reports
// whether a usable cached copy existed.
func (r *ProfileCacheRepository) GetProfile(ctx context.Context, userID string) (domain.UserProfile, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserProfile{}, false, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserProfile{}, false, wrapError("profile cache: get", errors.New("user id is required"))
	}

	var doc profileDocument
	ok, err := r.store.GetJSON(profileKey(userID), &doc)
	if err != nil {
		return domain.UserProfile{}, false, wrapError("profile cache: get", err)
	}
	if !ok {
		return domain.UserProfile{}, false, nil
	}
	return profileFromDocument(doc), true, nil
}

// PutProfile replaces the cached profile copy. Last fetch wins.
func (r *ProfileCacheRepository) PutProfile(ctx context.Context, profile domain.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID := strings.TrimSpace(profile.ID)
	if userID == "" {
		return wrapError("profile cache: put", errors.New("profile id is required"))
	}
	profile.ID = userID

	if err := r.store.PutJSON(profileKey(userID), profileToDocument(profile)); err != nil {
		return wrapError("profile cache: put", err)
	}
	return nil
}

// DeleteProfile evicts the cached profile; an absent entry is a no-op.
func (r *ProfileCacheRepository) DeleteProfile(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return wrapError("profile cache: delete", errors.New("user id is required"))
	}
	if err := r.store.Delete(profileKey(userID)); err != nil {
		return wrapError("profile cache: delete", err)
	}
	return nil
}

func profileKey(userID string) string {
	return "userProfile_" + userID
}
