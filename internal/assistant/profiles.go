package assistant

import (
	"context"

	"health-ai/internal/apperr"
	"health-ai/internal/models"
)

// ProfileStore returns apperr.KindNotFound when the user is missing or has
// not finished onboarding.
type ProfileStore interface {
	GetProfile(ctx context.Context, id models.UserID) (*models.Profile, error)
}

type Profiles struct {
	store ProfileStore
}

func NewProfiles(store ProfileStore) *Profiles {
	return &Profiles{store: store}
}

// Lookup validates the raw identifier before touching the store.
func (p *Profiles) Lookup(ctx context.Context, rawID string) (*models.Profile, error) {
	id, err := models.ParseUserID(rawID)
	if err != nil {
		return nil, apperr.InvalidIdentifier(err)
	}
	return p.store.GetProfile(ctx, id)
}
