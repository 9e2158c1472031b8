package services

import (
	"context"
	"strings"

	"contentengine/models"
	"contentengine/storage"
	"contentengine/utils"
)

// Profiles loads and saves the caller's brand profile
type Profiles struct{}

func NewProfiles() *Profiles {
	return &Profiles{}
}

// Get returns the stored profile, or the default profile when none was saved yet
func (p *Profiles) Get(ctx context.Context, store storage.Store, userID string) (*models.Profile, error) {
	profile, err := store.GetProfile(ctx)
	if err != nil {
		return nil, utils.StoreError(err)
	}
	if profile == nil {
		return models.DefaultProfile(userID), nil
	}
	return profile, nil
}

// Save upserts the profile. A blank tone means the default tone.
func (p *Profiles) Save(ctx context.Context, store storage.Store, in models.ProfileInput) (*models.Profile, error) {
	in.BrandTone = strings.TrimSpace(in.BrandTone)
	if in.BrandTone == "" {
		in.BrandTone = models.ToneFriendly
	}
	if !models.ValidBrandTone(in.BrandTone) {
		return nil, utils.BadRequestError("brand_tone must be one of "+strings.Join(models.BrandTones, ", "), nil).Localized("error_invalid_tone")
	}

	profile, err := store.UpsertProfile(ctx, in)
	if err != nil {
		return nil, utils.StoreError(err)
	}
	return profile, nil
}
