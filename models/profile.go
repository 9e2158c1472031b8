package models

import "time"

// Brand tones offered by the profile form
const (
	ToneFriendly     = "friendly"
	ToneProfessional = "professional"
	TonePlayful      = "playful"
	ToneConfident    = "confident"
	ToneInformative  = "informative"
)

// BrandTones lists the accepted brand_tone values
var BrandTones = []string{ToneFriendly, ToneProfessional, TonePlayful, ToneConfident, ToneInformative}

// ValidBrandTone reports whether tone is accepted
func ValidBrandTone(tone string) bool {
	for _, t := range BrandTones {
		if t == tone {
			return true
		}
	}
	return false
}

// Profile holds a user's brand-voice preferences. At most one per user.
type Profile struct {
	UserID         string    `json:"user_id"`
	BrandTone      string    `json:"brand_tone"`
	Industry       string    `json:"industry"`
	ProductList    string    `json:"product_list"`
	TargetAudience string    `json:"target_audience"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfileInput is the editable part of a profile
type ProfileInput struct {
	BrandTone      string `json:"brand_tone"`
	Industry       string `json:"industry"`
	ProductList    string `json:"product_list"`
	TargetAudience string `json:"target_audience"`
}

// DefaultProfile is what the profile form shows before the first save
func DefaultProfile(userID string) *Profile {
	return &Profile{
		UserID:    userID,
		BrandTone: ToneFriendly,
	}
}
