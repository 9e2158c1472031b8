package editor

import "fmt"

// Platform is the social network a draft is written for
type Platform string

const (
	Instagram Platform = "instagram"
	Facebook  Platform = "facebook"
	Twitter   Platform = "twitter"
	LinkedIn  Platform = "linkedin"
	TikTok    Platform = "tiktok"
)

// DefaultPlatform is selected when the editor opens
const DefaultPlatform = Instagram

// Platforms lists the selector options in display order
var Platforms = []Platform{Instagram, Facebook, Twitter, LinkedIn, TikTok}

var platformLimits = map[Platform]int{
	Twitter:   280,
	LinkedIn:  3000,
	Instagram: 2200,
	Facebook:  63206,
	TikTok:    2200,
}

// Limit returns the platform's default character limit
func (p Platform) Limit() int {
	return platformLimits[p]
}

// ParsePlatform validates a selector value
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if _, ok := platformLimits[p]; !ok {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// Next cycles to the following platform in display order
func (p Platform) Next() Platform {
	for i, candidate := range Platforms {
		if candidate == p {
			return Platforms[(i+1)%len(Platforms)]
		}
	}
	return DefaultPlatform
}
