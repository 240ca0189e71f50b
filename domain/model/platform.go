package model

import "fmt"

// Platform identifies a third-party social network we can publish to.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
)

// AllPlatforms lists every platform the system knows about, implemented or not.
var AllPlatforms = []Platform{
	PlatformLinkedIn,
	PlatformFacebook,
	PlatformInstagram,
	PlatformTwitter,
	PlatformTikTok,
	PlatformYouTube,
}

// ParsePlatform validates a client-supplied platform tag.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range AllPlatforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

func (p Platform) String() string { return string(p) }
