package model

import (
	"encoding/json"
	"time"
)

// SocialCredential stores the OAuth access token and identity metadata for one
// (platform, owner) pair. At most one credential exists per pair; reconnecting
// replaces the previous row.
type SocialCredential struct {
	ID          int64           `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Platform    Platform        `json:"platform"`
	AccessToken string          `json:"-"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Expired reports whether the token is past its platform-issued lifetime.
// Expiry is a derived condition; expired rows are kept until disconnected.
func (c *SocialCredential) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// RedactedToken returns a short display suffix of the access token.
func (c *SocialCredential) RedactedToken() string {
	if len(c.AccessToken) <= 4 {
		return "****"
	}
	return "…" + c.AccessToken[len(c.AccessToken)-4:]
}
