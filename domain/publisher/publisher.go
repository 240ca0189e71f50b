package publisher

import (
	"context"
	"time"

	"social-scheduler/domain/model"
)

// Identity is the platform-reported account identity captured at connect
// time. TargetID locates the posting target (person, page or organization).
type Identity struct {
	TargetID    string `json:"target_id"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle,omitempty"`
}

// IPublisher is the per-platform capability set. Implementations classify
// failures via the error kinds in this package so the dispatcher can react
// per class. Network calls carry bounded timeouts.
type IPublisher interface {
	// FetchIdentity resolves who the token belongs to. Used by the connect
	// flow to populate credential metadata.
	FetchIdentity(ctx context.Context, accessToken string) (*Identity, error)
	// ResolveTarget resolves the id the post will be published as.
	ResolveTarget(ctx context.Context, accessToken string) (string, error)
	// Publish posts content as targetID and returns the external post id.
	Publish(ctx context.Context, accessToken, targetID, content, mediaURL string) (string, error)
}

// TokenUpgrader is an optional capability for platforms whose short-lived
// user token must be swapped for a long-lived posting token during connect
// (e.g. Facebook page tokens).
type TokenUpgrader interface {
	UpgradeToken(ctx context.Context, accessToken string) (token string, expiresAt time.Time, err error)
}

// Registry maps each platform onto its adapter. Platforms without an entry
// are treated as unsupported by the dispatcher, never as a crash.
type Registry map[model.Platform]IPublisher

// Get returns the adapter for a platform, or nil when none is registered.
func (r Registry) Get(platform model.Platform) IPublisher {
	return r[platform]
}
