package model

import "time"

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPosted    PostStatus = "posted"
	PostStatusFailed    PostStatus = "failed"
)

// ScheduledPost is an authored message targeted at one platform, to be
// published when ScheduledAt passes. Only scheduled -> posted|failed
// transitions are legal; posted rows are immutable.
type ScheduledPost struct {
	ID            int64      `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Platform      Platform   `json:"platform"`
	Content       string     `json:"content"`
	MediaURL      *string    `json:"media_url,omitempty"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Status        PostStatus `json:"status"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	ExternalRef   *string    `json:"external_ref,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Due reports whether the post should be picked up by the dispatcher.
func (p *ScheduledPost) Due(now time.Time) bool {
	return p.Status == PostStatusScheduled && !p.ScheduledAt.After(now)
}
