package model

import "time"

// DispatchResult records the terminal outcome of one due post within a batch.
type DispatchResult struct {
	PostID      int64      `json:"post_id" bson:"post_id"`
	OwnerID     string     `json:"owner_id" bson:"owner_id"`
	Platform    Platform   `json:"platform" bson:"platform"`
	Status      PostStatus `json:"status" bson:"status"`
	Reason      string     `json:"reason,omitempty" bson:"reason,omitempty"`
	ExternalRef string     `json:"external_ref,omitempty" bson:"external_ref,omitempty"`
}

// DispatchSummary is the batch result returned to the autopost trigger and
// recorded for operator review. Dispatcher failures are never surfaced to a
// user session; this summary is their only synchronous output.
type DispatchSummary struct {
	BatchID    string           `json:"batch_id" bson:"batch_id"`
	StartedAt  time.Time        `json:"started_at" bson:"started_at"`
	FinishedAt time.Time        `json:"finished_at" bson:"finished_at"`
	Attempted  int              `json:"attempted" bson:"attempted"`
	Posted     int              `json:"posted" bson:"posted"`
	Failed     int              `json:"failed" bson:"failed"`
	Skipped    bool             `json:"skipped,omitempty" bson:"skipped,omitempty"`
	Results    []DispatchResult `json:"results" bson:"results"`
}
