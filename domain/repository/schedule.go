package repository

import (
	"context"
	"time"

	"social-scheduler/domain/model"
)

// ISchedule persists ScheduledPost rows and owns the status-transition
// guards that make dispatch outcomes atomic.
type ISchedule interface {
	Create(ctx context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.ScheduledPost, error)
	GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error)
	// Delete removes a post by id for its owner. Posted rows are immutable;
	// deleting one returns model.ErrPostedImmutable.
	Delete(ctx context.Context, id int64, ownerID string) error
	// Reschedule moves a post to a new publish time and returns it to the
	// queue, clearing any failure and dispatch claim. This is the explicit
	// operator retry path; posted rows stay immutable.
	Reschedule(ctx context.Context, id int64, ownerID string, at time.Time) (*model.ScheduledPost, error)
	// ClaimDue returns all unclaimed posts with status scheduled and
	// scheduled_at <= now, across all owners. It is a plain read; the
	// dispatcher performs the transitions so the queue holds no lock across
	// adapter calls.
	ClaimDue(ctx context.Context, now time.Time) ([]*model.ScheduledPost, error)
	// ClaimForDispatch stamps a post with the claiming batch id in a single
	// guarded update. The returned bool is false when another invocation
	// already claimed the row; the loser must not hand the post to an
	// adapter. A claim is never released automatically, so a post reaches a
	// publish call at most once unless the operator reschedules it.
	ClaimForDispatch(ctx context.Context, id int64, batchID string) (bool, error)
	// MarkPosted transitions scheduled -> posted in a single guarded update.
	// The returned bool is false when the row was no longer in scheduled
	// state, i.e. another invocation already resolved it.
	MarkPosted(ctx context.Context, id int64, externalRef string) (bool, error)
	// MarkFailed transitions scheduled -> failed, recording the reason.
	MarkFailed(ctx context.Context, id int64, reason string) (bool, error)
}
