package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-scheduler/domain/model"
)

const scheduledPostColumns = `id, owner_id, platform, content, media_url, scheduled_at, status, failure_reason, external_ref, created_at, updated_at`

// ScheduleRepository implements the scheduling queue on PostgreSQL. Status
// transitions out of scheduled are guarded single updates so overlapping
// dispatcher invocations cannot double-resolve a post.
type ScheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository { return &ScheduleRepository{db: db} }

func (r *ScheduleRepository) Create(ctx context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO scheduled_posts (owner_id, platform, content, media_url, scheduled_at, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$7) RETURNING id`,
		post.OwnerID, post.Platform, post.Content, post.MediaURL, post.ScheduledAt, post.Status, now)
	if err := row.Scan(&post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *ScheduleRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+scheduledPostColumns+` FROM scheduled_posts WHERE owner_id=$1 ORDER BY scheduled_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+scheduledPostColumns+` FROM scheduled_posts WHERE id=$1`, id)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	return post, err
}

func (r *ScheduleRepository) Delete(ctx context.Context, id int64, ownerID string) error {
	row := r.db.QueryRowContext(ctx, `SELECT owner_id, status FROM scheduled_posts WHERE id=$1`, id)
	var owner string
	var status model.PostStatus
	if err := row.Scan(&owner, &status); err != nil {
		if err == sql.ErrNoRows {
			return model.ErrNotFound
		}
		return err
	}
	if owner != ownerID {
		return model.ErrNotOwner
	}
	if status == model.PostStatusPosted {
		return model.ErrPostedImmutable
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_posts WHERE id=$1 AND owner_id=$2`, id, ownerID)
	return err
}

// Reschedule is the operator's explicit retry: it moves the post back into
// the queue at a new time, wiping the failure reason and the dispatch claim.
func (r *ScheduleRepository) Reschedule(ctx context.Context, id int64, ownerID string, at time.Time) (*model.ScheduledPost, error) {
	row := r.db.QueryRowContext(ctx, `SELECT owner_id, status FROM scheduled_posts WHERE id=$1`, id)
	var owner string
	var status model.PostStatus
	if err := row.Scan(&owner, &status); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if owner != ownerID {
		return nil, model.ErrNotOwner
	}
	if status == model.PostStatusPosted {
		return nil, model.ErrPostedImmutable
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET scheduled_at=$1, status=$2, failure_reason=NULL, claimed_batch_id=NULL, updated_at=$3 WHERE id=$4`,
		at.UTC(), model.PostStatusScheduled, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ClaimDue is a plain read across all owners; it takes no lock and flips no
// status, so repeated calls are side-effect free. Rows already stamped by a
// dispatch claim are excluded: they were handed to an adapter once and must
// not surface again until rescheduled.
func (r *ScheduleRepository) ClaimDue(ctx context.Context, now time.Time) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+scheduledPostColumns+` FROM scheduled_posts WHERE status=$1 AND scheduled_at <= $2 AND claimed_batch_id IS NULL ORDER BY scheduled_at ASC`,
		model.PostStatusScheduled, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// ClaimForDispatch is the mutual-exclusion point between overlapping
// invocations: exactly one batch wins the single guarded update, so a post
// reaches a publish call at most once even when batches overlap.
func (r *ScheduleRepository) ClaimForDispatch(ctx context.Context, id int64, batchID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET claimed_batch_id=$1, updated_at=$2 WHERE id=$3 AND status=$4 AND claimed_batch_id IS NULL`,
		batchID, time.Now().UTC(), id, model.PostStatusScheduled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ScheduleRepository) MarkPosted(ctx context.Context, id int64, externalRef string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET status=$1, external_ref=$2, failure_reason=NULL, updated_at=$3 WHERE id=$4 AND status=$5`,
		model.PostStatusPosted, externalRef, time.Now().UTC(), id, model.PostStatusScheduled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ScheduleRepository) MarkFailed(ctx context.Context, id int64, reason string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET status=$1, failure_reason=$2, updated_at=$3 WHERE id=$4 AND status=$5`,
		model.PostStatusFailed, reason, time.Now().UTC(), id, model.PostStatusScheduled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanPosts(rows *sql.Rows) ([]*model.ScheduledPost, error) {
	var list []*model.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, post)
	}
	return list, rows.Err()
}

func scanPost(row rowScanner) (*model.ScheduledPost, error) {
	post := &model.ScheduledPost{}
	var mediaURL, failureReason, externalRef sql.NullString
	if err := row.Scan(&post.ID, &post.OwnerID, &post.Platform, &post.Content, &mediaURL, &post.ScheduledAt, &post.Status, &failureReason, &externalRef, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}
	if mediaURL.Valid {
		v := mediaURL.String
		post.MediaURL = &v
	}
	if failureReason.Valid {
		v := failureReason.String
		post.FailureReason = &v
	}
	if externalRef.Valid {
		v := externalRef.String
		post.ExternalRef = &v
	}
	return post, nil
}
