package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"social-scheduler/domain/model"
)

func postRows(posts ...*model.ScheduledPost) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "owner_id", "platform", "content", "media_url", "scheduled_at", "status", "failure_reason", "external_ref", "created_at", "updated_at"})
	for _, p := range posts {
		rows.AddRow(p.ID, p.OwnerID, p.Platform, p.Content, nil, p.ScheduledAt, p.Status, nil, nil, p.CreatedAt, p.UpdatedAt)
	}
	return rows
}

func TestScheduleRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO scheduled_posts`)).
		WithArgs("7", model.PlatformLinkedIn, "hello", nil, at, model.PostStatusScheduled, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	post, err := repo.Create(context.Background(), &model.ScheduledPost{
		OwnerID:     "7",
		Platform:    model.PlatformLinkedIn,
		Content:     "hello",
		ScheduledAt: at,
		Status:      model.PostStatusScheduled,
	})

	require.NoError(t, err)
	require.Equal(t, int64(11), post.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_ClaimDueFiltersStatusAndTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	due := &model.ScheduledPost{
		ID: 1, OwnerID: "7", Platform: model.PlatformLinkedIn, Content: "due",
		ScheduledAt: now.Add(-time.Minute), Status: model.PostStatusScheduled,
		CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status=$1 AND scheduled_at <= $2 AND claimed_batch_id IS NULL ORDER BY scheduled_at ASC`)).
		WithArgs(model.PostStatusScheduled, now).
		WillReturnRows(postRows(due))

	posts, err := repo.ClaimDue(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, int64(1), posts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_ClaimForDispatchWinsUnclaimedRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_posts SET claimed_batch_id=$1, updated_at=$2 WHERE id=$3 AND status=$4 AND claimed_batch_id IS NULL`)).
		WithArgs("batch-a", sqlmock.AnyArg(), int64(5), model.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.ClaimForDispatch(context.Background(), 5, "batch-a")

	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_ClaimForDispatchLosesToEarlierClaim(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	// Another batch already stamped the row; the guarded update touches
	// nothing and the caller must skip the post.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_posts SET claimed_batch_id=$1`)).
		WithArgs("batch-b", sqlmock.AnyArg(), int64(5), model.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.ClaimForDispatch(context.Background(), 5, "batch-b")

	require.NoError(t, err)
	require.False(t, ok)
}

func TestScheduleRepository_RescheduleClearsFailureAndClaim(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT owner_id, status FROM scheduled_posts WHERE id=$1`)).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "status"}).AddRow("7", model.PostStatusFailed))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_posts SET scheduled_at=$1, status=$2, failure_reason=NULL, claimed_batch_id=NULL, updated_at=$3 WHERE id=$4`)).
		WithArgs(at, model.PostStatusScheduled, sqlmock.AnyArg(), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rescheduled := &model.ScheduledPost{
		ID: 6, OwnerID: "7", Platform: model.PlatformLinkedIn, Content: "retry me",
		ScheduledAt: at, Status: model.PostStatusScheduled,
		CreatedAt: at, UpdatedAt: at,
	}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM scheduled_posts WHERE id=$1`)).
		WithArgs(int64(6)).
		WillReturnRows(postRows(rescheduled))

	post, err := repo.Reschedule(context.Background(), 6, "7", at)

	require.NoError(t, err)
	require.Equal(t, model.PostStatusScheduled, post.Status)
	require.Nil(t, post.FailureReason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_ReschedulePostedRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT owner_id, status FROM scheduled_posts WHERE id=$1`)).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "status"}).AddRow("7", model.PostStatusPosted))

	_, err = repo.Reschedule(context.Background(), 6, "7", time.Now().Add(time.Hour))

	require.ErrorIs(t, err, model.ErrPostedImmutable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_MarkPostedGuarded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_posts SET status=$1, external_ref=$2, failure_reason=NULL, updated_at=$3 WHERE id=$4 AND status=$5`)).
		WithArgs(model.PostStatusPosted, "ext-1", sqlmock.AnyArg(), int64(4), model.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkPosted(context.Background(), 4, "ext-1")

	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_MarkPostedAlreadyResolved(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	// The row left scheduled state; the guard makes the update a no-op.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_posts`)).
		WithArgs(model.PostStatusPosted, "ext-1", sqlmock.AnyArg(), int64(4), model.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkPosted(context.Background(), 4, "ext-1")

	require.NoError(t, err)
	require.False(t, ok)
}

func TestScheduleRepository_MarkFailedGuarded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_posts SET status=$1, failure_reason=$2, updated_at=$3 WHERE id=$4 AND status=$5`)).
		WithArgs(model.PostStatusFailed, "credential unavailable or expired", sqlmock.AnyArg(), int64(9), model.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkFailed(context.Background(), 9, "credential unavailable or expired")

	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_DeletePostedRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT owner_id, status FROM scheduled_posts WHERE id=$1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "status"}).AddRow("7", model.PostStatusPosted))

	err = repo.Delete(context.Background(), 3, "7")

	require.ErrorIs(t, err, model.ErrPostedImmutable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_DeleteForeignOwnerRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT owner_id, status FROM scheduled_posts WHERE id=$1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "status"}).AddRow("someone-else", model.PostStatusScheduled))

	err = repo.Delete(context.Background(), 3, "7")

	require.ErrorIs(t, err, model.ErrNotOwner)
}

func TestScheduleRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM scheduled_posts WHERE id=$1`)).
		WithArgs(int64(404)).
		WillReturnRows(postRows())

	_, err = repo.GetByID(context.Background(), 404)

	require.ErrorIs(t, err, model.ErrNotFound)
}
