package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-scheduler/domain/model"
	"social-scheduler/usecase"
)

func TestScheduleUsecase_CreateValidation(t *testing.T) {
	cases := []struct {
		name  string
		owner string
		req   usecase.ScheduleRequest
		field string
	}{
		{
			name:  "missing owner",
			owner: "",
			req:   usecase.ScheduleRequest{Platform: "linkedin", Content: "hi", ScheduledAt: time.Now().Add(time.Hour)},
			field: "owner",
		},
		{
			name:  "unknown platform",
			owner: "7",
			req:   usecase.ScheduleRequest{Platform: "myspace", Content: "hi", ScheduledAt: time.Now().Add(time.Hour)},
			field: "platform",
		},
		{
			name:  "empty content",
			owner: "7",
			req:   usecase.ScheduleRequest{Platform: "linkedin", Content: "   ", ScheduledAt: time.Now().Add(time.Hour)},
			field: "content",
		},
		{
			name:  "missing scheduled_at",
			owner: "7",
			req:   usecase.ScheduleRequest{Platform: "linkedin", Content: "hi"},
			field: "scheduled_at",
		},
		{
			name:  "scheduled_at in the past",
			owner: "7",
			req:   usecase.ScheduleRequest{Platform: "linkedin", Content: "hi", ScheduledAt: time.Now().Add(-time.Minute)},
			field: "scheduled_at",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockScheduleRepo)
			uc := usecase.NewScheduleUsecase(repo)

			_, err := uc.Create(context.Background(), tc.owner, tc.req)

			var vErr *model.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestScheduleUsecase_CreateScheduled(t *testing.T) {
	at := time.Now().Add(time.Hour)
	repo := new(MockScheduleRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(post *model.ScheduledPost) bool {
		return post.OwnerID == "7" &&
			post.Platform == model.PlatformFacebook &&
			post.Status == model.PostStatusScheduled &&
			post.MediaURL != nil && *post.MediaURL == "https://example.com/a.png"
	})).Return(&model.ScheduledPost{ID: 99, Status: model.PostStatusScheduled}, nil).Once()

	uc := usecase.NewScheduleUsecase(repo)
	created, err := uc.Create(context.Background(), "7", usecase.ScheduleRequest{
		Platform:    "facebook",
		Content:     "launch day",
		MediaURL:    "https://example.com/a.png",
		ScheduledAt: at,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(99), created.ID)
	repo.AssertExpectations(t)
}

func TestScheduleUsecase_CreateDraftAllowsPastTime(t *testing.T) {
	repo := new(MockScheduleRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(post *model.ScheduledPost) bool {
		return post.Status == model.PostStatusDraft
	})).Return(&model.ScheduledPost{ID: 5, Status: model.PostStatusDraft}, nil).Once()

	uc := usecase.NewScheduleUsecase(repo)
	created, err := uc.Create(context.Background(), "7", usecase.ScheduleRequest{
		Platform: "linkedin",
		Content:  "work in progress",
		Draft:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, model.PostStatusDraft, created.Status)
}

func TestScheduleUsecase_GetEnforcesOwnership(t *testing.T) {
	repo := new(MockScheduleRepo)
	repo.On("GetByID", mock.Anything, int64(4)).
		Return(&model.ScheduledPost{ID: 4, OwnerID: "someone-else"}, nil).Once()

	uc := usecase.NewScheduleUsecase(repo)
	_, err := uc.Get(context.Background(), 4, "7")

	assert.ErrorIs(t, err, model.ErrNotOwner)
}

func TestScheduleUsecase_DeletePostedIsRejected(t *testing.T) {
	repo := new(MockScheduleRepo)
	repo.On("Delete", mock.Anything, int64(3), "7").Return(model.ErrPostedImmutable).Once()

	uc := usecase.NewScheduleUsecase(repo)
	err := uc.Delete(context.Background(), 3, "7")

	assert.ErrorIs(t, err, model.ErrPostedImmutable)
}

func TestScheduleUsecase_ReschedulePromotesDraft(t *testing.T) {
	at := time.Now().Add(2 * time.Hour)
	repo := new(MockScheduleRepo)
	repo.On("Reschedule", mock.Anything, int64(5), "7", at).
		Return(&model.ScheduledPost{ID: 5, OwnerID: "7", Status: model.PostStatusScheduled, ScheduledAt: at}, nil).Once()

	uc := usecase.NewScheduleUsecase(repo)
	post, err := uc.Reschedule(context.Background(), 5, "7", at)

	require.NoError(t, err)
	assert.Equal(t, model.PostStatusScheduled, post.Status)
	repo.AssertExpectations(t)
}

func TestScheduleUsecase_RescheduleRequiresFutureTime(t *testing.T) {
	repo := new(MockScheduleRepo)
	uc := usecase.NewScheduleUsecase(repo)

	cases := []struct {
		name string
		at   time.Time
	}{
		{name: "zero time", at: time.Time{}},
		{name: "past time", at: time.Now().Add(-time.Minute)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Reschedule(context.Background(), 5, "7", tc.at)

			var vErr *model.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "scheduled_at", vErr.Field)
			repo.AssertNotCalled(t, "Reschedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestScheduleUsecase_ReschedulePostedIsRejected(t *testing.T) {
	at := time.Now().Add(time.Hour)
	repo := new(MockScheduleRepo)
	repo.On("Reschedule", mock.Anything, int64(3), "7", at).
		Return(nil, model.ErrPostedImmutable).Once()

	uc := usecase.NewScheduleUsecase(repo)
	_, err := uc.Reschedule(context.Background(), 3, "7", at)

	assert.ErrorIs(t, err, model.ErrPostedImmutable)
}
