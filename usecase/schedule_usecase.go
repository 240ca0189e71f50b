package usecase

import (
	"context"
	"strings"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"
)

// ScheduleRequest is the operator-facing shape for queueing a post.
type ScheduleRequest struct {
	Platform    string    `json:"platform"`
	Content     string    `json:"content"`
	MediaURL    string    `json:"media_url"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Draft       bool      `json:"draft"`
}

type IScheduleUsecase interface {
	Create(ctx context.Context, ownerID string, req ScheduleRequest) (*model.ScheduledPost, error)
	List(ctx context.Context, ownerID string) ([]*model.ScheduledPost, error)
	Get(ctx context.Context, id int64, ownerID string) (*model.ScheduledPost, error)
	Delete(ctx context.Context, id int64, ownerID string) error
	// Reschedule queues a post for a new future time. It promotes drafts and
	// retries failed posts; posted rows are immutable.
	Reschedule(ctx context.Context, id int64, ownerID string, at time.Time) (*model.ScheduledPost, error)
}

type scheduleUsecase struct {
	scheduleRepo repository.ISchedule
}

func NewScheduleUsecase(scheduleRepo repository.ISchedule) IScheduleUsecase {
	return &scheduleUsecase{scheduleRepo: scheduleRepo}
}

func (u *scheduleUsecase) Create(ctx context.Context, ownerID string, req ScheduleRequest) (*model.ScheduledPost, error) {
	if ownerID == "" {
		return nil, &model.ValidationError{Field: "owner", Reason: "scheduling requires an authenticated owner identity"}
	}
	platform, err := model.ParsePlatform(strings.ToLower(strings.TrimSpace(req.Platform)))
	if err != nil {
		return nil, &model.ValidationError{Field: "platform", Reason: err.Error()}
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, &model.ValidationError{Field: "content", Reason: "content must not be empty"}
	}
	status := model.PostStatusScheduled
	if req.Draft {
		// Drafts keep their timestamp but are invisible to the dispatcher
		// until rescheduled.
		status = model.PostStatusDraft
	} else {
		if req.ScheduledAt.IsZero() {
			return nil, &model.ValidationError{Field: "scheduled_at", Reason: "scheduled_at is required"}
		}
		if !req.ScheduledAt.After(time.Now()) {
			return nil, &model.ValidationError{Field: "scheduled_at", Reason: "scheduled_at must be in the future"}
		}
	}

	post := &model.ScheduledPost{
		OwnerID:     ownerID,
		Platform:    platform,
		Content:     req.Content,
		ScheduledAt: req.ScheduledAt.UTC(),
		Status:      status,
	}
	if req.MediaURL != "" {
		mediaURL := req.MediaURL
		post.MediaURL = &mediaURL
	}
	created, err := u.scheduleRepo.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	logger.GetLogger().
		WithField("post_id", created.ID).
		WithField("platform", platform).
		WithField("owner_id", ownerID).
		WithField("status", status).
		Info("post queued")
	return created, nil
}

func (u *scheduleUsecase) List(ctx context.Context, ownerID string) ([]*model.ScheduledPost, error) {
	return u.scheduleRepo.ListByOwner(ctx, ownerID)
}

func (u *scheduleUsecase) Get(ctx context.Context, id int64, ownerID string) (*model.ScheduledPost, error) {
	post, err := u.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != ownerID {
		return nil, model.ErrNotOwner
	}
	return post, nil
}

func (u *scheduleUsecase) Delete(ctx context.Context, id int64, ownerID string) error {
	return u.scheduleRepo.Delete(ctx, id, ownerID)
}

func (u *scheduleUsecase) Reschedule(ctx context.Context, id int64, ownerID string, at time.Time) (*model.ScheduledPost, error) {
	if at.IsZero() {
		return nil, &model.ValidationError{Field: "scheduled_at", Reason: "scheduled_at is required"}
	}
	if !at.After(time.Now()) {
		return nil, &model.ValidationError{Field: "scheduled_at", Reason: "scheduled_at must be in the future"}
	}
	post, err := u.scheduleRepo.Reschedule(ctx, id, ownerID, at)
	if err != nil {
		return nil, err
	}
	logger.GetLogger().
		WithField("post_id", post.ID).
		WithField("owner_id", ownerID).
		WithField("scheduled_at", post.ScheduledAt).
		Info("post rescheduled")
	return post, nil
}
