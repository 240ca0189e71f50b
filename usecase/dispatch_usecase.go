package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"social-scheduler/domain/model"
	"social-scheduler/domain/publisher"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/infrastructure/pubsub"
)

// Terminal failure reasons recorded on a post. Failed posts stay failed;
// there is no automatic retry, the operator reschedules explicitly.
const (
	ReasonCredentialUnavailable = "credential unavailable or expired"
	ReasonAuthorization         = "authorization rejected by platform"
	ReasonTargetResolution      = "no publishable target for this credential"
	ReasonUnsupported           = "platform does not support publishing"
	ReasonTransient             = "transient publish failure"
)

const dispatchLockTTL = 2 * time.Minute

// DispatchLocker keeps overlapping trigger invocations from duplicating
// work. It is only a short-circuit: the per-row dispatch claim holds the
// at-most-once invariant on its own, so a nil locker is safe.
type DispatchLocker interface {
	TryAcquire(ctx context.Context, ttl time.Duration) bool
	Release(ctx context.Context)
}

type IDispatchUsecase interface {
	// Dispatch publishes every due post and returns a batch summary. Per-post
	// failures are absorbed into the summary; the returned error covers only
	// the batch-level read.
	Dispatch(ctx context.Context, now time.Time) (*model.DispatchSummary, error)
}

type dispatchUsecase struct {
	scheduleRepo   repository.ISchedule
	credRepo       repository.ICredential
	adapters       publisher.Registry
	lock           DispatchLocker
	audit          repository.IDispatchAudit
	notifier       pubsub.IOutcomeNotifier
	publishTimeout time.Duration
}

func NewDispatchUsecase(
	scheduleRepo repository.ISchedule,
	credRepo repository.ICredential,
	adapters publisher.Registry,
	lock DispatchLocker,
	audit repository.IDispatchAudit,
	notifier pubsub.IOutcomeNotifier,
	publishTimeout time.Duration,
) IDispatchUsecase {
	if publishTimeout <= 0 {
		publishTimeout = 15 * time.Second
	}
	return &dispatchUsecase{
		scheduleRepo:   scheduleRepo,
		credRepo:       credRepo,
		adapters:       adapters,
		lock:           lock,
		audit:          audit,
		notifier:       notifier,
		publishTimeout: publishTimeout,
	}
}

type dispatchGroup struct {
	Platform model.Platform
	OwnerID  string
}

func (u *dispatchUsecase) Dispatch(ctx context.Context, now time.Time) (*model.DispatchSummary, error) {
	log := logger.GetLogger()
	summary := &model.DispatchSummary{
		BatchID:   uuid.NewString(),
		StartedAt: now.UTC(),
		Results:   []model.DispatchResult{},
	}

	if u.lock != nil {
		if !u.lock.TryAcquire(ctx, dispatchLockTTL) {
			summary.Skipped = true
			summary.FinishedAt = time.Now().UTC()
			log.WithField("batch_id", summary.BatchID).Info("dispatch skipped, another run holds the lock")
			return summary, nil
		}
		defer u.lock.Release(ctx)
	}

	due, err := u.scheduleRepo.ClaimDue(ctx, now)
	if err != nil {
		return nil, err
	}
	summary.Attempted = len(due)

	// Posts for the same platform and owner publish sequentially in schedule
	// order; distinct groups run concurrently.
	groups := make(map[dispatchGroup][]*model.ScheduledPost)
	for _, post := range due {
		key := dispatchGroup{Platform: post.Platform, OwnerID: post.OwnerID}
		groups[key] = append(groups[key], post)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, posts := range groups {
		posts := posts
		g.Go(func() error {
			for _, post := range posts {
				result, ok := u.processPost(gctx, post, summary.BatchID, now)
				if !ok {
					continue
				}
				mu.Lock()
				summary.Results = append(summary.Results, result)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range summary.Results {
		switch res.Status {
		case model.PostStatusPosted:
			summary.Posted++
		case model.PostStatusFailed:
			summary.Failed++
		}
	}
	summary.FinishedAt = time.Now().UTC()

	if u.audit != nil {
		if err := u.audit.Record(ctx, summary); err != nil {
			log.WithField("batch_id", summary.BatchID).Errorf("recording dispatch audit: %v", err)
		}
	}
	if u.notifier != nil {
		if err := u.notifier.Notify(ctx, summary); err != nil {
			log.WithField("batch_id", summary.BatchID).Errorf("publishing dispatch outcome: %v", err)
		}
	}

	log.WithField("batch_id", summary.BatchID).
		WithField("attempted", summary.Attempted).
		WithField("posted", summary.Posted).
		WithField("failed", summary.Failed).
		Info("dispatch finished")
	return summary, nil
}

// processPost resolves one due post to a terminal status. The second return
// is false when another invocation won the claim; the post is then left
// entirely alone. The claim is stamped before any adapter call and never
// released, so a post is handed to a publish call at most once regardless of
// how invocations overlap.
func (u *dispatchUsecase) processPost(ctx context.Context, post *model.ScheduledPost, batchID string, now time.Time) (model.DispatchResult, bool) {
	log := logger.GetLogger().
		WithField("post_id", post.ID).
		WithField("platform", post.Platform).
		WithField("owner_id", post.OwnerID)

	claimed, err := u.scheduleRepo.ClaimForDispatch(ctx, post.ID, batchID)
	if err != nil {
		log.Errorf("claiming post: %v", err)
		return model.DispatchResult{}, false
	}
	if !claimed {
		log.Info("post claimed by another invocation; skipping")
		return model.DispatchResult{}, false
	}

	cred, err := u.credRepo.Get(ctx, post.Platform, post.OwnerID)
	if err != nil {
		log.Errorf("loading credential: %v", err)
		return u.fail(ctx, post, ReasonCredentialUnavailable), true
	}
	if cred == nil || cred.Expired(now) {
		// Never hand a missing or expired token to an adapter.
		return u.fail(ctx, post, ReasonCredentialUnavailable), true
	}

	adapter := u.adapters.Get(post.Platform)
	if adapter == nil {
		return u.fail(ctx, post, ReasonUnsupported), true
	}

	pctx, cancel := context.WithTimeout(ctx, u.publishTimeout)
	defer cancel()

	targetID, err := adapter.ResolveTarget(pctx, cred.AccessToken)
	if err != nil {
		log.Warningf("resolving target: %v", err)
		return u.fail(ctx, post, failureReason(err)), true
	}

	externalRef, err := adapter.Publish(pctx, cred.AccessToken, targetID, post.Content, deref(post.MediaURL))
	if err != nil {
		log.Warningf("publishing: %v", err)
		return u.fail(ctx, post, failureReason(err)), true
	}

	ok, err := u.scheduleRepo.MarkPosted(ctx, post.ID, externalRef)
	if err != nil {
		log.Errorf("marking posted: %v", err)
	} else if !ok {
		log.Warning("post already resolved by a concurrent run")
	}
	log.WithField("external_ref", externalRef).Info("post published")
	return model.DispatchResult{
		PostID:      post.ID,
		OwnerID:     post.OwnerID,
		Platform:    post.Platform,
		Status:      model.PostStatusPosted,
		ExternalRef: externalRef,
	}, true
}

// fail records the terminal failure. The guarded update is a no-op when a
// concurrent run already resolved the post, keeping publishes at-most-once.
func (u *dispatchUsecase) fail(ctx context.Context, post *model.ScheduledPost, reason string) model.DispatchResult {
	ok, err := u.scheduleRepo.MarkFailed(ctx, post.ID, reason)
	if err != nil {
		logger.GetLogger().WithField("post_id", post.ID).Errorf("marking failed: %v", err)
	} else if !ok {
		logger.GetLogger().WithField("post_id", post.ID).Warning("post already resolved by a concurrent run")
	}
	return model.DispatchResult{
		PostID:   post.ID,
		OwnerID:  post.OwnerID,
		Platform: post.Platform,
		Status:   model.PostStatusFailed,
		Reason:   reason,
	}
}

func failureReason(err error) string {
	switch publisher.KindOf(err) {
	case publisher.KindAuthorization:
		return ReasonAuthorization
	case publisher.KindNoTarget:
		return ReasonTargetResolution
	case publisher.KindUnsupported:
		return ReasonUnsupported
	default:
		return ReasonTransient
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
