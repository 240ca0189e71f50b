package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"social-scheduler/infrastructure/logger"
)

const dispatchLockKey = "autopost:dispatch-lock"

// DispatchLock keeps overlapping dispatcher invocations from running
// concurrently. The guarded status transitions in the queue remain the
// correctness mechanism; the lock just avoids wasted duplicate work. With a
// nil client the lock always grants.
type DispatchLock struct {
	client *redis.Client
}

func NewDispatchLock(client *redis.Client) *DispatchLock {
	return &DispatchLock{client: client}
}

// TryAcquire returns false when another invocation currently holds the lock.
func (l *DispatchLock) TryAcquire(ctx context.Context, ttl time.Duration) bool {
	if l.client == nil {
		return true
	}
	ok, err := l.client.SetNX(ctx, dispatchLockKey, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("dispatch lock unavailable; proceeding without it")
		return true
	}
	return ok
}

func (l *DispatchLock) Release(ctx context.Context) {
	if l.client == nil {
		return
	}
	if err := l.client.Del(ctx, dispatchLockKey).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed releasing dispatch lock")
	}
}
