package repository

import (
	"context"

	"social-scheduler/domain/model"
)

// IDispatchAudit is an append-only sink for batch summaries. Implementations
// are best-effort; a failed audit write never fails the batch.
type IDispatchAudit interface {
	Record(ctx context.Context, summary *model.DispatchSummary) error
}
