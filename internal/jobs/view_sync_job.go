package job

import (
	"context"
	"log/slog"
	"time"
)

type ViewSyncer interface {
	SyncViewCounts(ctx context.Context) (int64, error)
}

// ViewSyncJob copies analytics page views into the posts table.
type ViewSyncJob struct {
	vs ViewSyncer
}

func NewViewSyncJob(vs ViewSyncer) *ViewSyncJob {
	return &ViewSyncJob{vs: vs}
}

func (c *ViewSyncJob) SyncViews() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := c.vs.SyncViewCounts(ctx); err != nil {
		slog.Info(err.Error())
	}
}
