package job

import (
	"context"
	"log/slog"
	"time"
)

// TokenRefresher refreshes stored OAuth tokens expiring within a window.
type TokenRefresher interface {
	RefreshExpiring(ctx context.Context, within time.Duration) (int, error)
}

type TokenRefreshJob struct {
	tr     TokenRefresher
	window time.Duration
}

func NewTokenRefreshJob(tr TokenRefresher) *TokenRefreshJob {
	return &TokenRefreshJob{tr: tr, window: 30 * time.Minute}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	refreshed, err := c.tr.RefreshExpiring(ctx, c.window)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if refreshed > 0 {
		slog.Info("adsense tokens refreshed", "count", refreshed)
	}
}
