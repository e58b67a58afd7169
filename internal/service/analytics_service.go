package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/repository"
	"github.com/maheshrc27/blog-cms/internal/transfer"
)

const (
	CacheKeyOverview      = "ga_overview"
	CacheKeyTopPages      = "ga_top_pages"
	CacheKeySearchConsole = "gsc_queries"

	overviewDays      = 30
	topPagesDays      = 30
	topPagesLimit     = 250
	searchConsoleDays = 28
	searchQueryLimit  = 50

	postPathPrefix = "/posts/"
)

type AnalyticsService interface {
	Overview(ctx context.Context, force bool) ([]transfer.OverviewRow, error)
	TopPages(ctx context.Context, force bool) ([]transfer.TopPage, error)
	SearchConsole(ctx context.Context, force bool) ([]transfer.SearchQuery, error)
	SyncViewCounts(ctx context.Context) (int64, error)
}

type analyticsService struct {
	cache   repository.AnalyticsCacheRepository
	pr      repository.PostRepository
	fetcher ReportFetcher
	ttl     time.Duration
	now     func() time.Time
}

func NewAnalyticsService(cache repository.AnalyticsCacheRepository, pr repository.PostRepository, fetcher ReportFetcher, ttl time.Duration) AnalyticsService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &analyticsService{cache: cache, pr: pr, fetcher: fetcher, ttl: ttl, now: time.Now}
}

// cached returns the unexpired payload stored under key, or calls fetch and
// stores its result. force skips the lookup. Concurrent callers may each
// fetch; the last write wins.
func cached[T any](ctx context.Context, s *analyticsService, key string, force bool, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if !force {
		entry, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("analytics cache read failed", "key", key, "error", err)
		}
		if entry != nil && !entry.Expired(s.now()) {
			var value T
			if err := json.Unmarshal(entry.Data, &value); err == nil {
				return value, nil
			}
			slog.Warn("analytics cache entry is corrupt", "key", key)
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", key, err)
	}
	entry := &models.AnalyticsCache{CacheKey: key, Data: data, ExpiresAt: s.now().Add(s.ttl)}
	if err := s.cache.Set(ctx, entry); err != nil {
		slog.Warn("analytics cache write failed", "key", key, "error", err)
	}
	return value, nil
}

// degrade logs an upstream failure; dashboards then show "no data".
func degrade(report string, err error) {
	if errors.Is(err, ErrNotConfigured) {
		slog.Info("analytics report not configured", "report", report)
		return
	}
	slog.Warn("analytics report failed", "report", report, "error", err)
}

func (s *analyticsService) Overview(ctx context.Context, force bool) ([]transfer.OverviewRow, error) {
	rows, err := cached(ctx, s, CacheKeyOverview, force, func(ctx context.Context) ([]transfer.OverviewRow, error) {
		return s.fetcher.Overview(ctx, overviewDays)
	})
	if err != nil {
		degrade(CacheKeyOverview, err)
	}
	if rows == nil {
		rows = []transfer.OverviewRow{}
	}
	return rows, nil
}

func (s *analyticsService) TopPages(ctx context.Context, force bool) ([]transfer.TopPage, error) {
	pages, err := cached(ctx, s, CacheKeyTopPages, force, func(ctx context.Context) ([]transfer.TopPage, error) {
		return s.fetcher.TopPages(ctx, topPagesDays, topPagesLimit)
	})
	if err != nil {
		degrade(CacheKeyTopPages, err)
	}
	if pages == nil {
		pages = []transfer.TopPage{}
	}
	return pages, nil
}

func (s *analyticsService) SearchConsole(ctx context.Context, force bool) ([]transfer.SearchQuery, error) {
	queries, err := cached(ctx, s, CacheKeySearchConsole, force, func(ctx context.Context) ([]transfer.SearchQuery, error) {
		return s.fetcher.SearchQueries(ctx, searchConsoleDays, searchQueryLimit)
	})
	if err != nil {
		degrade(CacheKeySearchConsole, err)
	}
	if queries == nil {
		queries = []transfer.SearchQuery{}
	}
	return queries, nil
}

// SyncViewCounts copies page views of article paths into posts.view_count.
func (s *analyticsService) SyncViewCounts(ctx context.Context) (int64, error) {
	pages, err := s.TopPages(ctx, false)
	if err != nil {
		return 0, err
	}

	counts := ViewCountsByPath(pages)
	if len(counts) == 0 {
		return 0, nil
	}

	updated, err := s.pr.SetViewCounts(ctx, counts)
	if err != nil {
		return 0, fmt.Errorf("set view counts: %w", err)
	}
	slog.Info("view counts synced", "posts", len(counts), "updated", updated)
	return updated, nil
}

// ViewCountsByPath sums views per post slug from /posts/<slug> paths,
// ignoring query strings, fragments and trailing slashes.
func ViewCountsByPath(pages []transfer.TopPage) map[string]int64 {
	counts := map[string]int64{}
	for _, p := range pages {
		path := p.Path
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		if !strings.HasPrefix(path, postPathPrefix) {
			continue
		}
		slug := strings.Trim(strings.TrimPrefix(path, postPathPrefix), "/")
		if slug == "" || strings.Contains(slug, "/") {
			continue
		}
		if unescaped, err := url.PathUnescape(slug); err == nil {
			slug = unescaped
		}
		counts[slug] += p.Views
	}
	return counts
}
