package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/maheshrc27/blog-cms/internal/transfer"
	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
	"google.golang.org/api/searchconsole/v1"
)

// ReportFetcher reads the upstream Google reports behind the analytics
// dashboards.
type ReportFetcher interface {
	Overview(ctx context.Context, days int) ([]transfer.OverviewRow, error)
	TopPages(ctx context.Context, days, limit int) ([]transfer.TopPage, error)
	SearchQueries(ctx context.Context, days, limit int) ([]transfer.SearchQuery, error)
}

type googleReportFetcher struct {
	cfg  config.Google
	opts []option.ClientOption
	now  func() time.Time
}

// NewGoogleReportFetcher authenticates with the service account JSON from
// config. Extra options are appended to every client.
func NewGoogleReportFetcher(cfg config.Google, opts ...option.ClientOption) ReportFetcher {
	return &googleReportFetcher{cfg: cfg, opts: opts, now: time.Now}
}

func (f *googleReportFetcher) clientOptions(scope string) ([]option.ClientOption, error) {
	if f.cfg.ServiceAccountJSON == "" {
		return nil, ErrNotConfigured
	}
	opts := []option.ClientOption{
		option.WithCredentialsJSON([]byte(f.cfg.ServiceAccountJSON)),
		option.WithScopes(scope),
	}
	return append(opts, f.opts...), nil
}

func (f *googleReportFetcher) runReport(ctx context.Context, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	if f.cfg.AnalyticsPropertyID == "" {
		return nil, ErrNotConfigured
	}
	opts, err := f.clientOptions(analyticsdata.AnalyticsReadonlyScope)
	if err != nil {
		return nil, err
	}

	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("analytics client: %w", err)
	}
	resp, err := svc.Properties.RunReport("properties/"+f.cfg.AnalyticsPropertyID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("analytics report: %w", err)
	}
	return resp, nil
}

func (f *googleReportFetcher) Overview(ctx context.Context, days int) ([]transfer.OverviewRow, error) {
	resp, err := f.runReport(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: fmt.Sprintf("%ddaysAgo", days), EndDate: "today"}},
		Dimensions: []*analyticsdata.Dimension{{Name: "date"}},
		Metrics:    []*analyticsdata.Metric{{Name: "activeUsers"}, {Name: "sessions"}, {Name: "screenPageViews"}},
		OrderBys:   []*analyticsdata.OrderBy{{Dimension: &analyticsdata.DimensionOrderBy{DimensionName: "date"}}},
	})
	if err != nil {
		return nil, err
	}
	return parseOverview(resp), nil
}

func (f *googleReportFetcher) TopPages(ctx context.Context, days, limit int) ([]transfer.TopPage, error) {
	resp, err := f.runReport(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: fmt.Sprintf("%ddaysAgo", days), EndDate: "today"}},
		Dimensions: []*analyticsdata.Dimension{{Name: "pagePath"}, {Name: "pageTitle"}},
		Metrics:    []*analyticsdata.Metric{{Name: "screenPageViews"}},
		OrderBys:   []*analyticsdata.OrderBy{{Desc: true, Metric: &analyticsdata.MetricOrderBy{MetricName: "screenPageViews"}}},
		Limit:      int64(limit),
	})
	if err != nil {
		return nil, err
	}
	return parseTopPages(resp), nil
}

func (f *googleReportFetcher) SearchQueries(ctx context.Context, days, limit int) ([]transfer.SearchQuery, error) {
	if f.cfg.SearchConsoleSite == "" {
		return nil, ErrNotConfigured
	}
	opts, err := f.clientOptions(searchconsole.WebmastersReadonlyScope)
	if err != nil {
		return nil, err
	}

	svc, err := searchconsole.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("search console client: %w", err)
	}

	end := f.now().UTC()
	start := end.AddDate(0, 0, -days)
	resp, err := svc.Searchanalytics.Query(f.cfg.SearchConsoleSite, &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  start.Format(time.DateOnly),
		EndDate:    end.Format(time.DateOnly),
		Dimensions: []string{"query"},
		RowLimit:   int64(limit),
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search console query: %w", err)
	}
	return parseSearchRows(resp), nil
}

func parseOverview(resp *analyticsdata.RunReportResponse) []transfer.OverviewRow {
	rows := []transfer.OverviewRow{}
	if resp == nil {
		return rows
	}
	for _, r := range resp.Rows {
		if len(r.DimensionValues) < 1 || len(r.MetricValues) < 3 {
			continue
		}
		rows = append(rows, transfer.OverviewRow{
			Date:        formatGADate(r.DimensionValues[0].Value),
			ActiveUsers: parseInt(r.MetricValues[0].Value),
			Sessions:    parseInt(r.MetricValues[1].Value),
			PageViews:   parseInt(r.MetricValues[2].Value),
		})
	}
	return rows
}

func parseTopPages(resp *analyticsdata.RunReportResponse) []transfer.TopPage {
	pages := []transfer.TopPage{}
	if resp == nil {
		return pages
	}
	for _, r := range resp.Rows {
		if len(r.DimensionValues) < 2 || len(r.MetricValues) < 1 {
			continue
		}
		pages = append(pages, transfer.TopPage{
			Path:  r.DimensionValues[0].Value,
			Title: r.DimensionValues[1].Value,
			Views: parseInt(r.MetricValues[0].Value),
		})
	}
	return pages
}

func parseSearchRows(resp *searchconsole.SearchAnalyticsQueryResponse) []transfer.SearchQuery {
	queries := []transfer.SearchQuery{}
	if resp == nil {
		return queries
	}
	for _, r := range resp.Rows {
		if len(r.Keys) == 0 {
			continue
		}
		queries = append(queries, transfer.SearchQuery{
			Query:       r.Keys[0],
			Clicks:      r.Clicks,
			Impressions: r.Impressions,
			CTR:         r.Ctr,
			Position:    r.Position,
		})
	}
	return queries
}

// formatGADate turns GA's YYYYMMDD into YYYY-MM-DD.
func formatGADate(v string) string {
	t, err := time.Parse("20060102", v)
	if err != nil {
		return v
	}
	return t.Format(time.DateOnly)
}

func parseInt(v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return n
}
