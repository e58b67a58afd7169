package transfer

type OverviewRow struct {
	Date        string `json:"date"`
	ActiveUsers int64  `json:"active_users"`
	Sessions    int64  `json:"sessions"`
	PageViews   int64  `json:"page_views"`
}

type TopPage struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Views int64  `json:"views"`
}

type SearchQuery struct {
	Query       string  `json:"query"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

type AdsenseRow struct {
	Date        string  `json:"date"`
	Earnings    float64 `json:"earnings"`
	PageViews   int64   `json:"page_views"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
}

type AdsenseReport struct {
	Connected bool         `json:"connected"`
	Rows   []AdsenseRow `json:"rows"`
	Totals AdsenseRow   `json:"totals"`
}

type AdsenseStatus struct {
	Connected bool   `json:"connected"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type SyncResult struct {
	Updated int64 `json:"updated"`
}
