package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/repository"
	"github.com/maheshrc27/blog-cms/internal/transfer"
	"github.com/maheshrc27/blog-cms/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/adsense/v2"
	"google.golang.org/api/option"
)

const googleRevokeURL = "https://oauth2.googleapis.com/revoke"

type AdsenseService interface {
	AuthURL(state string) string
	Callback(ctx context.Context, userID int64, code string) error
	Token(ctx context.Context, userID int64) (*oauth2.Token, error)
	RefreshExpiring(ctx context.Context, within time.Duration) (int, error)
	Status(ctx context.Context, userID int64) (*transfer.AdsenseStatus, error)
	Disconnect(ctx context.Context, userID int64) error
	Report(ctx context.Context, userID int64, days int) (*transfer.AdsenseReport, error)
}

type adsenseService struct {
	cfg       config.Config
	oauth     *oauth2.Config
	tr        repository.AdsenseTokenRepository
	key       []byte
	revokeURL string
	apiOpts   []option.ClientOption
	now       func() time.Time
}

// NewAdsenseOAuthConfig is the OAuth client used for the AdSense connection.
func NewAdsenseOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.AdsenseRedirectURI,
		Scopes:       []string{adsense.AdsenseReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

func NewAdsenseService(cfg config.Config, oauthCfg *oauth2.Config, tr repository.AdsenseTokenRepository) AdsenseService {
	return &adsenseService{
		cfg:       cfg,
		oauth:     oauthCfg,
		tr:        tr,
		key:       utils.DeriveKey(cfg.SecretKey),
		revokeURL: googleRevokeURL,
		now:       time.Now,
	}
}

// AuthURL asks for offline access with a forced consent screen so Google
// always returns a refresh token.
func (s *adsenseService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (s *adsenseService) Callback(ctx context.Context, userID int64, code string) error {
	if code == "" {
		return invalid("authorization code is empty")
	}
	if s.oauth.ClientID == "" || s.oauth.ClientSecret == "" {
		return ErrNotConfigured
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("exchange adsense code: %w", err)
	}

	row, err := s.sealToken(userID, token)
	if err != nil {
		return err
	}
	if err := s.tr.Upsert(ctx, row); err != nil {
		return fmt.Errorf("save adsense token: %w", err)
	}

	slog.Info("adsense connected", "user_id", userID, "expires_at", token.Expiry)
	return nil
}

// Token returns a usable access token, refreshing it first when it has
// expired. A failed refresh drops the stored credentials.
func (s *adsenseService) Token(ctx context.Context, userID int64) (*oauth2.Token, error) {
	row, err := s.tr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get adsense token: %w", err)
	}
	if row == nil {
		return nil, ErrAdsenseNotConnected
	}

	if !row.Expired(s.now()) {
		accessToken, err := utils.Decrypt(row.AccessToken, s.key)
		if err != nil {
			return nil, s.drop(ctx, userID, fmt.Errorf("decrypt access token: %w", err))
		}
		return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer", Expiry: row.ExpiresAt}, nil
	}

	return s.refresh(ctx, row)
}

func (s *adsenseService) refresh(ctx context.Context, row *models.GoogleAdsenseToken) (*oauth2.Token, error) {
	if row.RefreshToken == "" {
		return nil, s.drop(ctx, row.UserID, fmt.Errorf("no refresh token"))
	}
	refreshToken, err := utils.Decrypt(row.RefreshToken, s.key)
	if err != nil {
		return nil, s.drop(ctx, row.UserID, fmt.Errorf("decrypt refresh token: %w", err))
	}

	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: s.now().Add(-time.Minute)}
	token, err := s.oauth.TokenSource(ctx, expired).Token()
	if err != nil {
		slog.Info(err.Error())
		return nil, s.drop(ctx, row.UserID, fmt.Errorf("refresh adsense token: %w", err))
	}

	if token.RefreshToken == refreshToken {
		token.RefreshToken = ""
	}
	sealed, err := s.sealToken(row.UserID, token)
	if err != nil {
		return nil, err
	}
	if err := s.tr.SetToken(ctx, sealed); err != nil {
		return nil, fmt.Errorf("save refreshed token: %w", err)
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}

	slog.Info("adsense token refreshed", "user_id", row.UserID, "expires_at", token.Expiry)
	return token, nil
}

// drop deletes the user's credentials after an unrecoverable token failure.
func (s *adsenseService) drop(ctx context.Context, userID int64, cause error) error {
	slog.Warn("dropping adsense credentials", "user_id", userID, "error", cause)
	if err := s.tr.RemoveByUserID(ctx, userID); err != nil {
		return fmt.Errorf("remove adsense token: %w", err)
	}
	return fmt.Errorf("%w: %v", ErrAdsenseNotConnected, cause)
}

func (s *adsenseService) sealToken(userID int64, token *oauth2.Token) (*models.GoogleAdsenseToken, error) {
	accessToken, err := utils.Encrypt(token.AccessToken, s.key)
	if err != nil {
		return nil, err
	}

	var refreshToken string
	if token.RefreshToken != "" {
		if refreshToken, err = utils.Encrypt(token.RefreshToken, s.key); err != nil {
			return nil, err
		}
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = s.now().Add(time.Hour)
	}

	return &models.GoogleAdsenseToken{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiry,
	}, nil
}

// RefreshExpiring refreshes every token that expires within the window and
// returns how many were refreshed.
func (s *adsenseService) RefreshExpiring(ctx context.Context, within time.Duration) (int, error) {
	rows, err := s.tr.ListExpiringBefore(ctx, s.now().Add(within))
	if err != nil {
		return 0, fmt.Errorf("list expiring tokens: %w", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		refreshed int
	)
	semaphore := make(chan struct{}, 10)

	for _, row := range rows {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(row *models.GoogleAdsenseToken) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if _, err := s.refresh(ctx, row); err != nil {
				slog.Info("unable to refresh adsense token", "user_id", row.UserID, "error", err)
				return
			}
			mu.Lock()
			refreshed++
			mu.Unlock()
		}(row)
	}
	wg.Wait()

	return refreshed, nil
}

func (s *adsenseService) Status(ctx context.Context, userID int64) (*transfer.AdsenseStatus, error) {
	row, err := s.tr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get adsense token: %w", err)
	}
	if row == nil {
		return &transfer.AdsenseStatus{Connected: false}, nil
	}
	return &transfer.AdsenseStatus{Connected: true, ExpiresAt: row.ExpiresAt.Format(time.RFC3339)}, nil
}

// Disconnect revokes the grant at Google when it can and always deletes the
// stored credentials.
func (s *adsenseService) Disconnect(ctx context.Context, userID int64) error {
	row, err := s.tr.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get adsense token: %w", err)
	}
	if row == nil {
		return nil
	}

	token := row.RefreshToken
	if token == "" {
		token = row.AccessToken
	}
	if plain, err := utils.Decrypt(token, s.key); err == nil {
		if err := s.revoke(ctx, plain); err != nil {
			slog.Warn("adsense revoke failed", "user_id", userID, "error", err)
		}
	}

	if err := s.tr.RemoveByUserID(ctx, userID); err != nil {
		return fmt.Errorf("remove adsense token: %w", err)
	}
	slog.Info("adsense disconnected", "user_id", userID)
	return nil
}

func (s *adsenseService) revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to revoke token, status code: %d", resp.StatusCode)
	}
	return nil
}

// Report returns daily earnings for the last days days. Without a connection
// it reports connected=false; upstream failures yield an empty report.
func (s *adsenseService) Report(ctx context.Context, userID int64, days int) (*transfer.AdsenseReport, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	empty := &transfer.AdsenseReport{Rows: []transfer.AdsenseRow{}}

	token, err := s.Token(ctx, userID)
	if err != nil {
		if isNotConnected(err) {
			return empty, nil
		}
		return nil, err
	}
	empty.Connected = true

	opts := append([]option.ClientOption{option.WithHTTPClient(s.oauth.Client(ctx, token))}, s.apiOpts...)
	svc, err := adsense.NewService(ctx, opts...)
	if err != nil {
		slog.Warn("adsense client unavailable", "error", err)
		return empty, nil
	}

	account, err := s.account(ctx, svc)
	if err != nil {
		slog.Warn("adsense account lookup failed", "error", err)
		return empty, nil
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -(days - 1))
	result, err := svc.Accounts.Reports.Generate(account).
		DateRange("CUSTOM").
		StartDateYear(int64(start.Year())).StartDateMonth(int64(start.Month())).StartDateDay(int64(start.Day())).
		EndDateYear(int64(end.Year())).EndDateMonth(int64(end.Month())).EndDateDay(int64(end.Day())).
		Dimensions("DATE").
		Metrics("ESTIMATED_EARNINGS", "PAGE_VIEWS", "CLICKS", "IMPRESSIONS").
		OrderBy("+DATE").
		Context(ctx).
		Do()
	if err != nil {
		slog.Warn("adsense report failed", "account", account, "error", err)
		return empty, nil
	}

	report := parseAdsenseReport(result)
	report.Connected = true
	return report, nil
}

func (s *adsenseService) account(ctx context.Context, svc *adsense.Service) (string, error) {
	if s.cfg.Google.AdsenseAccount != "" {
		name := s.cfg.Google.AdsenseAccount
		if !strings.HasPrefix(name, "accounts/") {
			name = "accounts/" + name
		}
		return name, nil
	}

	resp, err := svc.Accounts.List().PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(resp.Accounts) == 0 {
		return "", fmt.Errorf("no adsense accounts")
	}
	return resp.Accounts[0].Name, nil
}

func parseAdsenseReport(result *adsense.ReportResult) *transfer.AdsenseReport {
	report := &transfer.AdsenseReport{Rows: []transfer.AdsenseRow{}}
	if result == nil {
		return report
	}

	index := map[string]int{}
	for i, h := range result.Headers {
		index[h.Name] = i
	}

	toRow := func(r *adsense.Row) transfer.AdsenseRow {
		cell := func(name string) string {
			i, ok := index[name]
			if !ok || r == nil || i >= len(r.Cells) || r.Cells[i] == nil {
				return ""
			}
			return r.Cells[i].Value
		}
		earnings, _ := strconv.ParseFloat(cell("ESTIMATED_EARNINGS"), 64)
		pageViews, _ := strconv.ParseInt(cell("PAGE_VIEWS"), 10, 64)
		clicks, _ := strconv.ParseInt(cell("CLICKS"), 10, 64)
		impressions, _ := strconv.ParseInt(cell("IMPRESSIONS"), 10, 64)
		return transfer.AdsenseRow{
			Date:        cell("DATE"),
			Earnings:    earnings,
			PageViews:   pageViews,
			Clicks:      clicks,
			Impressions: impressions,
		}
	}

	for _, r := range result.Rows {
		report.Rows = append(report.Rows, toRow(r))
	}
	if result.Totals != nil {
		report.Totals = toRow(result.Totals)
	}
	return report
}
