package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/maheshrc27/blog-cms/internal/api/handlers"
	"github.com/maheshrc27/blog-cms/internal/api/middleware"
	"github.com/maheshrc27/blog-cms/internal/feed"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/ogimage"
	"github.com/maheshrc27/blog-cms/internal/service"
	"github.com/maheshrc27/blog-cms/internal/transfer"
	"github.com/maheshrc27/blog-cms/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = config.Config{
	SiteURL:     "https://blog.example.com",
	SiteName:    "Example",
	FrontendURL: "https://blog.example.com",
	SecretKey:   "test-secret",
	CookieName:  "session",
}

type fakePosts struct {
	service.PostService
	created *transfer.PostRequest
}

func (f *fakePosts) GetPublished(_ context.Context, slug string) (*transfer.PostDetail, error) {
	if slug != "hello" {
		return nil, service.ErrNotFound
	}
	return &transfer.PostDetail{Post: &models.Post{Slug: "hello", Title: "Hello"}, HTML: "<p>hi</p>"}, nil
}

func (f *fakePosts) Create(_ context.Context, req *transfer.PostRequest) (*models.Post, error) {
	if req.Slug == "taken" {
		return nil, service.ErrSlugConflict
	}
	f.created = req
	return &models.Post{ID: uuid.New(), Title: req.Title, Slug: "hello", Status: models.PostStatusDraft}, nil
}

func (f *fakePosts) Latest(context.Context, int) ([]*models.Post, error) {
	now := time.Now()
	return []*models.Post{{Title: "Hello", Slug: "hello", PublishedAt: &now, CreatedAt: now, UpdatedAt: now}}, nil
}

func (f *fakePosts) AllPublished(ctx context.Context) ([]*models.Post, error) {
	return f.Latest(ctx, 0)
}

type fakeCategories struct {
	service.CategoryService
}

func (fakeCategories) List(context.Context) ([]*models.Category, error) {
	return []*models.Category{{Name: "Go", Slug: "go"}}, nil
}

type fakeReactions struct {
	err error
	ips *[]string
}

func (f fakeReactions) MarkHelpful(_ context.Context, _, ip, _ string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.ips != nil {
		*f.ips = append(*f.ips, ip)
	}
	return 4, nil
}

type fakeMedia struct {
	service.MediaService
	err error
}

func (f fakeMedia) Upload(_ context.Context, userID int64, fileName string, r io.Reader) (*models.MediaAsset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.MediaAsset{ID: uuid.New(), UserID: userID, FileName: fileName, FileURL: "https://cdn.example.com/x.png"}, nil
}

type fakeAuth struct{}

func (fakeAuth) AuthURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (fakeAuth) LoginCallback(_ context.Context, code string) (int64, error) {
	if code != "good" {
		return 0, service.ErrForbidden
	}
	return 7, nil
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func newTestApp(posts *fakePosts, reactions fakeReactions, media fakeMedia) *fiber.App {
	og, err := ogimage.New()
	if err != nil {
		panic(err)
	}

	app := fiber.New()
	site := feed.Site{URL: testCfg.SiteURL, Name: testCfg.SiteName}
	Register(app, Handlers{
		Auth:      handlers.NewAuthHandler(testCfg, fakeAuth{}),
		Post:      handlers.NewPostHandler(posts, reactions),
		Category:  handlers.NewCategoryHandler(fakeCategories{}),
		Media:     handlers.NewMediaHandler(media),
		Adsense:   handlers.NewAdsenseHandler(testCfg, nil),
		Site:      handlers.NewSiteHandler(site, posts, fakeCategories{}, og, fakePinger{}),
		User:      handlers.NewUserHandler(nil),
		Ad:        handlers.NewAdHandler(nil),
		Analytics: handlers.NewAnalyticsHandler(nil),
	}, middleware.NewAuthMiddleware(testCfg).AuthMiddleware())
	return app
}

func sessionCookie(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateToken(testCfg.SecretKey, "7", time.Hour)
	require.NoError(t, err)
	return testCfg.CookieName + "=" + token
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

func TestPublicPostBySlug(t *testing.T) {
	app := newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts/hello", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var detail transfer.PostDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.Equal(t, "<p>hi</p>", detail.HTML)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/posts/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", decodeError(t, resp))
}

func TestMarkHelpful(t *testing.T) {
	resp, err := newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{}).
		Test(httptest.NewRequest("POST", "/api/posts/hello/helpful", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body transfer.HelpfulResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(4), body.HelpfulCount)

	resp, err = newTestApp(&fakePosts{}, fakeReactions{err: service.ErrRateLimited}, fakeMedia{}).
		Test(httptest.NewRequest("POST", "/api/posts/hello/helpful", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	resp, err = newTestApp(&fakePosts{}, fakeReactions{err: service.ErrNotFound}, fakeMedia{}).
		Test(httptest.NewRequest("POST", "/api/posts/nope/helpful", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminRequiresSession(t *testing.T) {
	app := newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{})

	for _, path := range []string{"/api/admin/posts", "/api/admin/media", "/api/admin/adsense/status", "/api/admin/analytics/overview"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAdminCreatePost(t *testing.T) {
	posts := &fakePosts{}
	app := newTestApp(posts, fakeReactions{}, fakeMedia{})

	post := func(body string) *http.Response {
		req := httptest.NewRequest("POST", "/api/admin/posts", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Cookie", sessionCookie(t))
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := post(`{"title":"Hello","content":{"type":"doc"}}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, posts.created)
	assert.Equal(t, "Hello", posts.created.Title)
	assert.JSONEq(t, `{"type":"doc"}`, string(posts.created.Content))

	resp = post(`{"status":"archived"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp), "title failed required")

	resp = post(`{"title":"Hello","slug":"taken"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = post(`{`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminPostBadID(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/admin/posts/not-a-uuid", nil)
	req.Header.Set("Cookie", sessionCookie(t))

	resp, err := newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{}).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func uploadRequest(t *testing.T, field string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/admin/media", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Cookie", sessionCookie(t))
	return req
}

func TestMediaUpload(t *testing.T) {
	resp, err := newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{}).Test(uploadRequest(t, "file"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var asset models.MediaAsset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asset))
	assert.Equal(t, int64(7), asset.UserID)
	assert.Equal(t, "photo.png", asset.FileName)

	resp, err = newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{}).Test(uploadRequest(t, "image"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{err: service.ErrFileTooLarge}).Test(uploadRequest(t, "file"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)

	resp, err = newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{err: service.ErrUnsupportedType}).Test(uploadRequest(t, "file"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)

	resp, err = newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{err: errors.New("bucket down")}).Test(uploadRequest(t, "file"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "something went wrong", decodeError(t, resp))
}

func TestSiteDocuments(t *testing.T) {
	app := newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{})

	cases := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/feed.xml", "application/rss+xml", "https://blog.example.com/posts/hello"},
		{"/sitemap.xml", "application/xml", "https://blog.example.com/categories/go"},
		{"/robots.txt", "text/plain", "Sitemap: https://blog.example.com/sitemap.xml"},
		{"/healthz", "application/json", `"ok"`},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, tc.path)
		assert.Contains(t, resp.Header.Get("Content-Type"), tc.contentType, tc.path)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), tc.contains, tc.path)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/og?title=Hello%20world", nil), 10000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(&fakePosts{}, fakeReactions{}, fakeMedia{})

	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)

	var state string
	for _, c := range resp.Cookies() {
		if c.Name == "login_state" {
			state = c.Value
		}
	}
	require.NotEmpty(t, state)
	assert.Contains(t, resp.Header.Get("Location"), "state="+state)

	callback := func(query, cookie string) *http.Response {
		req := httptest.NewRequest("GET", "/login/callback?"+query, nil)
		if cookie != "" {
			req.Header.Set("Cookie", "login_state="+cookie)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp = callback("code=good&state=forged", state)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = callback("code=bad&state="+state, state)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = callback("code=good&state="+state, state)
	assert.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)
	var session string
	for _, c := range resp.Cookies() {
		if c.Name == testCfg.CookieName {
			session = c.Value
		}
	}
	claims, err := utils.ValidateToken(testCfg.SecretKey, session)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, handlers.StatusFor(service.ErrInvalidInput))
	assert.Equal(t, fiber.StatusConflict, handlers.StatusFor(service.ErrSlugConflict))
	assert.Equal(t, fiber.StatusServiceUnavailable, handlers.StatusFor(service.ErrNotConfigured))
	assert.Equal(t, fiber.StatusInternalServerError, handlers.StatusFor(errors.New("boom")))
}

func TestHelpfulClientIPBehindProxy(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		trusted []string
		want    string
	}{
		{name: "trusted proxy", header: "X-Forwarded-For", trusted: []string{"0.0.0.0"}, want: "203.0.113.9"},
		{name: "untrusted proxy", header: "X-Forwarded-For", trusted: []string{"10.0.0.1"}, want: "0.0.0.0"},
		{name: "direct", want: "0.0.0.0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testCfg
			cfg.ProxyHeader = tc.header
			cfg.TrustedProxies = tc.trusted

			var ips []string
			app := fiber.New(AppConfig(cfg))
			app.Post("/api/posts/:slug/helpful", handlers.NewPostHandler(&fakePosts{}, fakeReactions{ips: &ips}).MarkHelpful)

			req := httptest.NewRequest("POST", "/api/posts/hello/helpful", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, []string{tc.want}, ips)
		})
	}
}
