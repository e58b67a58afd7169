package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/blog-cms/internal/content"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/transfer"
)

type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*models.Post
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: map[uuid.UUID]*models.Post{}}
	for _, p := range posts {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.posts[p.ID] = p
	}
	return r
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	return &c
}

func (r *fakePostRepo) Create(_ context.Context, _ *sql.Tx, post *models.Post) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := clonePost(post)
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.posts[c.ID] = c
	return c.ID, nil
}

func (r *fakePostRepo) Update(_ context.Context, _ *sql.Tx, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.posts[post.ID]
	if !ok {
		return sql.ErrNoRows
	}
	c := clonePost(post)
	c.ViewCount = old.ViewCount
	c.HelpfulCount = old.HelpfulCount
	c.CreatedAt = old.CreatedAt
	r.posts[c.ID] = c
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		return clonePost(p), nil
	}
	return nil, nil
}

func (r *fakePostRepo) GetBySlug(_ context.Context, slug string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			return clonePost(p), nil
		}
	}
	return nil, nil
}

func (r *fakePostRepo) SlugExists(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePostRepo) match(filter models.PostFilter) []*models.Post {
	var out []*models.Post
	for _, p := range r.posts {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Featured && !p.IsFeatured {
			continue
		}
		out = append(out, clonePost(p))
	}
	return out
}

func (r *fakePostRepo) List(_ context.Context, filter models.PostFilter) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.match(filter)
	if filter.Offset > len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakePostRepo) Count(_ context.Context, filter models.PostFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.match(filter))), nil
}

func (r *fakePostRepo) ListRelated(context.Context, uuid.UUID, int) ([]*models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, publishedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Status = status
	if publishedAt != nil && (p.PublishedAt == nil || p.PublishedAt.After(*publishedAt)) {
		at := *publishedAt
		p.PublishedAt = &at
	}
	return nil
}

func (r *fakePostRepo) IncrementHelpful(_ context.Context, slug string) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug && p.Status == models.PostStatusPublished {
			p.HelpfulCount++
			return p.HelpfulCount, true, nil
		}
	}
	return 0, false, nil
}

func (r *fakePostRepo) SetViewCounts(_ context.Context, counts map[string]int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for _, p := range r.posts {
		if n, ok := counts[p.Slug]; ok {
			p.ViewCount = n
			updated++
		}
	}
	return updated, nil
}

func (r *fakePostRepo) Remove(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*models.Category
}

func newFakeCategoryRepo(categories ...*models.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: map[uuid.UUID]*models.Category{}}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *models.Category) (uuid.UUID, error) {
	cp := *c
	cp.ID = uuid.New()
	r.categories[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *models.Category) error {
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if c, ok := r.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCategoryRepo) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) SlugExists(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	for _, c := range r.categories {
		if c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCategoryRepo) List(context.Context) ([]*models.Category, error) {
	var out []*models.Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) ListByPostIDs(context.Context, []uuid.UUID) (map[uuid.UUID][]*models.Category, error) {
	return map[uuid.UUID][]*models.Category{}, nil
}

func (r *fakeCategoryRepo) CountExisting(_ context.Context, ids []uuid.UUID) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := r.categories[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *fakeCategoryRepo) Remove(_ context.Context, id uuid.UUID) error {
	delete(r.categories, id)
	return nil
}

type fakePostCategoryRepo struct {
	replaced map[uuid.UUID][]uuid.UUID
}

func (r *fakePostCategoryRepo) Replace(_ context.Context, _ *sql.Tx, postID uuid.UUID, ids []uuid.UUID) error {
	if r.replaced == nil {
		r.replaced = map[uuid.UUID][]uuid.UUID{}
	}
	r.replaced[postID] = ids
	return nil
}

func (r *fakePostCategoryRepo) ListCategoryIDs(_ context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	return r.replaced[postID], nil
}

type fakeAds struct {
	AdService
	placement content.AdPlacement
}

func (f fakeAds) Placement(context.Context) content.AdPlacement {
	return f.placement
}

type fakeScheduler struct {
	calls []time.Time
	err   error
}

func (f *fakeScheduler) SchedulePublish(_ context.Context, _ uuid.UUID, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, at)
	return nil
}

type fakeCacheRepo struct {
	entries map[string]*models.AnalyticsCache
	sets    int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string]*models.AnalyticsCache{}}
}

func (r *fakeCacheRepo) Get(_ context.Context, key string) (*models.AnalyticsCache, error) {
	return r.entries[key], nil
}

func (r *fakeCacheRepo) Set(_ context.Context, entry *models.AnalyticsCache) error {
	r.sets++
	r.entries[entry.CacheKey] = entry
	return nil
}

type fakeFetcher struct {
	overviewCalls int
	topPages      []transfer.TopPage
	topPagesCalls int
	err           error
}

func (f *fakeFetcher) Overview(context.Context, int) ([]transfer.OverviewRow, error) {
	f.overviewCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []transfer.OverviewRow{{Date: "2026-03-01", ActiveUsers: 3, Sessions: 4, PageViews: 9}}, nil
}

func (f *fakeFetcher) TopPages(context.Context, int, int) ([]transfer.TopPage, error) {
	f.topPagesCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.topPages, nil
}

func (f *fakeFetcher) SearchQueries(context.Context, int, int) ([]transfer.SearchQuery, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []transfer.SearchQuery{{Query: "go blog", Clicks: 2}}, nil
}

type fakeTokenRepo struct {
	mu   sync.Mutex
	rows map[int64]*models.GoogleAdsenseToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: map[int64]*models.GoogleAdsenseToken{}}
}

func (r *fakeTokenRepo) Upsert(_ context.Context, t *models.GoogleAdsenseToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	if old, ok := r.rows[t.UserID]; ok && cp.RefreshToken == "" {
		cp.RefreshToken = old.RefreshToken
	}
	r.rows[t.UserID] = &cp
	return nil
}

func (r *fakeTokenRepo) GetByUserID(_ context.Context, userID int64) (*models.GoogleAdsenseToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.rows[userID]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTokenRepo) ListExpiringBefore(_ context.Context, before time.Time) ([]*models.GoogleAdsenseToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GoogleAdsenseToken
	for _, t := range r.rows {
		if t.ExpiresAt.Before(before) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) SetToken(ctx context.Context, t *models.GoogleAdsenseToken) error {
	return r.Upsert(ctx, t)
}

func (r *fakeTokenRepo) RemoveByUserID(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, userID)
	return nil
}

type fakeMediaRepo struct {
	assets map[uuid.UUID]*models.MediaAsset
	err    error
}

func (r *fakeMediaRepo) Create(_ context.Context, ma *models.MediaAsset) (uuid.UUID, error) {
	if r.err != nil {
		return uuid.Nil, r.err
	}
	if r.assets == nil {
		r.assets = map[uuid.UUID]*models.MediaAsset{}
	}
	id := uuid.New()
	cp := *ma
	cp.ID = id
	r.assets[id] = &cp
	return id, nil
}

func (r *fakeMediaRepo) GetByID(_ context.Context, id uuid.UUID) (*models.MediaAsset, error) {
	if a, ok := r.assets[id]; ok {
		return a, nil
	}
	return nil, nil
}

func (r *fakeMediaRepo) List(context.Context, int, int) ([]*models.MediaAsset, error) {
	var out []*models.MediaAsset
	for _, a := range r.assets {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeMediaRepo) Count(context.Context) (int64, error) {
	return int64(len(r.assets)), nil
}

func (r *fakeMediaRepo) Remove(_ context.Context, id uuid.UUID) error {
	delete(r.assets, id)
	return nil
}

type fakeStore struct {
	objects map[string][]byte
}

func (s *fakeStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = body
	return s.URL(key), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) URL(key string) string {
	return "https://cdn.example.com/" + key
}
