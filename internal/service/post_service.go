package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/maheshrc27/blog-cms/internal/content"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/repository"
	"github.com/maheshrc27/blog-cms/internal/transfer"
	"github.com/maheshrc27/blog-cms/pkg/pagination"
)

const (
	excerptLength = 160
	relatedLimit  = 3
)

// PublishScheduler queues a post to be published at a later time.
type PublishScheduler interface {
	SchedulePublish(ctx context.Context, postID uuid.UUID, at time.Time) error
}

type PostService interface {
	Create(ctx context.Context, req *transfer.PostRequest) (*models.Post, error)
	Update(ctx context.Context, id uuid.UUID, req *transfer.PostRequest) (*models.Post, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*models.Post, error)
	SchedulePublish(ctx context.Context, id uuid.UUID, at time.Time) (*models.Post, error)
	PublishScheduled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, status string, page int) (*transfer.PostList, error)

	ListPublished(ctx context.Context, categorySlug string, page int) (*transfer.PostList, error)
	Search(ctx context.Context, query string, page int) (*transfer.PostList, error)
	Featured(ctx context.Context, limit int) ([]*models.Post, error)
	Popular(ctx context.Context, limit int) ([]*models.Post, error)
	Latest(ctx context.Context, limit int) ([]*models.Post, error)
	AllPublished(ctx context.Context) ([]*models.Post, error)
	GetPublished(ctx context.Context, slug string) (*transfer.PostDetail, error)
}

type postService struct {
	cfg       config.Config
	tx        repository.Transactor
	pr        repository.PostRepository
	cr        repository.CategoryRepository
	pc        repository.PostCategoryRepository
	ads       AdService
	scheduler PublishScheduler
	now       func() time.Time
}

func NewPostService(
	cfg config.Config,
	tx repository.Transactor,
	pr repository.PostRepository,
	cr repository.CategoryRepository,
	pc repository.PostCategoryRepository,
	ads AdService,
	scheduler PublishScheduler) PostService {
	return &postService{
		cfg:       cfg,
		tx:        tx,
		pr:        pr,
		cr:        cr,
		pc:        pc,
		ads:       ads,
		scheduler: scheduler,
		now:       time.Now,
	}
}

func (s *postService) Create(ctx context.Context, req *transfer.PostRequest) (*models.Post, error) {
	post, categoryIDs, err := s.postFromRequest(ctx, uuid.Nil, req, models.PostStatusDraft)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = s.pr.Create(ctx, tx, post); err != nil {
			return fmt.Errorf("error creating post: %w", err)
		}
		if err := s.pc.Replace(ctx, tx, id, categoryIDs); err != nil {
			return fmt.Errorf("error saving post categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("post created", "post_id", id, "slug", post.Slug, "status", post.Status)
	return s.Get(ctx, id)
}

func (s *postService) Update(ctx context.Context, id uuid.UUID, req *transfer.PostRequest) (*models.Post, error) {
	existing, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	post, categoryIDs, err := s.postFromRequest(ctx, id, req, existing.Status)
	if err != nil {
		return nil, err
	}
	post.ID = id
	// a pending schedule gives way to publishing now
	if existing.PublishedAt != nil && (post.Status != models.PostStatusPublished || !existing.PublishedAt.After(s.now())) {
		post.PublishedAt = existing.PublishedAt
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.pr.Update(ctx, tx, post); err != nil {
			return fmt.Errorf("error updating post: %w", err)
		}
		if err := s.pc.Replace(ctx, tx, id, categoryIDs); err != nil {
			return fmt.Errorf("error saving post categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// postFromRequest validates the editor payload and fills the derived fields.
// An empty status in the payload means currentStatus.
func (s *postService) postFromRequest(ctx context.Context, id uuid.UUID, req *transfer.PostRequest, currentStatus string) (*models.Post, []uuid.UUID, error) {
	if req == nil {
		return nil, nil, invalid("post data is empty")
	}
	if err := transfer.Validate(req); err != nil {
		return nil, nil, invalid("%v", err)
	}

	doc, err := content.Parse(req.Content)
	if err != nil {
		return nil, nil, invalid("%v", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("encode content: %w", err)
	}

	postSlug, err := makeSlug(req.Slug, req.Title)
	if err != nil {
		return nil, nil, err
	}
	taken, err := s.pr.SlugExists(ctx, postSlug, id)
	if err != nil {
		return nil, nil, fmt.Errorf("error checking slug: %w", err)
	}
	if taken {
		return nil, nil, fmt.Errorf("%w: %s", ErrSlugConflict, postSlug)
	}

	categoryIDs := uniqueIDs(req.CategoryIDs)
	if len(categoryIDs) > 0 {
		found, err := s.cr.CountExisting(ctx, categoryIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("error checking categories: %w", err)
		}
		if found != len(categoryIDs) {
			return nil, nil, invalid("unknown category id")
		}
	}

	status := req.Status
	if status == "" {
		status = currentStatus
	}

	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = content.Excerpt(doc, excerptLength)
	}

	post := &models.Post{
		Title:        strings.TrimSpace(req.Title),
		Slug:         postSlug,
		Status:       status,
		Content:      raw,
		Excerpt:      excerpt,
		ThumbnailURL: req.ThumbnailURL,
		OGImageURL:   req.OGImageURL,
		IsFeatured:   req.IsFeatured,
	}
	if status == models.PostStatusPublished {
		now := s.now()
		post.PublishedAt = &now
	}
	return post, categoryIDs, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ChangeStatus moves a post between draft, published and private. The first
// publish stamps published_at, replacing a pending schedule; later
// transitions keep it.
func (s *postService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*models.Post, error) {
	if !models.ValidPostStatus(status) {
		return nil, invalid("unknown status %q", status)
	}

	post, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}

	var publishedAt *time.Time
	if status == models.PostStatusPublished {
		now := s.now()
		publishedAt = &now
	}
	if err := s.pr.UpdateStatus(ctx, id, status, publishedAt); err != nil {
		return nil, fmt.Errorf("error updating status: %w", err)
	}

	slog.Info("post status changed", "post_id", id, "from", post.Status, "to", status)
	return s.Get(ctx, id)
}

// SchedulePublish stores the future publish time on a draft and queues the
// task that will publish it.
func (s *postService) SchedulePublish(ctx context.Context, id uuid.UUID, at time.Time) (*models.Post, error) {
	at = at.Truncate(time.Second)
	if !at.After(s.now()) {
		return nil, invalid("publish time must be in the future")
	}

	post, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if post.Status != models.PostStatusDraft {
		return nil, invalid("only drafts can be scheduled")
	}

	post.PublishedAt = &at
	if err := s.pr.Update(ctx, nil, post); err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}
	if err := s.scheduler.SchedulePublish(ctx, id, at); err != nil {
		return nil, fmt.Errorf("error scheduling post: %w", err)
	}

	slog.Info("post scheduled", "post_id", id, "publish_at", at)
	return s.Get(ctx, id)
}

// PublishScheduled publishes a draft still scheduled for at once that time
// has arrived. Anything else (deleted, published, rescheduled, published by
// hand and taken back to draft) is left alone.
func (s *postService) PublishScheduled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	post, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil || post.Status != models.PostStatusDraft || post.PublishedAt == nil {
		return false, nil
	}
	if !post.PublishedAt.Equal(at) || post.PublishedAt.After(s.now()) {
		return false, nil
	}

	if err := s.pr.UpdateStatus(ctx, id, models.PostStatusPublished, post.PublishedAt); err != nil {
		return false, fmt.Errorf("error publishing post: %w", err)
	}
	slog.Info("scheduled post published", "post_id", id)
	return true, nil
}

func (s *postService) Remove(ctx context.Context, id uuid.UUID) error {
	post, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting post: %w", err)
	}
	if post == nil {
		return ErrNotFound
	}
	if err := s.pr.Remove(ctx, id); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	return nil
}

func (s *postService) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if err := s.attachCategories(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, status string, page int) (*transfer.PostList, error) {
	if status != "" && !models.ValidPostStatus(status) {
		return nil, invalid("unknown status %q", status)
	}
	return s.page(ctx, models.PostFilter{Status: status, OrderBy: "updated_at"}, page)
}

func (s *postService) ListPublished(ctx context.Context, categorySlug string, page int) (*transfer.PostList, error) {
	if categorySlug != "" {
		category, err := s.cr.GetBySlug(ctx, categorySlug)
		if err != nil {
			return nil, fmt.Errorf("error getting category: %w", err)
		}
		if category == nil {
			return nil, ErrNotFound
		}
	}
	return s.page(ctx, models.PostFilter{Status: models.PostStatusPublished, CategorySlug: categorySlug}, page)
}

func (s *postService) Search(ctx context.Context, query string, page int) (*transfer.PostList, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &transfer.PostList{Posts: []*models.Post{}, Pagination: pagination.NewPage(1, s.pageSize(), 0)}, nil
	}
	return s.page(ctx, models.PostFilter{Status: models.PostStatusPublished, Query: query}, page)
}

func (s *postService) page(ctx context.Context, filter models.PostFilter, page int) (*transfer.PostList, error) {
	size := s.pageSize()
	if page < 1 {
		page = 1
	}
	total, err := s.pr.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error counting posts: %w", err)
	}

	p := pagination.NewPage(page, size, total)
	filter.Limit = size
	filter.Offset = pagination.Offset(p.Current, size)

	posts, err := s.pr.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	if err := s.attachCategories(ctx, posts); err != nil {
		return nil, err
	}
	for _, post := range posts {
		post.Content = nil
	}
	return &transfer.PostList{Posts: posts, Pagination: p}, nil
}

func (s *postService) pageSize() int {
	if s.cfg.PageSize > 0 {
		return s.cfg.PageSize
	}
	return 12
}

func (s *postService) Featured(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.short(ctx, models.PostFilter{Status: models.PostStatusPublished, Featured: true, Limit: limit})
}

func (s *postService) Popular(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.short(ctx, models.PostFilter{Status: models.PostStatusPublished, OrderBy: "view_count", Limit: limit})
}

func (s *postService) Latest(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.short(ctx, models.PostFilter{Status: models.PostStatusPublished, Limit: limit})
}

// AllPublished lists every published post without content, for the sitemap.
func (s *postService) AllPublished(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.pr.List(ctx, models.PostFilter{Status: models.PostStatusPublished})
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	for _, post := range posts {
		post.Content = nil
	}
	return posts, nil
}

func (s *postService) short(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	if filter.Limit <= 0 || filter.Limit > 50 {
		filter.Limit = 5
	}
	posts, err := s.pr.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	if err := s.attachCategories(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPublished loads a published post with everything the article page
// needs. Drafts and private posts read as not found.
func (s *postService) GetPublished(ctx context.Context, slug string) (*transfer.PostDetail, error) {
	post, err := s.pr.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil || post.Status != models.PostStatusPublished {
		return nil, ErrNotFound
	}
	if err := s.attachCategories(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}

	doc, err := content.Parse(post.Content)
	if err != nil {
		slog.Warn("stored post content is invalid", "post_id", post.ID, "error", err)
		doc = &content.Node{Type: "doc"}
	}

	placement := s.ads.Placement(ctx)
	renderer := content.Renderer{AdClient: placement.Client}
	body, err := renderer.RenderHTML(doc, placement)
	if err != nil {
		return nil, fmt.Errorf("error rendering post: %w", err)
	}

	related, err := s.pr.ListRelated(ctx, post.ID, relatedLimit)
	if err != nil {
		slog.Warn("related posts unavailable", "post_id", post.ID, "error", err)
	}
	if related == nil {
		related = []*models.Post{}
	}
	for _, r := range related {
		r.Content = nil
	}

	return &transfer.PostDetail{
		Post:        post,
		HTML:        body,
		Headings:    content.Headings(doc),
		ReadingTime: content.ReadingTime(doc),
		SEO:         s.seo(post, doc),
		Related:     related,
	}, nil
}

// seo builds the page metadata. Images lists the share image candidates: the
// OG image, the thumbnail, then images in the body; the first one is OGImage,
// and the generated card stands in when there are none.
func (s *postService) seo(post *models.Post, doc *content.Node) transfer.SEO {
	description := post.Excerpt
	if description == "" {
		description = s.cfg.SiteName
	}

	var images []string
	seen := map[string]bool{}
	for _, img := range append([]string{post.OGImageURL, post.ThumbnailURL}, content.Images(doc)...) {
		if strings.HasPrefix(img, "/") && !strings.HasPrefix(img, "//") {
			img = s.cfg.SiteURL + img
		}
		if img == "" || seen[img] {
			continue
		}
		seen[img] = true
		images = append(images, img)
	}
	if len(images) == 0 {
		images = []string{s.cfg.SiteURL + "/og?title=" + url.QueryEscape(post.Title)}
	}

	keywords := make([]string, 0, len(post.Categories))
	for _, c := range post.Categories {
		keywords = append(keywords, c.Name)
	}

	return transfer.SEO{
		Title:        post.Title + " | " + s.cfg.SiteName,
		Description:  description,
		CanonicalURL: s.cfg.SiteURL + "/posts/" + url.PathEscape(post.Slug),
		OGImage:      images[0],
		Images:       images,
		PublishedAt:  post.PublishedAt,
		ModifiedAt:   post.UpdatedAt,
		Keywords:     keywords,
	}
}

func (s *postService) attachCategories(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	byPost, err := s.cr.ListByPostIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("error getting categories: %w", err)
	}
	for _, p := range posts {
		p.Categories = byPost[p.ID]
		if p.Categories == nil {
			p.Categories = []*models.Category{}
		}
	}
	return nil
}
