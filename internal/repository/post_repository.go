package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/maheshrc27/blog-cms/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (uuid.UUID, error)
	Update(ctx context.Context, tx *sql.Tx, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	Count(ctx context.Context, filter models.PostFilter) (int64, error)
	ListRelated(ctx context.Context, postID uuid.UUID, limit int) ([]*models.Post, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, publishedAt *time.Time) error
	IncrementHelpful(ctx context.Context, slug string) (int64, bool, error)
	SetViewCounts(ctx context.Context, counts map[string]int64) (int64, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `p.id, p.title, p.slug, p.status, p.content, p.excerpt, p.thumbnail_url, p.og_image_url,
	p.published_at, p.created_at, p.updated_at, p.view_count, p.helpful_count, p.is_featured`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var content []byte
	err := row.Scan(&post.ID, &post.Title, &post.Slug, &post.Status, &content, &post.Excerpt,
		&post.ThumbnailURL, &post.OGImageURL, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt,
		&post.ViewCount, &post.HelpfulCount, &post.IsFeatured)
	if err != nil {
		return nil, err
	}
	post.Content = content
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (uuid.UUID, error) {
	query := `
		INSERT INTO posts (title, slug, status, content, excerpt, thumbnail_url, og_image_url, published_at, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	args := []any{post.Title, post.Slug, post.Status, []byte(post.Content), post.Excerpt,
		post.ThumbnailURL, post.OGImageURL, post.PublishedAt, post.IsFeatured}

	var id uuid.UUID
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return uuid.Nil, err
	}

	return id, nil
}

func (r *postRepository) Update(ctx context.Context, tx *sql.Tx, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = $1,
			slug = $2,
			status = $3,
			content = $4,
			excerpt = $5,
			thumbnail_url = $6,
			og_image_url = $7,
			published_at = $8,
			is_featured = $9,
			updated_at = $10
		WHERE id = $11
	`
	args := []any{post.Title, post.Slug, post.Status, []byte(post.Content), post.Excerpt,
		post.ThumbnailURL, post.OGImageURL, post.PublishedAt, post.IsFeatured, time.Now(), post.ID}

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.slug = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	query := "SELECT 1 FROM posts WHERE slug = $1 AND id <> $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

var postOrderings = map[string]string{
	"":             "p.published_at DESC NULLS LAST, p.created_at DESC",
	"published_at": "p.published_at DESC NULLS LAST, p.created_at DESC",
	"view_count":   "p.view_count DESC, p.published_at DESC NULLS LAST",
	"updated_at":   "p.updated_at DESC",
}

func buildPostWhere(filter models.PostFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = p.id AND c.slug = $%d)`, len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.excerpt ILIKE $%d)", len(args), len(args)))
	}
	if filter.Featured {
		conds = append(conds, "p.is_featured")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	where, args := buildPostWhere(filter)
	order, ok := postOrderings[filter.OrderBy]
	if !ok {
		order = postOrderings[""]
	}

	query := `SELECT ` + postColumns + ` FROM posts p` + where + ` ORDER BY ` + order
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter models.PostFilter) (int64, error) {
	where, args := buildPostWhere(filter)

	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

// ListRelated returns published posts sharing at least one category with the
// given post, newest first.
func (r *postRepository) ListRelated(ctx context.Context, postID uuid.UUID, limit int) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.status = $1
			AND p.id <> $2
			AND EXISTS (
				SELECT 1 FROM post_categories pc
				WHERE pc.post_id = p.id
					AND pc.category_id IN (SELECT category_id FROM post_categories WHERE post_id = $2)
			)
		ORDER BY p.published_at DESC NULLS LAST
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusPublished, postID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// UpdateStatus sets the status. A non-nil publishedAt replaces published_at
// when it is empty or later than publishedAt, so a first publish stamps the
// time and overrides a pending schedule.
func (r *postRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, publishedAt *time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			published_at = CASE
				WHEN $2::timestamptz IS NOT NULL AND (published_at IS NULL OR published_at > $2) THEN $2
				ELSE published_at
			END,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, publishedAt, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// IncrementHelpful bumps the counter of a published post. The bool is false
// when no published post has that slug.
func (r *postRepository) IncrementHelpful(ctx context.Context, slug string) (int64, bool, error) {
	query := `
		UPDATE posts
		SET helpful_count = helpful_count + 1
		WHERE slug = $1 AND status = $2
		RETURNING helpful_count
	`
	var count int64
	err := r.db.QueryRowContext(ctx, query, slug, models.PostStatusPublished).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		slog.Info(err.Error())
		return 0, false, err
	}
	return count, true, nil
}

// SetViewCounts writes view_count for every slug in counts in one statement
// and returns the number of posts updated.
func (r *postRepository) SetViewCounts(ctx context.Context, counts map[string]int64) (int64, error) {
	if len(counts) == 0 {
		return 0, nil
	}

	slugs := make([]string, 0, len(counts))
	views := make([]int64, 0, len(counts))
	for slug, v := range counts {
		slugs = append(slugs, slug)
		views = append(views, v)
	}

	query := `
		UPDATE posts AS p
		SET view_count = v.views
		FROM UNNEST($1::text[], $2::bigint[]) AS v(slug, views)
		WHERE p.slug = v.slug AND p.view_count <> v.views
	`
	result, err := r.db.ExecContext(ctx, query, pq.Array(slugs), pq.Array(views))
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}

func (r *postRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
