package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/maheshrc27/blog-cms/internal/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) (uuid.UUID, error)
	Update(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context) ([]*models.Category, error)
	ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*models.Category, error)
	CountExisting(ctx context.Context, ids []uuid.UUID) (int, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) (uuid.UUID, error) {
	query := `
		INSERT INTO categories (name, slug, color, description, "order")
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Slug, category.Color, category.Description, category.Order).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return uuid.Nil, err
	}
	return id, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1,
			slug = $2,
			color = $3,
			description = $4,
			"order" = $5,
			updated_at = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query, category.Name, category.Slug, category.Color, category.Description,
		category.Order, time.Now(), category.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.getOne(ctx, `WHERE slug = $1`, slug)
}

func (r *categoryRepository) getOne(ctx context.Context, where string, arg any) (*models.Category, error) {
	query := `SELECT id, name, slug, color, description, "order", created_at, updated_at FROM categories ` + where

	var c models.Category
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Slug, &c.Color, &c.Description,
		&c.Order, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var result int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM categories WHERE slug = $1 AND id <> $2", slug, excludeID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

// List returns every category in display order with its count of published posts.
func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.color, c.description, c."order", c.created_at, c.updated_at,
			COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN post_categories pc ON pc.category_id = c.id
		LEFT JOIN posts p ON p.id = pc.post_id AND p.status = $1
		GROUP BY c.id
		ORDER BY c."order", c.name
	`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusPublished)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Color, &c.Description, &c.Order,
			&c.CreatedAt, &c.UpdatedAt, &c.PostCount); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*models.Category, error) {
	result := make(map[uuid.UUID][]*models.Category, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT pc.post_id, c.id, c.name, c.slug, c.color, c.description, c."order", c.created_at, c.updated_at
		FROM post_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.post_id = ANY($1::uuid[])
		ORDER BY c."order", c.name
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(postIDs)))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var c models.Category
		if err := rows.Scan(&postID, &c.ID, &c.Name, &c.Slug, &c.Color, &c.Description, &c.Order,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		result[postID] = append(result[postID], &c)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return result, nil
}

func (r *categoryRepository) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = ANY($1::uuid[])`,
		pq.Array(uuidStrings(ids))).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *categoryRepository) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
