package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/blog-cms/internal/models"
)

type AdSettingsRepository interface {
	Get(ctx context.Context) (*models.AdSettings, error)
	Upsert(ctx context.Context, s *models.AdSettings) error
}

type adSettingsRepository struct {
	db *sql.DB
}

func NewAdSettingsRepository(db *sql.DB) AdSettingsRepository {
	return &adSettingsRepository{db: db}
}

func (r *adSettingsRepository) Get(ctx context.Context) (*models.AdSettings, error) {
	query := `
		SELECT id, client_id, sidebar, article_top, in_article_1, in_article_2, in_article_3,
			in_article_4, in_article_5, article_bottom, is_active, updated_at
		FROM ad_settings
		WHERE id = 1
	`
	var s models.AdSettings
	err := r.db.QueryRowContext(ctx, query).Scan(&s.ID, &s.ClientID, &s.Sidebar, &s.ArticleTop,
		&s.InArticle1, &s.InArticle2, &s.InArticle3, &s.InArticle4, &s.InArticle5,
		&s.ArticleBottom, &s.IsActive, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &s, nil
}

func (r *adSettingsRepository) Upsert(ctx context.Context, s *models.AdSettings) error {
	query := `
		INSERT INTO ad_settings (id, client_id, sidebar, article_top, in_article_1, in_article_2,
			in_article_3, in_article_4, in_article_5, article_bottom, is_active, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			sidebar = EXCLUDED.sidebar,
			article_top = EXCLUDED.article_top,
			in_article_1 = EXCLUDED.in_article_1,
			in_article_2 = EXCLUDED.in_article_2,
			in_article_3 = EXCLUDED.in_article_3,
			in_article_4 = EXCLUDED.in_article_4,
			in_article_5 = EXCLUDED.in_article_5,
			article_bottom = EXCLUDED.article_bottom,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, s.ClientID, s.Sidebar, s.ArticleTop, s.InArticle1, s.InArticle2,
		s.InArticle3, s.InArticle4, s.InArticle5, s.ArticleBottom, s.IsActive)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
