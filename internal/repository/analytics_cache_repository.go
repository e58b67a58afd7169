package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/blog-cms/internal/models"
)

type AnalyticsCacheRepository interface {
	Get(ctx context.Context, key string) (*models.AnalyticsCache, error)
	Set(ctx context.Context, entry *models.AnalyticsCache) error
}

type analyticsCacheRepository struct {
	db *sql.DB
}

func NewAnalyticsCacheRepository(db *sql.DB) AnalyticsCacheRepository {
	return &analyticsCacheRepository{db: db}
}

func (r *analyticsCacheRepository) Get(ctx context.Context, key string) (*models.AnalyticsCache, error) {
	query := `SELECT cache_key, data, expires_at, updated_at FROM analytics_cache WHERE cache_key = $1`

	var entry models.AnalyticsCache
	var data []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&entry.CacheKey, &data, &entry.ExpiresAt, &entry.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	entry.Data = data
	return &entry, nil
}

// Set writes the entry unconditionally; concurrent writers race and the last
// one wins.
func (r *analyticsCacheRepository) Set(ctx context.Context, entry *models.AnalyticsCache) error {
	query := `
		INSERT INTO analytics_cache (cache_key, data, expires_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (cache_key) DO UPDATE SET
			data = EXCLUDED.data,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, entry.CacheKey, []byte(entry.Data), entry.ExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
