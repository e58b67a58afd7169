package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/blog-cms/internal/models"
)

type AdsenseTokenRepository interface {
	Upsert(ctx context.Context, t *models.GoogleAdsenseToken) error
	GetByUserID(ctx context.Context, userID int64) (*models.GoogleAdsenseToken, error)
	ListExpiringBefore(ctx context.Context, before time.Time) ([]*models.GoogleAdsenseToken, error)
	SetToken(ctx context.Context, t *models.GoogleAdsenseToken) error
	RemoveByUserID(ctx context.Context, userID int64) error
}

type adsenseTokenRepository struct {
	db *sql.DB
}

func NewAdsenseTokenRepository(db *sql.DB) AdsenseTokenRepository {
	return &adsenseTokenRepository{db: db}
}

func (r *adsenseTokenRepository) Upsert(ctx context.Context, t *models.GoogleAdsenseToken) error {
	query := `
		INSERT INTO google_adsense_tokens (user_id, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), google_adsense_tokens.refresh_token),
			expires_at = EXCLUDED.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, t.UserID, t.AccessToken, t.RefreshToken, t.ExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *adsenseTokenRepository) GetByUserID(ctx context.Context, userID int64) (*models.GoogleAdsenseToken, error) {
	query := `
		SELECT id, user_id, access_token, refresh_token, expires_at, created_at, updated_at
		FROM google_adsense_tokens
		WHERE user_id = $1
	`
	var t models.GoogleAdsenseToken
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&t.ID, &t.UserID, &t.AccessToken, &t.RefreshToken,
		&t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &t, nil
}

func (r *adsenseTokenRepository) ListExpiringBefore(ctx context.Context, before time.Time) ([]*models.GoogleAdsenseToken, error) {
	query := `
		SELECT id, user_id, access_token, refresh_token, expires_at, created_at, updated_at
		FROM google_adsense_tokens
		WHERE expires_at < $1
	`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var tokens []*models.GoogleAdsenseToken
	for rows.Next() {
		var t models.GoogleAdsenseToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccessToken, &t.RefreshToken,
			&t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		tokens = append(tokens, &t)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return tokens, nil
}

// SetToken stores refreshed credentials. An empty refresh token keeps the
// stored one.
func (r *adsenseTokenRepository) SetToken(ctx context.Context, t *models.GoogleAdsenseToken) error {
	query := `
		UPDATE google_adsense_tokens
		SET
			access_token = $2,
			refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
			expires_at = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, t.UserID, t.AccessToken, t.RefreshToken, t.ExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *adsenseTokenRepository) RemoveByUserID(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM google_adsense_tokens WHERE user_id = $1`, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
