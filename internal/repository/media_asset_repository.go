package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/maheshrc27/blog-cms/internal/models"
)

type MediaAssetRepository interface {
	Create(ctx context.Context, ma *models.MediaAsset) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.MediaAsset, error)
	List(ctx context.Context, limit, offset int) ([]*models.MediaAsset, error)
	Count(ctx context.Context) (int64, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type mediaAssetRepository struct {
	db *sql.DB
}

func NewMediaAssetRepository(db *sql.DB) MediaAssetRepository {
	return &mediaAssetRepository{db: db}
}

func (r *mediaAssetRepository) Create(ctx context.Context, ma *models.MediaAsset) (uuid.UUID, error) {
	query := `
		INSERT INTO media_assets (user_id, file_name, object_key, file_type, file_size, file_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, ma.UserID, ma.FileName, ma.ObjectKey, ma.FileType, ma.FileSize, ma.FileURL).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return uuid.Nil, err
	}
	return id, nil
}

func (r *mediaAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaAsset, error) {
	query := `
		SELECT id, user_id, file_name, object_key, file_type, file_size, file_url, created_at
		FROM media_assets
		WHERE id = $1
	`
	var ma models.MediaAsset
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ma.ID,
		&ma.UserID,
		&ma.FileName,
		&ma.ObjectKey,
		&ma.FileType,
		&ma.FileSize,
		&ma.FileURL,
		&ma.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &ma, nil
}

func (r *mediaAssetRepository) List(ctx context.Context, limit, offset int) ([]*models.MediaAsset, error) {
	query := `
		SELECT id, user_id, file_name, object_key, file_type, file_size, file_url, created_at
		FROM media_assets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var assets []*models.MediaAsset
	for rows.Next() {
		var ma models.MediaAsset
		if err := rows.Scan(&ma.ID, &ma.UserID, &ma.FileName, &ma.ObjectKey, &ma.FileType,
			&ma.FileSize, &ma.FileURL, &ma.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		assets = append(assets, &ma)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return assets, nil
}

func (r *mediaAssetRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_assets`).Scan(&count); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *mediaAssetRepository) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM media_assets WHERE id = $1`, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
