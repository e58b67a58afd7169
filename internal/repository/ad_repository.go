package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/blog-cms/internal/models"
)

type AdRepository interface {
	Create(ctx context.Context, ad *models.Ad) (uuid.UUID, error)
	Update(ctx context.Context, ad *models.Ad) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Ad, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Ad, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type adRepository struct {
	db *sql.DB
}

func NewAdRepository(db *sql.DB) AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) Create(ctx context.Context, ad *models.Ad) (uuid.UUID, error) {
	query := `
		INSERT INTO ads (name, location, slot_id, format, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, ad.Name, ad.Location, ad.SlotID, ad.Format, ad.IsActive).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return uuid.Nil, err
	}
	return id, nil
}

func (r *adRepository) Update(ctx context.Context, ad *models.Ad) error {
	query := `
		UPDATE ads
		SET name = $1,
			location = $2,
			slot_id = $3,
			format = $4,
			is_active = $5,
			updated_at = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query, ad.Name, ad.Location, ad.SlotID, ad.Format, ad.IsActive, time.Now(), ad.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *adRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	query := `SELECT id, name, location, slot_id, format, is_active, created_at, updated_at FROM ads WHERE id = $1`

	var ad models.Ad
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ad.ID, &ad.Name, &ad.Location, &ad.SlotID, &ad.Format,
		&ad.IsActive, &ad.CreatedAt, &ad.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &ad, nil
}

func (r *adRepository) List(ctx context.Context, activeOnly bool) ([]*models.Ad, error) {
	query := `SELECT id, name, location, slot_id, format, is_active, created_at, updated_at FROM ads`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY location, created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var ads []*models.Ad
	for rows.Next() {
		var ad models.Ad
		if err := rows.Scan(&ad.ID, &ad.Name, &ad.Location, &ad.SlotID, &ad.Format,
			&ad.IsActive, &ad.CreatedAt, &ad.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ads = append(ads, &ad)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return ads, nil
}

func (r *adRepository) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
