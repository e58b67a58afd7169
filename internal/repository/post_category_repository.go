package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
)

type PostCategoryRepository interface {
	Replace(ctx context.Context, tx *sql.Tx, postID uuid.UUID, categoryIDs []uuid.UUID) error
	ListCategoryIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)
}

type postCategoryRepository struct {
	db *sql.DB
}

func NewPostCategoryRepository(db *sql.DB) PostCategoryRepository {
	return &postCategoryRepository{db: db}
}

// Replace swaps the post's category rows for categoryIDs. With a nil tx it
// opens its own transaction.
func (r *postCategoryRepository) Replace(ctx context.Context, tx *sql.Tx, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	own := tx == nil
	if own {
		var err error
		tx, err = r.db.BeginTx(ctx, nil)
		if err != nil {
			slog.Info(err.Error())
			return err
		}
		defer tx.Rollback()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID); err != nil {
		slog.Info(err.Error())
		return err
	}

	seen := make(map[uuid.UUID]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := tx.ExecContext(ctx, `INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)`, postID, id); err != nil {
			slog.Info(err.Error())
			return err
		}
	}

	if own {
		if err := tx.Commit(); err != nil {
			slog.Info(err.Error())
			return err
		}
	}
	return nil
}

func (r *postCategoryRepository) ListCategoryIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category_id FROM post_categories WHERE post_id = $1`, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
