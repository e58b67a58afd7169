package models

import (
	"time"

	"github.com/google/uuid"
)

type MediaAsset struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	FileName   string    `db:"file_name" json:"file_name"`
	ObjectKey  string    `db:"object_key" json:"object_key"`
	FileType   string    `db:"file_type" json:"file_type"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	FileURL    string    `db:"file_url" json:"file_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
