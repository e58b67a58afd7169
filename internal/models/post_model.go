package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Title        string          `db:"title" json:"title"`
	Slug         string          `db:"slug" json:"slug"`
	Status       string          `db:"status" json:"status"` // draft, published, private
	Content      json.RawMessage `db:"content" json:"content"`
	Excerpt      string          `db:"excerpt" json:"excerpt"`
	ThumbnailURL string          `db:"thumbnail_url" json:"thumbnail_url"`
	OGImageURL   string          `db:"og_image_url" json:"og_image_url"`
	PublishedAt  *time.Time      `db:"published_at" json:"published_at"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	ViewCount    int64           `db:"view_count" json:"view_count"`
	HelpfulCount int64           `db:"helpful_count" json:"helpful_count"`
	IsFeatured   bool            `db:"is_featured" json:"is_featured"`
	Categories   []*Category     `db:"-" json:"categories,omitempty"`
}

type PostCategory struct {
	PostID     uuid.UUID `db:"post_id"`
	CategoryID uuid.UUID `db:"category_id"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusPrivate   = "private"
)

func ValidPostStatus(status string) bool {
	switch status {
	case PostStatusDraft, PostStatusPublished, PostStatusPrivate:
		return true
	}
	return false
}

// PostFilter narrows post listings. Zero values mean "no filter".
type PostFilter struct {
	Status       string
	CategorySlug string
	Query        string
	Featured     bool
	Limit        int
	Offset       int
	OrderBy      string // "published_at" (default), "view_count", "updated_at"
}
