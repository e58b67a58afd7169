package transfer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/blog-cms/internal/content"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/pkg/pagination"
)

type PostRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Slug         string          `json:"slug" validate:"omitempty,max=200"`
	Status       string          `json:"status" validate:"omitempty,oneof=draft published private"`
	Content      json.RawMessage `json:"content"`
	Excerpt      string          `json:"excerpt" validate:"max=500"`
	ThumbnailURL string          `json:"thumbnail_url" validate:"omitempty,url"`
	OGImageURL   string          `json:"og_image_url" validate:"omitempty,url"`
	IsFeatured   bool            `json:"is_featured"`
	CategoryIDs  []uuid.UUID     `json:"category_ids" validate:"max=10"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published private"`
}

type ScheduleRequest struct {
	PublishAt time.Time `json:"publish_at" validate:"required"`
}

type PostList struct {
	Posts      []*models.Post  `json:"posts"`
	Pagination pagination.Page `json:"pagination"`
}

type SEO struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CanonicalURL string     `json:"canonical_url"`
	OGImage      string     `json:"og_image"`
	Images       []string   `json:"images"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	ModifiedAt   time.Time  `json:"modified_at"`
	Keywords     []string   `json:"keywords,omitempty"`
}

type PostDetail struct {
	Post        *models.Post      `json:"post"`
	HTML        string            `json:"html"`
	Headings    []content.Heading `json:"headings"`
	ReadingTime int               `json:"reading_time"`
	SEO         SEO               `json:"seo"`
	Related     []*models.Post    `json:"related"`
}

type HelpfulResponse struct {
	HelpfulCount int64 `json:"helpful_count"`
}
