package models

import (
	"time"

	"github.com/google/uuid"
)

type Ad struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  string    `db:"location" json:"location"`
	SlotID    string    `db:"slot_id" json:"slot_id"`
	Format    string    `db:"format" json:"format"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	AdLocationSidebar       = "sidebar"
	AdLocationArticleTop    = "article-top"
	AdLocationArticleBottom = "article-bottom"
	AdLocationInArticle1    = "in-article-1"
	AdLocationInArticle2    = "in-article-2"
	AdLocationInArticle3    = "in-article-3"
	AdLocationInArticle4    = "in-article-4"
	AdLocationInArticle5    = "in-article-5"
)

var AdLocations = []string{
	AdLocationSidebar,
	AdLocationArticleTop,
	AdLocationInArticle1,
	AdLocationInArticle2,
	AdLocationInArticle3,
	AdLocationInArticle4,
	AdLocationInArticle5,
	AdLocationArticleBottom,
}

func ValidAdLocation(location string) bool {
	for _, l := range AdLocations {
		if l == location {
			return true
		}
	}
	return false
}

// AdSettings is the single site-wide row of AdSense slot IDs.
type AdSettings struct {
	ID            int64     `db:"id" json:"-"`
	ClientID      string    `db:"client_id" json:"client_id"`
	Sidebar       string    `db:"sidebar" json:"sidebar"`
	ArticleTop    string    `db:"article_top" json:"article_top"`
	InArticle1    string    `db:"in_article_1" json:"in_article_1"`
	InArticle2    string    `db:"in_article_2" json:"in_article_2"`
	InArticle3    string    `db:"in_article_3" json:"in_article_3"`
	InArticle4    string    `db:"in_article_4" json:"in_article_4"`
	InArticle5    string    `db:"in_article_5" json:"in_article_5"`
	ArticleBottom string    `db:"article_bottom" json:"article_bottom"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// InArticleSlots returns the five in-article slot IDs in placement order.
func (s *AdSettings) InArticleSlots() []string {
	return []string{s.InArticle1, s.InArticle2, s.InArticle3, s.InArticle4, s.InArticle5}
}
