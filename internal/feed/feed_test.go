package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var site = Site{URL: "https://blog.example.com", Name: "Example", Description: "Notes", Author: "Kim"}

func samplePosts() []*models.Post {
	published := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []*models.Post{
		{
			Title:        "Hello & welcome",
			Slug:         "hello",
			Excerpt:      "First post",
			ThumbnailURL: "https://cdn.example.com/a.png",
			PublishedAt:  &published,
			CreatedAt:    published,
			UpdatedAt:    published.Add(24 * time.Hour),
		},
	}
}

func TestRSS(t *testing.T) {
	out, err := RSS(site, samplePosts(), time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<rss version="2.0"`)
	assert.Contains(t, out, "<title>Example</title>")
	assert.Contains(t, out, "<title>Hello &amp; welcome</title>")
	assert.Contains(t, out, "<link>https://blog.example.com/posts/hello</link>")
	assert.Contains(t, out, "First post")
	assert.Contains(t, out, `type="image/png"`)
}

func TestRSSEmpty(t *testing.T) {
	out, err := RSS(site, nil, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, out, "<item>")
}

func TestSitemap(t *testing.T) {
	categories := []*models.Category{{Name: "Go", Slug: "go"}}
	out, err := Sitemap(site, samplePosts(), categories, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "<?xml"))
	assert.Contains(t, s, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, s, "<loc>https://blog.example.com/</loc>")
	assert.Contains(t, s, "<loc>https://blog.example.com/posts/hello</loc>")
	assert.Contains(t, s, "<lastmod>2026-03-02</lastmod>")
	assert.Contains(t, s, "<loc>https://blog.example.com/categories/go</loc>")
	assert.Equal(t, 3, strings.Count(s, "<url>"))
}

func TestRobots(t *testing.T) {
	out := Robots(site)
	assert.Contains(t, out, "User-agent: *")
	assert.Contains(t, out, "Sitemap: https://blog.example.com/sitemap.xml")
}
