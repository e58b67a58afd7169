package feed

import (
	"encoding/xml"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/maheshrc27/blog-cms/internal/models"
)

// Site describes the public blog for feed generation.
type Site struct {
	URL         string
	Name        string
	Description string
	Author      string
}

func (s Site) postURL(slug string) string {
	return s.URL + "/posts/" + url.PathEscape(slug)
}

func (s Site) categoryURL(slug string) string {
	return s.URL + "/categories/" + url.PathEscape(slug)
}

// RSS renders an RSS 2.0 document for the given posts, newest first.
func RSS(site Site, posts []*models.Post, now time.Time) (string, error) {
	f := &feeds.Feed{
		Title:       site.Name,
		Link:        &feeds.Link{Href: site.URL},
		Description: site.Description,
		Created:     now,
	}
	if site.Author != "" {
		f.Author = &feeds.Author{Name: site.Author}
	}

	for _, p := range posts {
		link := site.postURL(p.Slug)
		item := &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: p.Excerpt,
			Updated:     p.UpdatedAt,
			Created:     p.CreatedAt,
		}
		if p.PublishedAt != nil {
			item.Created = *p.PublishedAt
		}
		if enc := enclosure(p.ThumbnailURL); enc != nil {
			item.Enclosure = enc
		}
		f.Items = append(f.Items, item)
	}

	if len(f.Items) > 0 {
		f.Updated = f.Items[0].Created
	}

	out, err := f.ToRss()
	if err != nil {
		return "", fmt.Errorf("render rss: %w", err)
	}
	return out, nil
}

func enclosure(imageURL string) *feeds.Enclosure {
	if imageURL == "" {
		return nil
	}
	u, err := url.Parse(imageURL)
	if err != nil {
		return nil
	}
	kind := mime.TypeByExtension(strings.ToLower(path.Ext(u.Path)))
	if !strings.HasPrefix(kind, "image/") {
		return nil
	}
	return &feeds.Enclosure{Url: imageURL, Length: "0", Type: kind}
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

// Sitemap lists the home page, every published post and every category.
func Sitemap(site Site, posts []*models.Post, categories []*models.Category, now time.Time) ([]byte, error) {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        site.URL + "/",
		LastMod:    now.UTC().Format(time.DateOnly),
		ChangeFreq: "daily",
		Priority:   1.0,
	})

	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        site.postURL(p.Slug),
			LastMod:    p.UpdatedAt.UTC().Format(time.DateOnly),
			ChangeFreq: "weekly",
			Priority:   0.8,
		})
	}
	for _, c := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        site.categoryURL(c.Slug),
			ChangeFreq: "weekly",
			Priority:   0.5,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots allows every crawler except on the admin surface.
func Robots(site Site) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin\n")
	b.WriteString("Disallow: /api/admin\n")
	b.WriteString("\n")
	b.WriteString("Sitemap: " + site.URL + "/sitemap.xml\n")
	return b.String()
}
