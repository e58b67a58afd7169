package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/blog-cms/internal/feed"
	"github.com/maheshrc27/blog-cms/internal/ogimage"
	"github.com/maheshrc27/blog-cms/internal/service"
)

const feedSize = 20

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SiteHandler serves the crawler-facing documents: RSS, sitemap, robots and
// OG images, plus the health check.
type SiteHandler struct {
	ps   service.PostService
	cs   service.CategoryService
	site feed.Site
	og   *ogimage.Renderer
	db   Pinger
	now  func() time.Time
}

func NewSiteHandler(site feed.Site, ps service.PostService, cs service.CategoryService, og *ogimage.Renderer, db Pinger) *SiteHandler {
	return &SiteHandler{ps: ps, cs: cs, site: site, og: og, db: db, now: time.Now}
}

func (h *SiteHandler) Feed(c *fiber.Ctx) error {
	posts, err := h.ps.Latest(c.Context(), feedSize)
	if err != nil {
		return errorResponse(c, err)
	}

	rss, err := feed.RSS(h.site, posts, h.now())
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "public, max-age=600")
	return c.SendString(rss)
}

func (h *SiteHandler) Sitemap(c *fiber.Ctx) error {
	posts, err := h.ps.AllPublished(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	categories, err := h.cs.List(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}

	body, err := feed.Sitemap(h.site, posts, categories, h.now())
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(body)
}

func (h *SiteHandler) Robots(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(feed.Robots(h.site))
}

func (h *SiteHandler) OGImage(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.og.Render(&buf, c.Query("title", h.site.Name), h.site.Name); err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400, immutable")
	return c.Send(buf.Bytes())
}

func (h *SiteHandler) Health(c *fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
