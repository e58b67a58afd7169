package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/blog-cms/internal/api/handlers"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Post      *handlers.PostHandler
	Category  *handlers.CategoryHandler
	Ad        *handlers.AdHandler
	Media     *handlers.MediaHandler
	Adsense   *handlers.AdsenseHandler
	Analytics *handlers.AnalyticsHandler
	Site      *handlers.SiteHandler
}

// Register mounts the public, auth and admin routes. requireAdmin guards
// everything under /api/admin.
func Register(app *fiber.App, h Handlers, requireAdmin fiber.Handler) {
	app.Get("/healthz", h.Site.Health)
	app.Get("/feed.xml", h.Site.Feed)
	app.Get("/sitemap.xml", h.Site.Sitemap)
	app.Get("/robots.txt", h.Site.Robots)
	app.Get("/og", h.Site.OGImage)

	app.Get("/login", h.Auth.Login)
	app.Get("/login/callback", h.Auth.LoginCallbackHandler)
	app.Get("/logout", h.Auth.Logout)

	api := app.Group("/api")

	api.Get("/posts", h.Post.ListPublished)
	api.Get("/posts/featured", h.Post.Featured)
	api.Get("/posts/popular", h.Post.Popular)
	api.Get("/posts/:slug", h.Post.GetBySlug)
	api.Post("/posts/:slug/helpful", h.Post.MarkHelpful)
	api.Get("/search", h.Post.Search)
	api.Get("/categories", h.Category.List)
	api.Get("/categories/:slug/posts", h.Post.ListPublished)
	api.Get("/ads", h.Ad.ListActive)
	api.Get("/ads/settings", h.Ad.GetSettings)

	admin := api.Group("/admin", requireAdmin)

	admin.Get("/user/info", h.User.GetUserInfo)

	admin.Get("/posts", h.Post.List)
	admin.Post("/posts", h.Post.Create)
	admin.Get("/posts/:id", h.Post.Get)
	admin.Put("/posts/:id", h.Post.Update)
	admin.Patch("/posts/:id/status", h.Post.ChangeStatus)
	admin.Post("/posts/:id/schedule", h.Post.Schedule)
	admin.Delete("/posts/:id", h.Post.Remove)

	admin.Get("/categories", h.Category.List)
	admin.Post("/categories", h.Category.Create)
	admin.Put("/categories/:id", h.Category.Update)
	admin.Delete("/categories/:id", h.Category.Remove)

	admin.Get("/ads", h.Ad.List)
	admin.Post("/ads", h.Ad.Create)
	admin.Put("/ads/:id", h.Ad.Update)
	admin.Delete("/ads/:id", h.Ad.Remove)
	admin.Get("/ad-settings", h.Ad.GetSettings)
	admin.Put("/ad-settings", h.Ad.UpdateSettings)

	admin.Post("/media", h.Media.Upload)
	admin.Get("/media", h.Media.List)
	admin.Delete("/media/:id", h.Media.Remove)

	admin.Get("/adsense/connect", h.Adsense.Connect)
	admin.Get("/adsense/callback", h.Adsense.Callback)
	admin.Get("/adsense/status", h.Adsense.Status)
	admin.Get("/adsense/report", h.Adsense.Report)
	admin.Delete("/adsense", h.Adsense.Disconnect)

	admin.Get("/analytics/overview", h.Analytics.Overview)
	admin.Get("/analytics/top-pages", h.Analytics.TopPages)
	admin.Get("/analytics/search-console", h.Analytics.SearchConsole)
	admin.Post("/analytics/sync-views", h.Analytics.SyncViews)
}
