package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/blog-cms/configs"
)

// AppConfig is the fiber configuration for the server. The body limit leaves
// room above the upload cap so oversized images reach the media service.
// Behind a proxy, client IPs come from cfg.ProxyHeader, and only when the
// connection is from one of cfg.TrustedProxies.
func AppConfig(cfg config.Config) fiber.Config {
	return fiber.Config{
		ReadTimeout:             time.Minute,
		WriteTimeout:            time.Minute,
		BodyLimit:               int(cfg.MaxUploadSize) + 1024*1024,
		ProxyHeader:             cfg.ProxyHeader,
		EnableTrustedProxyCheck: cfg.ProxyHeader != "",
		TrustedProxies:          cfg.TrustedProxies,
		EnableIPValidation:      true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error(err.Error(), "path", c.Path())
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	}
}
