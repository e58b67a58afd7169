package handlers

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/maheshrc27/blog-cms/internal/service"
)

const adsenseStateCookie = "adsense_state"

type AdsenseHandler struct {
	s   service.AdsenseService
	cfg config.Config
}

func NewAdsenseHandler(cfg config.Config, service service.AdsenseService) *AdsenseHandler {
	return &AdsenseHandler{s: service, cfg: cfg}
}

func (h *AdsenseHandler) Connect(c *fiber.Ctx) error {
	state, err := newState(c, adsenseStateCookie, strings.HasPrefix(h.cfg.SiteURL, "https://"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Redirect(h.s.AuthURL(state), fiber.StatusTemporaryRedirect)
}

func (h *AdsenseHandler) Callback(c *fiber.Ctx) error {
	target := h.cfg.FrontendURL + "/admin/adsense"

	if errParam := c.Query("error"); errParam != "" {
		slog.Info("adsense consent declined", "error", errParam)
		return c.Redirect(target+"?error="+url.QueryEscape(errParam), fiber.StatusTemporaryRedirect)
	}
	if !checkState(c, adsenseStateCookie) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid state",
		})
	}

	if err := h.s.Callback(c.Context(), GetUserID(c), c.Query("code")); err != nil {
		return errorResponse(c, err)
	}
	return c.Redirect(target+"?connected=1", fiber.StatusTemporaryRedirect)
}

func (h *AdsenseHandler) Status(c *fiber.Ctx) error {
	status, err := h.s.Status(c.Context(), GetUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(status)
}

func (h *AdsenseHandler) Disconnect(c *fiber.Ctx) error {
	if err := h.s.Disconnect(c.Context(), GetUserID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdsenseHandler) Report(c *fiber.Ctx) error {
	report, err := h.s.Report(c.Context(), GetUserID(c), c.QueryInt("days", 30))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(report)
}
