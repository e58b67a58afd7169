package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/blog-cms/internal/service"
	"github.com/maheshrc27/blog-cms/internal/transfer"
)

type AnalyticsHandler struct {
	s service.AnalyticsService
}

func NewAnalyticsHandler(service service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{s: service}
}

func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	rows, err := h.s.Overview(c.Context(), c.QueryBool("refresh"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(rows)
}

func (h *AnalyticsHandler) TopPages(c *fiber.Ctx) error {
	pages, err := h.s.TopPages(c.Context(), c.QueryBool("refresh"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(pages)
}

func (h *AnalyticsHandler) SearchConsole(c *fiber.Ctx) error {
	queries, err := h.s.SearchConsole(c.Context(), c.QueryBool("refresh"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(queries)
}

func (h *AnalyticsHandler) SyncViews(c *fiber.Ctx) error {
	updated, err := h.s.SyncViewCounts(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(transfer.SyncResult{Updated: updated})
}
