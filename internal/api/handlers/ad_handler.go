package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/blog-cms/internal/service"
	"github.com/maheshrc27/blog-cms/internal/transfer"
)

type AdHandler struct {
	s service.AdService
}

func NewAdHandler(service service.AdService) *AdHandler {
	return &AdHandler{s: service}
}

// ListActive is the public list; inactive ads are never exposed.
func (h *AdHandler) ListActive(c *fiber.Ctx) error {
	ads, err := h.s.List(c.Context(), true)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(ads)
}

func (h *AdHandler) List(c *fiber.Ctx) error {
	ads, err := h.s.List(c.Context(), false)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(ads)
}

func (h *AdHandler) Create(c *fiber.Ctx) error {
	var req transfer.AdRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	ad, err := h.s.Create(c.Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ad)
}

func (h *AdHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req transfer.AdRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	ad, err := h.s.Update(c.Context(), id, &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(ad)
}

func (h *AdHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.s.Settings(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(settings)
}

func (h *AdHandler) UpdateSettings(c *fiber.Ctx) error {
	var req transfer.AdSettingsRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	settings, err := h.s.UpdateSettings(c.Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(settings)
}
