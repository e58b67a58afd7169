package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/blog-cms/internal/service"
)

type MediaHandler struct {
	s service.MediaService
}

func NewMediaHandler(service service.MediaService) *MediaHandler {
	return &MediaHandler{s: service}
}

// Upload takes a multipart form with the image in the "file" field.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, err)
	}
	defer file.Close()

	asset, err := h.s.Upload(c.Context(), GetUserID(c), fileHeader.Filename, file)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(asset)
}

func (h *MediaHandler) List(c *fiber.Ctx) error {
	assets, err := h.s.List(c.Context(), c.QueryInt("page", 1))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(assets)
}

func (h *MediaHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
