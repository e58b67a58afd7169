package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/blog-cms/internal/service"
	"github.com/maheshrc27/blog-cms/internal/transfer"
)

type CategoryHandler struct {
	s service.CategoryService
}

func NewCategoryHandler(service service.CategoryService) *CategoryHandler {
	return &CategoryHandler{s: service}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.s.List(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req transfer.CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	category, err := h.s.Create(c.Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req transfer.CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	category, err := h.s.Update(c.Context(), id, &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
