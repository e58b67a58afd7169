package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/blog-cms/internal/service"
	"github.com/maheshrc27/blog-cms/internal/transfer"
)

type PostHandler struct {
	s service.PostService
	r service.ReactionService
}

func NewPostHandler(service service.PostService, reactions service.ReactionService) *PostHandler {
	return &PostHandler{s: service, r: reactions}
}

// ListPublished serves /api/posts and /api/categories/:slug/posts.
func (h *PostHandler) ListPublished(c *fiber.Ctx) error {
	category := c.Params("slug", c.Query("category"))

	posts, err := h.s.ListPublished(c.Context(), category, c.QueryInt("page", 1))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(posts)
}

func (h *PostHandler) Featured(c *fiber.Ctx) error {
	posts, err := h.s.Featured(c.Context(), queryLimit(c, 5))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(posts)
}

func (h *PostHandler) Popular(c *fiber.Ctx) error {
	posts, err := h.s.Popular(c.Context(), queryLimit(c, 5))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(posts)
}

func (h *PostHandler) Search(c *fiber.Ctx) error {
	posts, err := h.s.Search(c.Context(), c.Query("q"), c.QueryInt("page", 1))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(posts)
}

func (h *PostHandler) GetBySlug(c *fiber.Ctx) error {
	detail, err := h.s.GetPublished(c.Context(), c.Params("slug"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(detail)
}

func (h *PostHandler) MarkHelpful(c *fiber.Ctx) error {
	count, err := h.r.MarkHelpful(c.Context(), c.Params("slug"), c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(transfer.HelpfulResponse{HelpfulCount: count})
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	posts, err := h.s.List(c.Context(), c.Query("status"), c.QueryInt("page", 1))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(posts)
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	post, err := h.s.Get(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	var req transfer.PostRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	post, err := h.s.Create(c.Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req transfer.PostRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	post, err := h.s.Update(c.Context(), id, &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req transfer.StatusRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	post, err := h.s.ChangeStatus(c.Context(), id, req.Status)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Schedule(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req transfer.ScheduleRequest
	if err := parseBody(c, &req); err != nil {
		return errorResponse(c, err)
	}

	post, err := h.s.SchedulePublish(c.Context(), id, req.PublishAt)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
