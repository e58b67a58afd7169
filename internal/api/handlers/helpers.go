package handlers

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/maheshrc27/blog-cms/internal/content"
	"github.com/maheshrc27/blog-cms/internal/service"
	"github.com/maheshrc27/blog-cms/internal/transfer"
	"github.com/maheshrc27/blog-cms/pkg/utils"
)

func GetUserID(c *fiber.Ctx) int64 {
	raw, _ := c.Locals("user_id").(string)
	userID, _ := strconv.ParseInt(raw, 10, 64)
	return userID
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrInvalidInput, fiber.StatusBadRequest},
	{content.ErrInvalidDocument, fiber.StatusBadRequest},
	{service.ErrUnauthorized, fiber.StatusUnauthorized},
	{service.ErrForbidden, fiber.StatusForbidden},
	{service.ErrNotFound, fiber.StatusNotFound},
	{service.ErrSlugConflict, fiber.StatusConflict},
	{service.ErrAdsenseNotConnected, fiber.StatusConflict},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge},
	{service.ErrUnsupportedType, fiber.StatusUnsupportedMediaType},
	{service.ErrRateLimited, fiber.StatusTooManyRequests},
	{service.ErrNotConfigured, fiber.StatusServiceUnavailable},
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return fiber.StatusInternalServerError
}

// errorResponse writes {"error": ...}. Internal errors are logged and hidden.
func errorResponse(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		slog.Error(err.Error(), "method", c.Method(), "path", c.Path())
		return c.Status(status).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", service.ErrInvalidInput)
	}
	return id, nil
}

// parseBody decodes the JSON body into v and validates it.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%w: invalid request body", service.ErrInvalidInput)
	}
	if err := transfer.Validate(v); err != nil {
		return fmt.Errorf("%w: %s", service.ErrInvalidInput, err)
	}
	return nil
}

func queryLimit(c *fiber.Ctx, def int) int {
	limit := c.QueryInt("limit", def)
	if limit <= 0 || limit > 50 {
		return def
	}
	return limit
}

const stateMaxAge = 10 * 60

// newState issues a random OAuth state and remembers it in a short-lived
// cookie.
func newState(c *fiber.Ctx, cookieName string, secure bool) (string, error) {
	state, err := utils.GenerateRandomKey(24)
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    state,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		MaxAge:   stateMaxAge,
	})
	return state, nil
}

// checkState compares the callback's state with the cookie and clears it.
func checkState(c *fiber.Ctx, cookieName string) bool {
	expected := c.Cookies(cookieName)
	c.ClearCookie(cookieName)
	return expected != "" && subtle.ConstantTimeCompare([]byte(expected), []byte(c.Query("state"))) == 1
}
