package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/maheshrc27/blog-cms/internal/service"
	"github.com/maheshrc27/blog-cms/pkg/utils"
)

const (
	loginStateCookie = "login_state"
	sessionDuration  = 24 * time.Hour
)

type AuthHandler struct {
	s   service.AuthService
	cfg config.Config
}

func NewAuthHandler(cfg config.Config, service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg}
}

func (h *AuthHandler) secure() bool {
	return strings.HasPrefix(h.cfg.SiteURL, "https://")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	state, err := newState(c, loginStateCookie, h.secure())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Redirect(h.s.AuthURL(state), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) LoginCallbackHandler(c *fiber.Ctx) error {
	if !checkState(c, loginStateCookie) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid state",
		})
	}

	userID, err := h.s.LoginCallback(c.Context(), c.Query("code"))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return errorResponse(c, err)
		}
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, fmt.Sprintf("%d", userID), sessionDuration)
	if err != nil {
		return errorResponse(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.secure(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(sessionDuration),
	})

	return c.Redirect(h.cfg.FrontendURL+"/admin", fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		HTTPOnly: true,
		Secure:   h.secure(),
		Path:     "/",
		MaxAge:   -1,
	})
	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}
