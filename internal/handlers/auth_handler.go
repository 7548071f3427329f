package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/config"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/services"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusCreated, user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	resp, err := h.authService.Login(c.UserContext(), &req, services.ClientInfo{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		IP:        c.IP(),
	})
	if err != nil {
		return Fail(c, err)
	}
	h.setCookie(c, resp.Token, resp.ExpiresAt)
	return ok(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), h.credential(c)); err != nil {
		return Fail(c, err)
	}
	h.clearCookie(c)
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	n, err := h.authService.LogoutAll(c.UserContext(), id)
	if err != nil {
		return Fail(c, err)
	}
	h.clearCookie(c)
	return ok(c, fiber.StatusOK, dto.LogoutAllResponse{Revoked: n})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	user, err := h.authService.Me(c.UserContext(), id)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	user, err := h.authService.UpdateProfile(c.UserContext(), id, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	if err := h.authService.ChangePassword(c.UserContext(), id, h.credential(c), &req); err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Password updated"})
}

func (h *AuthHandler) credential(c *fiber.Ctx) string {
	return session.Credential(c.Get(fiber.HeaderAuthorization), c.Cookies(h.cfg.SessionCookie))
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
