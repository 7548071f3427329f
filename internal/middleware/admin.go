package middleware

import (
	"slices"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/config"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired admits global admins and the addresses listed in ADMIN_EMAILS.
// It must run after JWTProtected.
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminEmails := cfg.AdminEmailList()

	return func(c *fiber.Ctx) error {
		id, err := session.FromCtx(c)
		if err != nil {
			return unauthorized(c, "Unauthorized")
		}
		if id.Role == models.RoleAdmin || slices.Contains(adminEmails, id.Email) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.Fail("Admin access required", nil))
	}
}
