package session

import (
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

const localsKey = "identity"

// SetIdentity stores the resolved caller on the request.
func SetIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(localsKey, id)
}

// FromCtx returns the caller resolved by the auth middleware.
func FromCtx(c *fiber.Ctx) (Identity, error) {
	id, ok := c.Locals(localsKey).(Identity)
	if !ok {
		return Identity{}, apperr.Unauthenticated("Unauthorized")
	}
	return id, nil
}
