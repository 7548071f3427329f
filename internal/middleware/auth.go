package middleware

import (
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenLocalsKey = "jwt"

// JWTProtected verifies the bearer header (or the session cookie), then
// corroborates the token with the persisted session and stores the caller's
// identity on the request.
func JWTProtected(resolver *session.Resolver, cookieName string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenLookup: "header:" + fiber.HeaderAuthorization + ",cookie:" + cookieName,
		AuthScheme:  "Bearer",
		ContextKey:  tokenLocalsKey,
		Claims:      &session.Claims{},
		KeyFunc:     resolver.KeyFunc,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenLocalsKey).(*jwt.Token)
			if !ok {
				return unauthorized(c, "Unauthorized")
			}
			claims, ok := token.Claims.(*session.Claims)
			if !ok {
				return unauthorized(c, "Unauthorized: invalid token claims")
			}
			id, err := resolver.Identify(c.UserContext(), token.Raw, claims)
			if err != nil {
				if apperr.Status(err) == fiber.StatusUnauthorized {
					return unauthorized(c, "Unauthorized: "+err.Error())
				}
				return err
			}
			session.SetIdentity(c, id)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		},
	})
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(message, nil))
}
