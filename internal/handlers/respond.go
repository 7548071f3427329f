package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.OK(data))
}

// Fail renders err as an error envelope. Server errors are logged and sent to
// Sentry; the client only ever sees a generic message for them.
func Fail(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	message, details := apperr.Public(err)
	if status >= fiber.StatusInternalServerError {
		attrs := []any{
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		}
		if id, idErr := session.FromCtx(c); idErr == nil {
			attrs = append(attrs, "user_id", id.UserID.String())
		}
		slog.Error("request failed", attrs...)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	return c.Status(status).JSON(dto.Fail(message, details))
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid %s", name).WithDetail(name, "must be a UUID")
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	return nil
}
