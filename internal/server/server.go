// Package server assembles the Fiber application: services over the store,
// handlers over services, and the global middleware chain.
package server

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/access"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/config"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/repository"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/routes"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/services"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type Options struct {
	// AccessLog enables the per-request access log line.
	AccessLog bool
}

func New(cfg *config.Config, store repository.Store, opts Options) *fiber.App {
	resolver := session.NewResolver(cfg.JWTSecret,
		session.WithStore(store.Sessions(), cfg.SessionRequired),
		session.WithUsers(store.Users(), cfg.AutoApproveUsers),
	)
	issuer := session.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	evaluator := access.NewEvaluator(store)

	authService := services.NewAuthService(store, issuer, cfg)
	adminService := services.NewAdminService(store)
	projectService := services.NewProjectService(store, evaluator)
	boardService := services.NewBoardService(store, evaluator)
	columnService := services.NewColumnService(store, evaluator)
	taskService := services.NewTaskService(store, evaluator)
	commentService := services.NewCommentService(store, evaluator)

	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
		}))
	}
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, resolver, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService, cfg),
		Admin:   handlers.NewAdminHandler(adminService),
		Health:  handlers.NewHealthHandler(store),
		Project: handlers.NewProjectHandler(projectService),
		Board:   handlers.NewBoardHandler(boardService, columnService),
		Task:    handlers.NewTaskHandler(taskService, commentService),
	})

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail("Route not found", nil))
	})

	return app
}

// ErrorHandler renders errors that escape handlers, including panics caught
// by recover and fiber's own routing errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		message := fe.Message
		// Only expose error details for client errors (4xx), not server errors (5xx)
		if fe.Code >= fiber.StatusInternalServerError {
			slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
			message = "Internal server error"
		}
		return c.Status(fe.Code).JSON(dto.Fail(message, nil))
	}
	return handlers.Fail(c, err)
}
