package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/config"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Admin   *handlers.AdminHandler
	Health  *handlers.HealthHandler
	Project *handlers.ProjectHandler
	Board   *handlers.BoardHandler
	Task    *handlers.TaskHandler
}

func Setup(app *fiber.App, cfg *config.Config, resolver *session.Resolver, h Handlers) {
	api := app.Group("/api")

	// General API rate limit per IP
	api.Use(rateLimit(cfg.RateLimitPerMinute))

	api.Get("/health", h.Health.Check)

	protected := middleware.JWTProtected(resolver, cfg.SessionCookie)

	// Auth: stricter per-IP limit on the public endpoints
	auth := api.Group("/auth")
	authLimit := rateLimit(cfg.AuthRateLimitPerMinute)
	auth.Post("/register", authLimit, h.Auth.Register)
	auth.Post("/login", authLimit, h.Auth.Login)
	auth.Post("/logout", h.Auth.Logout)
	auth.Post("/logout-all", protected, h.Auth.LogoutAll)
	auth.Get("/me", protected, h.Auth.Me)

	users := api.Group("/users", protected)
	users.Put("/me", h.Auth.UpdateProfile)
	users.Put("/me/password", h.Auth.ChangePassword)

	admin := api.Group("/admin", protected, middleware.AdminRequired(cfg))
	admin.Get("/users", h.Admin.ListUsers)
	admin.Put("/users/:id/approve", h.Admin.ApproveUser)
	admin.Put("/users/:id/role", h.Admin.SetUserRole)

	projects := api.Group("/projects", protected)
	projects.Get("/", h.Project.List)
	projects.Post("/", h.Project.Create)
	projects.Get("/:id", h.Project.Get)
	projects.Put("/:id", h.Project.Update)
	projects.Delete("/:id", h.Project.Delete)
	projects.Get("/:id/access", h.Project.Access)
	projects.Get("/:id/members", h.Project.ListMembers)
	projects.Post("/:id/members", h.Project.AddMember)
	projects.Put("/:id/members/:userId", h.Project.UpdateMember)
	projects.Delete("/:id/members/:userId", h.Project.RemoveMember)
	projects.Get("/:id/boards", h.Board.List)
	projects.Post("/:id/boards", h.Board.Create)

	boards := api.Group("/boards", protected)
	boards.Get("/:id", h.Board.Get)
	boards.Put("/:id", h.Board.Update)
	boards.Delete("/:id", h.Board.Delete)
	boards.Get("/:id/columns", h.Board.ListColumns)
	boards.Post("/:id/columns", h.Board.CreateColumn)
	boards.Put("/:id/columns/reorder", h.Board.ReorderColumns)
	boards.Get("/:id/tasks", h.Task.ListByBoard)

	columns := api.Group("/columns", protected)
	columns.Put("/:id", h.Board.UpdateColumn)
	columns.Delete("/:id", h.Board.DeleteColumn)
	columns.Get("/:id/tasks", h.Task.ListByColumn)
	columns.Post("/:id/tasks", h.Task.Create)

	tasks := api.Group("/tasks", protected)
	tasks.Get("/:id", h.Task.Get)
	tasks.Put("/:id", h.Task.Update)
	tasks.Delete("/:id", h.Task.Delete)
	tasks.Put("/:id/move", h.Task.Move)
	tasks.Get("/:id/comments", h.Task.ListComments)
	tasks.Post("/:id/comments", h.Task.CreateComment)

	comments := api.Group("/comments", protected)
	comments.Put("/:id", h.Task.UpdateComment)
	comments.Delete("/:id", h.Task.DeleteComment)
}

// rateLimit allows max requests per minute per IP. Zero or less disables it.
func rateLimit(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
