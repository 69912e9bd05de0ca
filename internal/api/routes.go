package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the Fiber application with every route mounted.
func NewApp(h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	app.Get("/health", h.Health)

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/refresh", h.Refresh)

	// Public routes above are matched first and never reach the middleware.
	protected := api.Group("")
	protected.Use(AuthMiddleware(h.accounts, h.log))
	protected.Post("/auth/logout", h.Logout)
	protected.Get("/auth/me", h.Me)

	protected.Get("/tasks", h.ListTasks)
	protected.Post("/tasks", h.CreateTask)
	protected.Get("/tasks/:id", h.GetTask)
	protected.Put("/tasks/:id", h.UpdateTask)
	protected.Delete("/tasks/:id", h.DeleteTask)

	protected.Get("/projects", h.ListProjects)
	protected.Post("/projects", h.CreateProject)
	protected.Get("/projects/:id", h.GetProject)
	protected.Put("/projects/:id", h.UpdateProject)
	protected.Delete("/projects/:id", h.DeleteProject)

	protected.Get("/stats", h.Stats)
	protected.Get("/calendar", h.Calendar)

	return app
}
