package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bugtrackr/bug-tracker/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Bugs      *handlers.BugsHandler
	Metrics   *handlers.MetricsHandler
	RateLimit fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)
	api.Get("/metrics", cfg.Metrics.Get)

	bugs := api.Group("/bugs")
	if cfg.RateLimit != nil {
		bugs.Use(cfg.RateLimit)
	}
	bugs.Get("/", cfg.Bugs.ListBugs)
	bugs.Post("/", cfg.Bugs.CreateBug)
	bugs.Get("/:id", cfg.Bugs.GetBug)
	bugs.Put("/:id", cfg.Bugs.UpdateBug)
	bugs.Delete("/:id", cfg.Bugs.DeleteBug)
}
