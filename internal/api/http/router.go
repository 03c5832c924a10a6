package http

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/enosefelix/job-finder-sub000/internal/api/http/handlers"
	"github.com/enosefelix/job-finder-sub000/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Listings       *handlers.ListingsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Prometheus     *fiberprometheus.FiberPrometheus
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Prometheus != nil {
		cfg.Prometheus.RegisterAt(app, "/metrics")
	}

	listings := app.Group("/job-listings", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	listings.Get("/:id", cfg.Listings.Get)
	listings.Delete("/:id", cfg.Listings.Delete)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Patch("/job-listings/:id/status", cfg.Listings.UpdateStatus)
	admin.Delete("/job-listings/:id", cfg.Listings.Delete)
	admin.Post("/users/:id/suspend", cfg.Admin.Suspend)
	admin.Post("/users/:id/reactivate", cfg.Admin.Reactivate)
	admin.Get("/blob-deletions", cfg.Admin.PendingBlobs)
	admin.Post("/blob-deletions/sweep", cfg.Admin.SweepBlobs)
}
