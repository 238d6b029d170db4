package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers/provider"
	"github.com/meinhoongagan/homeservice/middleware"
	"github.com/meinhoongagan/homeservice/models"
)

// SetupProviderRoutes configures the provider dashboard and service management.
// The guards are attached per route: a group-level Use on "/provider" would
// also match the public "/providers/:id".
func SetupProviderRoutes(app *fiber.App, d Deps, protected fiber.Handler) {
	dashboard := provider.NewDashboardController(d.Bookings)
	svc := provider.NewServiceController(d.Catalog)
	guard := []fiber.Handler{protected, middleware.Authorize(middleware.RequireRole(models.RoleProvider))}
	with := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, guard...), h)
	}

	app.Post("/bookings/:id/status", with(dashboard.UpdateStatus)...)

	group := app.Group("/provider")
	group.Get("/dashboard", with(dashboard.Overview)...)
	group.Get("/services", with(svc.List)...)
	group.Post("/services", with(svc.Create)...)
	group.Put("/services/:id", with(svc.Update)...)
	group.Delete("/services/:id", with(svc.Delete)...)
	group.Post("/services/:id/activate", with(svc.Activate)...)
	group.Post("/services/:id/deactivate", with(svc.Deactivate)...)
}
