package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers/admin"
	"github.com/meinhoongagan/homeservice/middleware"
	"github.com/meinhoongagan/homeservice/models"
)

// SetupAdminRoutes configures the review screens and approval decisions.
func SetupAdminRoutes(app *fiber.App, d Deps, protected fiber.Handler) {
	h := admin.NewController(d.Admin)

	group := app.Group("/admin", protected, middleware.Authorize(middleware.RequireRole(models.RoleAdmin)))
	group.Get("/dashboard", h.Dashboard)
	group.Get("/users", h.Users)
	group.Get("/services", h.Services)
	group.Get("/providers", h.Providers)
	group.Get("/providers/:id", h.Provider)
	group.Post("/providers/:id/approve", h.ApproveProvider)
	group.Post("/providers/:id/reject", h.RejectProvider)
	group.Post("/providers/:id/categories/:category/approve", h.ApproveCategory)
	group.Post("/providers/:id/categories/:category/reject", h.RejectCategory)
}
