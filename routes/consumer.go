package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers/consumer"
	"github.com/meinhoongagan/homeservice/middleware"
	"github.com/meinhoongagan/homeservice/models"
)

// SetupConsumerRoutes configures customer bookings.
func SetupConsumerRoutes(app *fiber.App, d Deps, protected fiber.Handler) {
	h := consumer.NewBookingController(d.Bookings)
	customer := middleware.Authorize(middleware.RequireRole(models.RoleCustomer))

	app.Post("/services/:id/book", protected, customer, h.Book)
	app.Get("/customer/dashboard", protected, customer, h.Dashboard)
	app.Post("/bookings/:id/cancel", protected, customer, h.Cancel)
}
