package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers"
)

// SetupBrowseRoutes configures the public catalog.
func SetupBrowseRoutes(app *fiber.App, d Deps) {
	h := controllers.NewBrowseController(d.Catalog)

	app.Get("/categories", h.Categories)
	app.Get("/categories/:category/providers", h.ProvidersByCategory)
	app.Get("/providers/:id", h.Provider)
	app.Get("/services/search", h.Search)
}
