package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers"
)

// SetupMessageRoutes configures per-booking conversations. Participation is
// checked by the messaging service.
func SetupMessageRoutes(app *fiber.App, d Deps, protected fiber.Handler) {
	h := controllers.NewMessageController(d.Messaging)

	messages := app.Group("/messages", protected)
	messages.Get("/", h.Inbox)
	messages.Get("/:bookingID", h.Conversation)
	messages.Post("/:bookingID", h.Post)
}
