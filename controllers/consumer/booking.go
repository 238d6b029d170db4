package consumer

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers"
	"github.com/meinhoongagan/homeservice/services"
)

// BookingController is the customer side of bookings.
type BookingController struct {
	bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

// Book creates a pending booking for an active service. The body is optional.
func (h *BookingController) Book(c *fiber.Ctx) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	serviceID, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in services.BookingInput
	if len(c.Body()) > 0 {
		if err := controllers.ParseBody(c, &in); err != nil {
			return err
		}
	}
	booking, err := h.bookings.Create(c.UserContext(), p.UserID, serviceID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "booking requested",
		"booking": booking,
	})
}

func (h *BookingController) Dashboard(c *fiber.Ctx) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	bookings, err := h.bookings.CustomerBookings(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"bookings": bookings, "total": len(bookings)})
}

func (h *BookingController) Cancel(c *fiber.Ctx) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.Cancel(c.UserContext(), p.UserID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "booking cancelled", "booking": booking})
}
