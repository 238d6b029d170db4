package provider

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers"
	"github.com/meinhoongagan/homeservice/services"
)

type DashboardController struct {
	bookings *services.BookingService
}

func NewDashboardController(bookings *services.BookingService) *DashboardController {
	return &DashboardController{bookings: bookings}
}

func (h *DashboardController) Overview(c *fiber.Ctx) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	d, err := h.bookings.ProviderDashboard(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

type statusRequest struct {
	Action services.BookingAction `json:"action" form:"action"`
}

// UpdateStatus approves or rejects a pending booking of one of the caller's services.
func (h *DashboardController) UpdateStatus(c *fiber.Ctx) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := controllers.ParseBody(c, &req); err != nil {
		return err
	}
	booking, err := h.bookings.UpdateStatus(c.UserContext(), p.UserID, id, req.Action)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "booking " + string(booking.Status), "booking": booking})
}
