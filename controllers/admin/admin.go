package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers"
	"github.com/meinhoongagan/homeservice/models"
	"github.com/meinhoongagan/homeservice/services"
)

type Controller struct {
	admin *services.AdminService
}

func NewController(admin *services.AdminService) *Controller {
	return &Controller{admin: admin}
}

func (h *Controller) Dashboard(c *fiber.Ctx) error {
	stats, err := h.admin.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *Controller) Users(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users, "total": len(users)})
}

// Providers lists providers, optionally narrowed with ?status=pending|verified.
func (h *Controller) Providers(c *fiber.Ctx) error {
	filter := services.ProviderFilter(c.Query("status"))
	providers, err := h.admin.ListProviders(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"providers": providers, "total": len(providers)})
}

func (h *Controller) Provider(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.admin.Provider(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

func (h *Controller) Services(c *fiber.Ctx) error {
	list, err := h.admin.ListServices(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"services": list, "total": len(list)})
}

func (h *Controller) ApproveProvider(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.admin.ApproveProvider(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "provider approved", "profile": profile})
}

type rejectRequest struct {
	Deactivate bool `json:"deactivate" form:"deactivate"`
}

// RejectProvider clears the provider's verification. With deactivate set the
// account is disabled too.
func (h *Controller) RejectProvider(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req rejectRequest
	if len(c.Body()) > 0 {
		if err := controllers.ParseBody(c, &req); err != nil {
			return err
		}
	}
	profile, err := h.admin.RejectProvider(c.UserContext(), id, req.Deactivate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "provider rejected", "profile": profile})
}

func (h *Controller) ApproveCategory(c *fiber.Ctx) error { return h.decideCategory(c, true) }
func (h *Controller) RejectCategory(c *fiber.Ctx) error  { return h.decideCategory(c, false) }

func (h *Controller) decideCategory(c *fiber.Ctx, verified bool) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	category := models.Category(c.Params("category"))
	pc, err := h.admin.SetCategoryVerified(c.UserContext(), id, category, verified)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"category": pc})
}
