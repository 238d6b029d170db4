package provider

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers"
	"github.com/meinhoongagan/homeservice/services"
)

// ServiceController manages the caller's own catalog entries.
type ServiceController struct {
	catalog *services.CatalogService
}

func NewServiceController(catalog *services.CatalogService) *ServiceController {
	return &ServiceController{catalog: catalog}
}

func (h *ServiceController) List(c *fiber.Ctx) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	list, err := h.catalog.ListOwn(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"services": list})
}

func (h *ServiceController) Create(c *fiber.Ctx) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	var in services.ServiceInput
	if err := controllers.ParseBody(c, &in); err != nil {
		return err
	}
	svc, err := h.catalog.Add(c.UserContext(), p.UserID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(svc)
}

func (h *ServiceController) Update(c *fiber.Ctx) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in services.ServiceUpdate
	if err := controllers.ParseBody(c, &in); err != nil {
		return err
	}
	svc, err := h.catalog.Update(c.UserContext(), p.UserID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(svc)
}

func (h *ServiceController) Delete(c *fiber.Ctx) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.UserContext(), p.UserID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "service deleted"})
}

func (h *ServiceController) Activate(c *fiber.Ctx) error   { return h.setActive(c, true) }
func (h *ServiceController) Deactivate(c *fiber.Ctx) error { return h.setActive(c, false) }

func (h *ServiceController) setActive(c *fiber.Ctx, active bool) error {
	p, err := controllers.Caller(c)
	if err != nil {
		return err
	}
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return err
	}
	svc, err := h.catalog.SetActive(c.UserContext(), p.UserID, id, active)
	if err != nil {
		return err
	}
	return c.JSON(svc)
}
