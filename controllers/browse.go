package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/models"
	"github.com/meinhoongagan/homeservice/services"
)

// BrowseController serves the public catalog pages.
type BrowseController struct {
	catalog *services.CatalogService
}

func NewBrowseController(catalog *services.CatalogService) *BrowseController {
	return &BrowseController{catalog: catalog}
}

func (h *BrowseController) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.catalog.Categories()})
}

func (h *BrowseController) ProvidersByCategory(c *fiber.Ctx) error {
	category := models.Category(c.Params("category"))
	providers, err := h.catalog.ProvidersByCategory(c.UserContext(), category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"category":  fiber.Map{"key": category, "label": category.Label()},
		"providers": providers,
		"total":     len(providers),
	})
}

func (h *BrowseController) Provider(c *fiber.Ctx) error {
	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}
	page, err := h.catalog.ProviderPage(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *BrowseController) Search(c *fiber.Ctx) error {
	var q services.SearchQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	results, err := h.catalog.Search(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"services": results, "total": len(results)})
}
