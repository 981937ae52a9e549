package handlers

import (
	"github.com/gofiber/fiber/v2"

	"campusmarket/internal/services"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/categories
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": cats})
}

// GET /api/v1/items?q=&category=&type=&condition=&sort=&page=&pageSize=
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	res, err := h.Catalog.Search(c.UserContext(), services.SearchParams{
		Q:         c.Query("q"),
		Category:  c.Query("category"),
		Type:      c.Query("type"),
		Condition: c.Query("condition"),
		Sort:      c.Query("sort"),
		Page:      c.QueryInt("page", 1),
		PageSize:  c.QueryInt("pageSize", 0),
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}
