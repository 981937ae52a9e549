package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "campusmarket/internal/log"
	"campusmarket/internal/services"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

// GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	d, err := h.Dashboard.Get(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

// POST /api/v1/dashboard/reactivate {"ids": [...]}
func (h *DashboardHandler) Reactivate(c *fiber.Ctx) error {
	var in struct {
		IDs []string `json:"ids"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest("ids must be a list of item ids")
	}
	n, err := h.Dashboard.Reactivate(c.UserContext(), currentUser(c).ID, in.IDs)
	if err != nil {
		return err
	}
	applog.Audit(c, "dashboard.reactivate", map[string]any{"requested": len(in.IDs), "updated": n})
	return c.JSON(fiber.Map{"updatedCount": n})
}
