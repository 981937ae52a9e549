package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "campusmarket/internal/log"
	"campusmarket/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
	Items *services.ItemService
}

// GET /api/v1/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	us, err := h.Admin.Users(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": us})
}

// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Admin.DeleteUser(c.UserContext(), currentUser(c).ID, id); err != nil {
		applog.Security(c, "admin.user.delete.fail", map[string]any{"target": id})
		return err
	}
	applog.Audit(c, "admin.user.delete", map[string]any{"target": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// DELETE /api/v1/admin/items/:id
func (h *AdminHandler) DeleteItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	if err := h.Items.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return err
	}
	applog.Audit(c, "admin.item.delete", map[string]any{"item": id})
	return c.SendStatus(fiber.StatusNoContent)
}
