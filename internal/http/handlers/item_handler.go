package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "campusmarket/internal/log"
	"campusmarket/internal/services"
	"campusmarket/internal/validate"
)

type ItemHandler struct {
	Items *services.ItemService
}

func itemID(c *fiber.Ctx) (string, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return "", badRequest("invalid item id")
	}
	return id, nil
}

func viewerID(c *fiber.Ctx) string {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return ""
}

// GET /api/v1/items/:id
func (h *ItemHandler) Detail(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	d, err := h.Items.Detail(c.UserContext(), viewerID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

// POST /api/v1/items
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in services.ItemInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid body")
	}
	d, err := h.Items.Create(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "item.create", map[string]any{"item": d.ID, "type": d.Type})
	return c.Status(fiber.StatusCreated).JSON(d)
}

// PUT /api/v1/items/:id
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	var in services.ItemInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid body")
	}
	d, err := h.Items.Update(c.UserContext(), currentUser(c).ID, id, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "item.update", map[string]any{"item": id})
	return c.JSON(d)
}

// POST /api/v1/items/:id/inactivate
func (h *ItemHandler) Inactivate(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	if err := h.Items.Inactivate(c.UserContext(), currentUser(c).ID, id); err != nil {
		return err
	}
	applog.Audit(c, "item.inactivate", map[string]any{"item": id})
	return c.JSON(fiber.Map{"status": "INACTIVE"})
}

// POST /api/v1/items/:id/finalize
func (h *ItemHandler) Finalize(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	if err := h.Items.Finalize(c.UserContext(), currentUser(c).ID, id); err != nil {
		return err
	}
	applog.Audit(c, "item.finalize", map[string]any{"item": id})
	return c.JSON(fiber.Map{"status": "FINALIZED"})
}

// DELETE /api/v1/items/:id
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	if err := h.Items.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return err
	}
	applog.Audit(c, "item.delete", map[string]any{"item": id})
	return c.SendStatus(fiber.StatusNoContent)
}
