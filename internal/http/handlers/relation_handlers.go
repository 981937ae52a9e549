package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "campusmarket/internal/log"
	"campusmarket/internal/services"
)

// toggleBody is the request shape shared by favorites, cart and interests.
type toggleBody struct {
	ItemID string `json:"itemId"`
	Op     string `json:"op"`
}

func parseToggle(c *fiber.Ctx) (toggleBody, error) {
	var in toggleBody
	if err := c.BodyParser(&in); err != nil {
		return in, badRequest("invalid body")
	}
	return in, nil
}

type FavoriteHandler struct {
	Favorites *services.FavoriteService
}

// GET /api/v1/favorites
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	rows, err := h.Favorites.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": rows})
}

// POST /api/v1/favorites {"itemId", "op": "add"|"remove"}
func (h *FavoriteHandler) Toggle(c *fiber.Ctx) error {
	in, err := parseToggle(c)
	if err != nil {
		return err
	}
	on, err := h.Favorites.Toggle(c.UserContext(), currentUser(c).ID, in.ItemID, in.Op)
	if err != nil {
		return err
	}
	applog.Audit(c, "favorite."+in.Op, map[string]any{"item": in.ItemID})
	return c.JSON(fiber.Map{"favorited": on})
}

type CartHandler struct {
	Cart *services.CartService
}

// GET /api/v1/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(cv)
}

// POST /api/v1/cart {"itemId", "op": "add"|"remove"}
func (h *CartHandler) Toggle(c *fiber.Ctx) error {
	in, err := parseToggle(c)
	if err != nil {
		return err
	}
	on, err := h.Cart.Toggle(c.UserContext(), currentUser(c).ID, in.ItemID, in.Op)
	if err != nil {
		return err
	}
	applog.Audit(c, "cart."+in.Op, map[string]any{"item": in.ItemID})
	return c.JSON(fiber.Map{"inCart": on})
}

// PUT /api/v1/cart/:id {"qty"}
func (h *CartHandler) SetQty(c *fiber.Ctx) error {
	var in struct {
		Qty int `json:"qty"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid body")
	}
	if err := h.Cart.SetQty(c.UserContext(), currentUser(c).ID, c.Params("id"), in.Qty); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"qty": in.Qty})
}

type InterestHandler struct {
	Interests *services.InterestService
}

// GET /api/v1/interests
func (h *InterestHandler) List(c *fiber.Ctx) error {
	lists, err := h.Interests.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(lists)
}

// POST /api/v1/interests {"itemId", "op": "add"|"remove"}
func (h *InterestHandler) Set(c *fiber.Ctx) error {
	in, err := parseToggle(c)
	if err != nil {
		return err
	}
	on, err := h.Interests.Set(c.UserContext(), currentUser(c).ID, in.ItemID, in.Op)
	if err != nil {
		return err
	}
	applog.Audit(c, "interest."+in.Op, map[string]any{"item": in.ItemID})
	return c.JSON(fiber.Map{"interested": on})
}

// POST /api/v1/interests/:id/decision {"action", "shareEmail", "sharePhone"}
func (h *InterestHandler) Decide(c *fiber.Ctx) error {
	var in struct {
		Action     string `json:"action"`
		ShareEmail bool   `json:"shareEmail"`
		SharePhone bool   `json:"sharePhone"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid body")
	}
	got, err := h.Interests.Decide(c.UserContext(), currentUser(c).ID, c.Params("id"), in.Action, in.ShareEmail, in.SharePhone)
	if err != nil {
		return err
	}
	applog.Audit(c, "interest."+in.Action, map[string]any{"interest": got.ID})
	return c.JSON(fiber.Map{"status": got.Status, "shareEmail": got.ShareEmail, "sharePhone": got.SharePhone})
}
