package handlers

import (
	"github.com/gofiber/fiber/v2"

	"campusmarket/internal/domain"
	applog "campusmarket/internal/log"
	"campusmarket/internal/services"
	"campusmarket/internal/validate"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

// kindOf reads the review kind from the route; "items" and "users" prefixes
// are registered with Locals("reviewKind").
func kindOf(c *fiber.Ctx) domain.ReviewKind {
	if k, ok := c.Locals("reviewKind").(domain.ReviewKind); ok {
		return k
	}
	return domain.ItemReview
}

// ReviewKind tags the route group so one handler set serves both kinds.
func ReviewKind(k domain.ReviewKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("reviewKind", k)
		return c.Next()
	}
}

func subjectID(c *fiber.Ctx) (string, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return "", badRequest("invalid id")
	}
	return id, nil
}

// GET /api/v1/{items,users}/:id/reviews
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	id, err := subjectID(c)
	if err != nil {
		return err
	}
	rows, err := h.Reviews.List(c.UserContext(), kindOf(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reviews": rows})
}

// POST /api/v1/{items,users}/:id/reviews
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	id, err := subjectID(c)
	if err != nil {
		return err
	}
	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid body")
	}
	rv, err := h.Reviews.Create(c.UserContext(), currentUser(c).ID, kindOf(c), id, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "review.create", map[string]any{"kind": string(kindOf(c)), "subject": id, "review": rv.ID})
	return c.Status(fiber.StatusCreated).JSON(rv)
}

// PUT /api/v1/reviews/{item,user}/:rid
func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid body")
	}
	rv, err := h.Reviews.Update(c.UserContext(), currentUser(c).ID, kindOf(c), c.Params("rid"), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "review.update", map[string]any{"review": rv.ID})
	return c.JSON(rv)
}

// DELETE /api/v1/reviews/{item,user}/:rid
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	rid := c.Params("rid")
	if err := h.Reviews.Delete(c.UserContext(), currentUser(c).ID, kindOf(c), rid); err != nil {
		return err
	}
	applog.Audit(c, "review.delete", map[string]any{"review": rid})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/users/:id
func (h *ReviewHandler) Profile(c *fiber.Ctx) error {
	id, err := subjectID(c)
	if err != nil {
		return err
	}
	p, err := h.Reviews.Profile(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}
