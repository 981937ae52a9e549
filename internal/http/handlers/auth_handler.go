package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"campusmarket/internal/log"
	"campusmarket/internal/services"
	"campusmarket/internal/validate"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

func (h *AuthHandler) setSID(c *fiber.Ctx, sid string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  expires,
	})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid body")
	}
	u, err := h.Auth.Register(c.UserContext(), in.Email, in.Name, in.Phone, in.Password)
	if err != nil {
		return err
	}
	log.Audit(c, "auth.register", map[string]any{"user": u.ID})
	return c.Status(fiber.StatusCreated).JSON(u)
}

// POST /api/v1/auth/login
// A fresh session id is issued on every login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid body")
	}
	email, ok := validate.Email(in.Email)
	if !ok || !validate.Password(in.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return services.ErrBadCreds
	}

	sid := uuid.NewString()
	u, err := h.Auth.Login(c.UserContext(), sid, email, in.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return err
	}
	tok, exp, err := h.Auth.IssueToken(u)
	if err != nil {
		return err
	}
	h.setSID(c, sid, time.Time{})
	c.Locals("userID", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(fiber.Map{"user": u, "token": tok, "expiresAt": exp})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			return err
		}
	}
	h.setSID(c, "", time.Now().Add(-1*time.Hour))
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}
