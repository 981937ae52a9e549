package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"campusmarket/internal/domain"
	applog "campusmarket/internal/log"
	"campusmarket/internal/services"
)

// Authenticate attaches the caller to the context when a valid bearer token
// or sid cookie is presented. It never rejects; RequireUser does.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var u *domain.User
		if tok, ok := bearer(c); ok {
			if got, err := auth.UserFromToken(c.UserContext(), tok); err == nil {
				u = got
			} else {
				applog.Security(c, "auth.token.invalid", nil)
			}
		} else if sid := c.Cookies("sid"); sid != "" {
			if got, err := auth.CurrentUser(c.UserContext(), sid); err == nil {
				u = got
			}
		}
		if u != nil {
			c.Locals("user", u)
			c.Locals("userID", u.ID)
		}
		return c.Next()
	}
}

func bearer(c *fiber.Ctx) (string, bool) {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:]), true
	}
	return "", false
}

// HasBearer is used to skip CSRF checks for token clients, which do not
// send cookies.
func HasBearer(c *fiber.Ctx) bool {
	_, ok := bearer(c)
	return ok
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireUser rejects anonymous callers with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return services.Unauthorized("login required")
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return services.Unauthorized("login required")
		}
		if u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", nil)
			return services.Permission("admin only")
		}
		return c.Next()
	}
}
