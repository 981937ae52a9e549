package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"campusmarket/internal/domain"
	applog "campusmarket/internal/log"
	"campusmarket/internal/metrics"
)

// Limits tunes the rate and size guards. Zero values fall back to defaults.
type Limits struct {
	BodyLimit    int
	GlobalMax    int
	GlobalWindow time.Duration
	LoginMax     int
	LoginWindow  time.Duration
	CookieSecure bool
	AccessLog    bool
}

func (l Limits) withDefaults() Limits {
	if l.BodyLimit <= 0 {
		l.BodyLimit = 1 << 20 // 1 MiB
	}
	if l.GlobalMax <= 0 {
		l.GlobalMax = 120
	}
	if l.GlobalWindow <= 0 {
		l.GlobalWindow = time.Minute
	}
	if l.LoginMax <= 0 {
		l.LoginMax = 5
	}
	if l.LoginWindow <= 0 {
		l.LoginWindow = 10 * time.Minute
	}
	return l
}

// skipCSRF exempts callers with no ambient credential to forge: bearer
// clients and requests without a session cookie.
func skipCSRF(c *fiber.Ctx) bool {
	return HasBearer(c) || c.Cookies("sid") == ""
}

// NewApp builds the HTTP surface. m may be nil, in which case request
// metrics and /metrics are not mounted.
func NewApp(deps *Deps, lim Limits, m *metrics.Metrics) *fiber.App {
	lim = lim.withDefaults()

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    lim.BodyLimit,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if lim.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	if m != nil {
		app.Use(m.Middleware())
	}
	app.Use(limiter.New(limiter.Config{
		Max:        lim.GlobalMax,
		Expiration: lim.GlobalWindow,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	app.Use(Authenticate(deps.Auth))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   lim.CookieSecure,
		Next:           skipCSRF,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Security check failed. Please refresh and try again."})
		},
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	if m != nil {
		app.Get("/metrics", m.Handler())
	}

	api := app.Group("/api/v1")
	user := RequireUser()
	itemKind, userKind := ReviewKind(domain.ItemReview), ReviewKind(domain.UserReview)

	// Auth (login throttled)
	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        lim.LoginMax,
		Expiration: lim.LoginWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), deps.AuthHandler.Login)
	api.Post("/auth/logout", deps.AuthHandler.Logout)
	api.Get("/auth/me", user, deps.AuthHandler.Me)

	// Catalog
	api.Get("/categories", deps.CatalogHandler.Categories)
	api.Get("/items", deps.CatalogHandler.Search)
	api.Get("/items/:id", deps.ItemHandler.Detail)

	// Listings
	api.Post("/items", user, deps.ItemHandler.Create)
	api.Put("/items/:id", user, deps.ItemHandler.Update)
	api.Post("/items/:id/inactivate", user, deps.ItemHandler.Inactivate)
	api.Post("/items/:id/finalize", user, deps.ItemHandler.Finalize)
	api.Delete("/items/:id", user, deps.ItemHandler.Delete)

	// Dashboard
	api.Get("/dashboard", user, deps.DashboardHandler.Get)
	api.Post("/dashboard/reactivate", user, deps.DashboardHandler.Reactivate)

	// Relations
	api.Get("/favorites", user, deps.FavoriteHandler.List)
	api.Post("/favorites", user, deps.FavoriteHandler.Toggle)
	api.Get("/cart", user, deps.CartHandler.View)
	api.Post("/cart", user, deps.CartHandler.Toggle)
	api.Put("/cart/:id", user, deps.CartHandler.SetQty)
	api.Get("/interests", user, deps.InterestHandler.List)
	api.Post("/interests", user, deps.InterestHandler.Set)
	api.Post("/interests/:id/decision", user, deps.InterestHandler.Decide)

	// Reviews and profiles
	api.Get("/items/:id/reviews", itemKind, deps.ReviewHandler.List)
	api.Post("/items/:id/reviews", user, itemKind, deps.ReviewHandler.Create)
	api.Get("/users/:id", deps.ReviewHandler.Profile)
	api.Get("/users/:id/reviews", userKind, deps.ReviewHandler.List)
	api.Post("/users/:id/reviews", user, userKind, deps.ReviewHandler.Create)
	api.Put("/reviews/item/:rid", user, itemKind, deps.ReviewHandler.Update)
	api.Delete("/reviews/item/:rid", user, itemKind, deps.ReviewHandler.Delete)
	api.Put("/reviews/user/:rid", user, userKind, deps.ReviewHandler.Update)
	api.Delete("/reviews/user/:rid", user, userKind, deps.ReviewHandler.Delete)

	// Admin
	admin := api.Group("/admin", RequireAdmin())
	admin.Get("/users", deps.AdminHandler.Users)
	admin.Delete("/users/:id", deps.AdminHandler.DeleteUser)
	admin.Delete("/items/:id", deps.AdminHandler.DeleteItem)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}
