package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		if _, err := app.Test(httptest.NewRequest("GET", "/items/"+id, nil)); err != nil {
			t.Fatal(err)
		}
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/items/:id", "204")); got != 2 {
		t.Fatalf("want 2 requests on the route pattern, got %v", got)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "campusmarket_http_requests_total") {
		t.Fatalf("exposition missing counter:\n%s", body)
	}
}

func TestMiddlewareRecordsHandledErrorStatus(t *testing.T) {
	m := New()
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}})
	app.Use(m.Middleware())
	app.Get("/private", func(c *fiber.Ctx) error { return errors.New("login required") })

	resp, err := app.Test(httptest.NewRequest("GET", "/private", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("client status = %d", resp.StatusCode)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/private", "401")); got != 1 {
		t.Fatalf("401 series = %v", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/private", "200")); got != 0 {
		t.Fatalf("error counted as 200: %v", got)
	}
}

func TestMiddlewareMethodLabelSurvivesLaterRequests(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Post("/items", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	app.Get("/items", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, method := range []string{"POST", "GET", "GET"} {
		if _, err := app.Test(httptest.NewRequest(method, "/items", nil)); err != nil {
			t.Fatal(err)
		}
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("POST", "/items", "201")); got != 1 {
		t.Fatalf("POST series = %v", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/items", "200")); got != 2 {
		t.Fatalf("GET series = %v", got)
	}
	if n := testutil.CollectAndCount(m.Requests); n != 2 {
		t.Fatalf("want 2 series, got %d", n)
	}
}

func TestActionOutcome(t *testing.T) {
	m := New()
	m.Action("favorite.add", nil)
	m.Action("favorite.add", errors.New("x"))
	m.AddExpired(3)
	if testutil.ToFloat64(m.Actions.WithLabelValues("favorite.add", "ok")) != 1 ||
		testutil.ToFloat64(m.Actions.WithLabelValues("favorite.add", "error")) != 1 {
		t.Fatal("action outcomes not counted")
	}
	if testutil.ToFloat64(m.Expired) != 3 {
		t.Fatal("expired not counted")
	}

	var nilM *Metrics
	nilM.Action("x", nil)
	nilM.AddExpired(1)
}
