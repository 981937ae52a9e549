package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"campusmarket/internal/config"
	"campusmarket/internal/events"
	"campusmarket/internal/http/handlers"
	"campusmarket/internal/metrics"
	"campusmarket/internal/repos"
	"campusmarket/internal/services"
)

const seedPassword = "Passw0rd!"

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type testApp struct {
	app     *fiber.App
	env     *services.Env
	events  *events.Memory
	metrics *metrics.Metrics
	now     time.Time
}

func newTestApp(t *testing.T, lim handlers.Limits) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ta := &testApp{events: &events.Memory{}, metrics: metrics.New(), now: t0}
	ta.env = &services.Env{
		Store:   repos.NewStore(db),
		Events:  ta.events,
		Metrics: ta.metrics,
		Now:     func() time.Time { return ta.now },
	}
	// Low bcrypt cost keeps registration fast; JWT clock follows the fixture.
	cfg := config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour, BcryptCost: 4}
	if lim.GlobalMax == 0 {
		lim.GlobalMax = 10000
	}
	ta.app = handlers.NewApp(handlers.NewDeps(ta.env, cfg), lim, ta.metrics)
	return ta
}

func (ta *testApp) advance(d time.Duration) { ta.now = ta.now.Add(d) }

// do sends a JSON request; token may be empty.
func (ta *testApp) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body=%s)", resp.StatusCode, want, b)
	}
}

func (ta *testApp) login(t *testing.T, email string) string {
	t.Helper()
	return ta.loginWith(t, email, seedPassword)
}

func (ta *testApp) loginWith(t *testing.T, email, password string) string {
	t.Helper()
	resp := ta.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	expectStatus(t, resp, http.StatusOK)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	if out.Token == "" {
		t.Fatal("login returned no token")
	}
	return out.Token
}

func cookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func saleBody(title string, cents int64) map[string]any {
	return map[string]any{
		"categoryId":  "books",
		"title":       title,
		"description": "Spiral bound, lightly used.",
		"type":        "SALE",
		"condition":   "USED",
		"quantity":    1,
		"priceCents":  cents,
		"images":      []string{"https://img.campus.test/x.jpg"},
	}
}

// createItem posts a listing as token's owner and returns its id.
func (ta *testApp) createItem(t *testing.T, token, title string) string {
	t.Helper()
	resp := ta.do(t, "POST", "/api/v1/items", token, saleBody(title, 2500))
	expectStatus(t, resp, http.StatusCreated)
	var out struct {
		ID string `json:"id"`
	}
	decode(t, resp, &out)
	return out.ID
}
