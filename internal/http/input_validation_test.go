package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"campusmarket/internal/http/handlers"
)

func TestItemCreateRejectsBadInput(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	tok := ta.login(t, "alice@campus.test")

	bad := []func(map[string]any){
		func(b map[string]any) { b["title"] = "ab" },
		func(b map[string]any) { b["title"] = strings.Repeat("x", 121) },
		func(b map[string]any) { b["categoryId"] = "weapons" },
		func(b map[string]any) { b["priceCents"] = -1 },
		func(b map[string]any) { delete(b, "priceCents") },
		func(b map[string]any) { b["images"] = []string{"javascript:alert(1)"} },
		func(b map[string]any) { b["type"] = "AUCTION" },
		func(b map[string]any) { b["type"] = "LOAN" },
		func(b map[string]any) { b["quantity"] = -1 },
	}
	for i, mutate := range bad {
		b := saleBody("Chemistry goggles", 1500)
		mutate(b)
		resp := ta.do(t, "POST", "/api/v1/items", tok, b)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("case %d: status = %d, want 400", i, resp.StatusCode)
		}
	}

	donation := saleBody("Old sofa cushions", 0)
	donation["type"] = "DONATION"
	delete(donation, "priceCents")
	expectStatus(t, ta.do(t, "POST", "/api/v1/items", tok, donation), http.StatusCreated)
}

func TestSearchValidatesQuery(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	alice := ta.login(t, "alice@campus.test")
	ta.createItem(t, alice, "Organic chemistry notes")

	// over-long queries are truncated, not rejected
	expectStatus(t, ta.do(t, "GET", "/api/v1/items?q="+url.QueryEscape(strings.Repeat("a", 51)), "", nil), http.StatusOK)
	expectStatus(t, ta.do(t, "GET", "/api/v1/items?q="+url.QueryEscape("<script>"), "", nil), http.StatusBadRequest)
	expectStatus(t, ta.do(t, "GET", "/api/v1/items?sort=cheapest", "", nil), http.StatusBadRequest)

	resp := ta.do(t, "GET", "/api/v1/items?q=chemistry&sort=recent", "", nil)
	expectStatus(t, resp, http.StatusOK)
	var res struct {
		Items []map[string]any `json:"items"`
	}
	decode(t, resp, &res)
	if len(res.Items) != 1 {
		t.Fatalf("search items = %d", len(res.Items))
	}
}

func TestMalformedIDsAndBodies(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	tok := ta.login(t, "bob@campus.test")

	expectStatus(t, ta.do(t, "GET", "/api/v1/items/"+url.PathEscape("x' OR 1=1"), "", nil), http.StatusBadRequest)
	expectStatus(t, ta.do(t, "POST", "/api/v1/favorites", tok, map[string]string{"itemId": "", "op": "add"}), http.StatusBadRequest)
	expectStatus(t, ta.do(t, "POST", "/api/v1/dashboard/reactivate", tok, map[string]any{"ids": "nope"}), http.StatusBadRequest)
	expectStatus(t, ta.do(t, "POST", "/api/v1/items/01HZZZZZZZZZZZZZZZZZZZZZZZ/reviews", tok, map[string]any{"rating": 9}), http.StatusBadRequest)
}
