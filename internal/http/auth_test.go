package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campusmarket/internal/http/handlers"
	"campusmarket/internal/repos"
)

func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, seedPassword) {
			t.Fatalf("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte(seedPassword)); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{LoginMax: 3, LoginWindow: time.Minute})

	resp := ta.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": "alice@campus.test", "password": seedPassword})
	expectStatus(t, resp, http.StatusOK)
	if cookie(resp, "sid") == "" {
		t.Fatal("login did not set sid cookie")
	}

	resp = ta.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": "alice@campus.test", "password": "Wr0ng!pass"})
	expectStatus(t, resp, http.StatusUnauthorized)
	var body map[string]string
	decode(t, resp, &body)
	if body["error"] != "invalid email or password" {
		t.Fatalf("login failure message leaks detail: %q", body["error"])
	}

	resp = ta.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": "nobody@campus.test", "password": seedPassword})
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = ta.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": "alice@campus.test", "password": seedPassword})
	expectStatus(t, resp, http.StatusTooManyRequests)
}

func TestRegisterThenLoginAndDuplicate(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	in := map[string]string{"email": "dana@campus.test", "name": "Dana", "password": "S3cure!pw"}

	resp := ta.do(t, "POST", "/api/v1/auth/register", "", in)
	expectStatus(t, resp, http.StatusCreated)
	var u map[string]any
	decode(t, resp, &u)
	if u["email"] != "dana@campus.test" || u["role"] != "USER" {
		t.Fatalf("unexpected user: %v", u)
	}
	if _, leaked := u["password_hash"]; leaked {
		t.Fatal("hash serialized")
	}

	resp = ta.do(t, "POST", "/api/v1/auth/register", "", in)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = ta.do(t, "POST", "/api/v1/auth/register", "", map[string]string{"email": "eve@campus.test", "name": "Eve", "password": "short"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = ta.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": "dana@campus.test", "password": seedPassword})
	expectStatus(t, resp, http.StatusUnauthorized)

	tok := ta.loginWith(t, "dana@campus.test", "S3cure!pw")
	resp = ta.do(t, "GET", "/api/v1/auth/me", tok, nil)
	expectStatus(t, resp, http.StatusOK)
}

func TestBearerTokenExpiresWithClock(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	tok := ta.login(t, "bob@campus.test")

	expectStatus(t, ta.do(t, "GET", "/api/v1/auth/me", tok, nil), http.StatusOK)
	ta.advance(2 * time.Hour)
	expectStatus(t, ta.do(t, "GET", "/api/v1/auth/me", tok, nil), http.StatusUnauthorized)
	expectStatus(t, ta.do(t, "GET", "/api/v1/auth/me", "garbage", nil), http.StatusUnauthorized)
}

func TestCookieSessionAndLogout(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	resp := ta.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": "carol@campus.test", "password": seedPassword})
	expectStatus(t, resp, http.StatusOK)
	sid := cookie(resp, "sid")

	req := func(method, path, csrfTok string) *http.Response {
		r, _ := http.NewRequest(method, "http://example.com"+path, nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		if csrfTok != "" {
			r.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
			r.Header.Set("X-CSRF-Token", csrfTok)
		}
		out, err := ta.app.Test(r, -1)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	me := req("GET", "/api/v1/auth/me", "")
	expectStatus(t, me, http.StatusOK)
	csrfTok := cookie(me, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf cookie not issued to cookie client")
	}

	// State changes with a session cookie need the CSRF header.
	expectStatus(t, req("POST", "/api/v1/auth/logout", ""), http.StatusForbidden)
	expectStatus(t, req("POST", "/api/v1/auth/logout", csrfTok), http.StatusNoContent)
	expectStatus(t, req("GET", "/api/v1/auth/me", ""), http.StatusUnauthorized)
}
