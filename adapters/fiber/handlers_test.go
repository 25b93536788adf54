package fiber

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/legalaipro/lexauth"
	"github.com/legalaipro/lexauth/services"
)

func newTestApp(t *testing.T) (*fiber.App, *Adapter) {
	t.Helper()

	app := fiber.New()
	adapter := New(app)

	_, err := lexauth.New(lexauth.Config{
		Database: services.NewFakeStorage(),
		HTTP:     adapter,
	})
	if err != nil {
		t.Fatalf("lexauth.New: %v", err)
	}
	return app, adapter
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode body %q: %v", data, err)
	}
	return m
}

func registerLawyer(t *testing.T, app *fiber.App) (token string, userID string) {
	t.Helper()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
		"name":      "Ada",
		"email":     "ada@firm.example",
		"password":  "hunter22",
		"role":      "lawyer",
		"country":   "US",
		"barNumber": "BAR-12345",
	}))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	token, _ = body["token"].(string)
	if token == "" {
		t.Fatal("no token in register response")
	}
	user, _ := body["user"].(map[string]any)
	userID, _ = user["id"].(string)
	return token, userID
}

func TestRegister(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
		"name":      "Ada",
		"email":     "ada@firm.example",
		"password":  "hunter22",
		"role":      "lawyer", // raw lowercase over the wire
		"barNumber": "BAR-12345",
	}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	user := body["user"].(map[string]any)
	if user["role"] != "LAWYER" {
		t.Errorf("role = %v, want canonical LAWYER", user["role"])
	}
	if body["token"] == "" {
		t.Error("no session token issued")
	}
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{
			name:       "unknown role",
			payload:    map[string]any{"name": "A", "email": "a@b.c", "password": "hunter22", "role": "judge"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "lawyer without bar number",
			payload:    map[string]any{"name": "A", "email": "a@b.c", "password": "hunter22", "role": "lawyer"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password",
			payload:    map[string]any{"name": "A", "email": "a@b.c", "password": "short", "role": "client"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			app, _ := newTestApp(t)

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", test.payload))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != test.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, test.wantStatus)
			}
			if body := decodeBody(t, resp); body["error"] == "" {
				t.Error("error payload missing 'error' field")
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app, _ := newTestApp(t)
	registerLawyer(t, app)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
		"name":      "Ada Again",
		"email":     "ada@firm.example",
		"password":  "hunter22",
		"role":      "lawyer",
		"barNumber": "BAR-99999",
	}))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)
	registerLawyer(t, app)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login", map[string]any{
			"Email":    "ada@firm.example",
			"Password": "hunter22",
		}))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["token"] == "" {
			t.Error("no token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login", map[string]any{
			"Email":    "ada@firm.example",
			"Password": "wrong",
		}))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
		// the error payload carries the message the client surfaces
		if body := decodeBody(t, resp); body["error"] != "invalid email or password" {
			t.Errorf("error = %v", body["error"])
		}
	})
}

func TestGetMe(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerLawyer(t, app)

	t.Run("bearer token", func(t *testing.T) {
		req := jsonRequest(http.MethodGet, "/api/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["email"] != "ada@firm.example" {
			t.Errorf("email = %v", body["email"])
		}
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := jsonRequest(http.MethodGet, "/api/users/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodGet, "/api/users/me", nil))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := jsonRequest(http.MethodGet, "/api/users/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})
}

// Browser navigation without a session is redirected to the login page
// rather than answered with JSON.
func TestRequireSession_BrowserRedirect(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Accept", "text/html")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/auth/login" {
		t.Errorf("Location = %q, want /auth/login", loc)
	}
}

func TestUpdateMe(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerLawyer(t, app)

	req := jsonRequest(http.MethodPatch, "/api/users/me", map[string]any{
		"name": "Ada Lovelace",
	})
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["name"] != "Ada Lovelace" {
		t.Errorf("name = %v", body["name"])
	}
	// untouched fields survive the merge
	if body["email"] != "ada@firm.example" {
		t.Errorf("email = %v", body["email"])
	}
}

func TestRefresh(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerLawyer(t, app)

	req := jsonRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	rotated, _ := body["token"].(string)
	if rotated == "" || rotated == token {
		t.Fatalf("rotated token = %q", rotated)
	}

	// the old token stops working
	req = jsonRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("old token status = %d, want 401", resp.StatusCode)
	}

	// the rotated one works
	req = jsonRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+rotated)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("rotated token status = %d", resp.StatusCode)
	}
}

func TestLogout(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerLawyer(t, app)

	req := jsonRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	req = jsonRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status after logout = %d, want 401", resp.StatusCode)
	}
}

func findCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", name)
	return nil
}

// Requirement: the issued token is mirrored into an access_token cookie so
// browser navigation can reach protected pages; logout expires it.
func TestSessionCookieLifecycle(t *testing.T) {
	app, adapter := newTestApp(t)
	adapter.CookieSecure = true
	registerLawyer(t, app)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "ada@firm.example",
		"password": "hunter22",
	}))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	token, _ := decodeBody(t, resp)["token"].(string)

	cookie := findCookie(t, resp, "access_token")
	if cookie.Value != token {
		t.Errorf("cookie value = %q, want the issued token", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("cookie not HttpOnly")
	}
	if !cookie.Secure {
		t.Error("CookieSecure not applied to the cookie")
	}
	if !cookie.Expires.After(time.Now()) {
		t.Errorf("cookie expires %v, want session lifetime", cookie.Expires)
	}

	req := jsonRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("logout request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	cleared := findCookie(t, resp, "access_token")
	if cleared.Value != "" && cleared.Expires.After(time.Now()) {
		t.Errorf("cookie not expired by logout: %+v", cleared)
	}
}
