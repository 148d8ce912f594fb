package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/auth"
	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/observability"
	"github.com/spec-kit/directory-service/internal/ratelimit"
)

func newTestApp(t *testing.T) (*fiber.App, *auth.TokenManager) {
	t.Helper()

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	tm := auth.NewTokenManager("test-secret", time.Hour)
	sessions := auth.NewSessionCarrier(tm, false)
	sessionMiddleware := auth.NewSessionMiddleware(sessions)

	limiter := ratelimit.NewMemoryLimiter()
	app.Get("/limited",
		ratelimit.Middleware(limiter, ratelimit.Config{Window: time.Minute, MaxRequests: 2}, "test"),
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)
	app.Get("/protected", sessionMiddleware.Handle, auth.RequireAuth(),
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)
	app.Get("/admin-only", sessionMiddleware.Handle, auth.RequireAdmin(),
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)

	return app, tm
}

func errorCode(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("body not valid JSON: %v (%s)", err, body)
	}
	return payload.Error.Code
}

func TestRateLimitExceededMapsTo429(t *testing.T) {
	app, _ := newTestApp(t)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/limited", nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("call %d status = %d, want 200", i+1, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/limited", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "TOO_MANY_REQUESTS" {
		t.Errorf("error code = %q, want TOO_MANY_REQUESTS", code)
	}
	if resp.Header.Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("remaining header = %q, want 0", resp.Header.Get("X-RateLimit-Remaining"))
	}
	if resp.Header.Get("X-RateLimit-Reset") == "" {
		t.Error("reset header missing")
	}
}

func TestMissingSessionMapsTo401(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/protected", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "UNAUTHORIZED" {
		t.Errorf("error code = %q, want UNAUTHORIZED", code)
	}
}

func TestNonAdminMapsTo403(t *testing.T) {
	app, tm := newTestApp(t)

	token, _, err := tm.GenerateToken(5, "Plain", domain.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/admin-only", nil)
	req.AddCookie(&nethttp.Cookie{Name: auth.SessionCookieName, Value: token})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "FORBIDDEN" {
		t.Errorf("error code = %q, want FORBIDDEN", code)
	}
}

func TestAdminSessionAllowed(t *testing.T) {
	app, tm := newTestApp(t)

	token, _, err := tm.GenerateToken(1, "Root", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/admin-only", nil)
	req.AddCookie(&nethttp.Cookie{Name: auth.SessionCookieName, Value: token})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
