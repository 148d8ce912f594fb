package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-service/internal/api/http/handlers"
	"github.com/spec-kit/directory-service/internal/auth"
	"github.com/spec-kit/directory-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Auth              *handlers.AuthHandler
	Audit             *handlers.AuditHandler
	Users             *handlers.UsersHandler
	SessionMiddleware *auth.SessionMiddleware
	Limiter           ratelimit.Limiter
}

// RegisterRoutes wires HTTP routes. Every guarded route passes the rate limit
// check before identity resolution.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", ratelimit.Middleware(cfg.Limiter, ratelimit.Strict, "register"), cfg.Auth.Register)
	authGroup.Post("/login", ratelimit.Middleware(cfg.Limiter, ratelimit.Login, "login"), cfg.Auth.Login)

	protected := authGroup.Group("", cfg.SessionMiddleware.Handle, auth.RequireAuth())
	protected.Post("/logout", cfg.Auth.Logout)
	protected.Get("/me", cfg.Auth.Me)

	admin := app.Group("/admin",
		ratelimit.Middleware(cfg.Limiter, ratelimit.AdminAPI, "admin"),
		cfg.SessionMiddleware.Handle,
		auth.RequireAdmin(),
	)
	admin.Get("/audit", cfg.Audit.List)
	admin.Get("/audit/stats", cfg.Audit.Stats)
	admin.Patch("/users/:id/role", cfg.Users.UpdateRole)
	admin.Delete("/users/:id", cfg.Users.Delete)
}
