package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-service/internal/domain"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// RequireAuth ensures a caller is authenticated.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ClaimsFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the authenticated caller holds the admin role.
// An authenticated non-admin is forbidden, distinct from unauthenticated.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if claims.Role != domain.RoleAdmin {
			return apperrors.NewForbidden("administrator role required")
		}
		return c.Next()
	}
}
