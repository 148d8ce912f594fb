package ratelimit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// Middleware enforces cfg per client address for the routes it guards. scope
// namespaces the counter so different route groups track separate quotas for
// the same client. A denied request maps to 429 with backoff guidance.
func Middleware(limiter Limiter, cfg Config, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := apperrors.ClientIP(func(h string) string { return c.Get(h) }, c.IP())
		if ip == "" {
			ip = "unknown"
		}

		result := limiter.Check(c.UserContext(), scope+":ip:"+ip, cfg)

		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			return apperrors.NewTooManyRequests("rate limit exceeded", map[string]any{
				"remaining": result.Remaining,
				"reset_at":  result.ResetAt,
			})
		}
		return c.Next()
	}
}
