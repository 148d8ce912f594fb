package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

const claimsKey = "session_claims"

// SessionMiddleware resolves session cookies and loads claims for protected routes.
type SessionMiddleware struct {
	sessions *SessionCarrier
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(sessions *SessionCarrier) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// Handle enforces authentication. Missing, malformed and expired tokens are all
// reported as the same unauthenticated failure.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	claims := m.sessions.Resolve(c)
	if claims == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the authenticated caller's claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
