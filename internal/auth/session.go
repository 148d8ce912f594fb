package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "admin_token"

// SessionCarrier binds session tokens to HTTP cookies and resolves the caller
// identity on inbound requests.
type SessionCarrier struct {
	tokens *TokenManager
	secure bool
}

// NewSessionCarrier builds a carrier. secure marks the cookie for TLS-only
// transport and should follow the deployment's TLS termination.
func NewSessionCarrier(tokens *TokenManager, secure bool) *SessionCarrier {
	return &SessionCarrier{tokens: tokens, secure: secure}
}

// Attach sets the session token cookie on the response.
func (s *SessionCarrier) Attach(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.TTL().Seconds()),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Detach expires the session cookie. Deleting an absent cookie is not an error.
func (s *SessionCarrier) Detach(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Resolve extracts the caller identity from the request's cookie jar. It
// returns nil uniformly for a missing cookie, a malformed value or an invalid
// token; the cause is intentionally erased at this layer.
func (s *SessionCarrier) Resolve(c *fiber.Ctx) *Claims {
	return s.resolveToken(c.Cookies(SessionCookieName))
}

// ResolveHeader extracts the caller identity from a raw Cookie header, for
// contexts where only raw headers are available. Behaves identically to
// Resolve.
func (s *SessionCarrier) ResolveHeader(rawCookieHeader string) *Claims {
	return s.resolveToken(cookieFromHeader(rawCookieHeader, SessionCookieName))
}

func (s *SessionCarrier) resolveToken(token string) *Claims {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil
	}
	return claims
}

// cookieFromHeader finds a named cookie value in a raw Cookie header.
func cookieFromHeader(raw, name string) string {
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		if key == name {
			return strings.Trim(value, `"`)
		}
	}
	return ""
}
