package audit

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// Meta carries request-scoped context attached to an audit entry. Either field
// may be empty when the information is unavailable.
type Meta struct {
	IP        string
	UserAgent string
}

// MetaFromRequest extracts the client address and user agent from the request.
// The address is taken from proxy headers in priority order; absence of all of
// them leaves the IP empty rather than failing.
func MetaFromRequest(c *fiber.Ctx) Meta {
	return Meta{
		IP:        apperrors.ClientIP(func(h string) string { return c.Get(h) }, ""),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
