package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-service/internal/api/dto"
	"github.com/spec-kit/directory-service/internal/audit"
	"github.com/spec-kit/directory-service/internal/domain"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

var (
	knownActions = map[domain.AuditAction]bool{
		domain.ActionCreate: true,
		domain.ActionUpdate: true,
		domain.ActionDelete: true,
		domain.ActionLogin:  true,
		domain.ActionLogout: true,
		domain.ActionView:   true,
	}
	knownModules = map[domain.AuditModule]bool{
		domain.ModuleWebsite: true,
		domain.ModuleArticle: true,
		domain.ModuleUser:    true,
		domain.ModuleMedia:   true,
		domain.ModuleAuth:    true,
	}
)

// AuditHandler exposes the admin review endpoints over the audit trail.
type AuditHandler struct {
	audits *audit.Logger
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audits *audit.Logger) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List handles GET /admin/audit with optional module/action/actor_id filters.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	filter := audit.Filter{}

	if module := c.Query("module"); module != "" {
		if !knownModules[domain.AuditModule(module)] {
			return apperrors.NewValidationError("unknown module", map[string]any{"module": module})
		}
		filter.Module = domain.AuditModule(module)
	}
	if action := c.Query("action"); action != "" {
		if !knownActions[domain.AuditAction(action)] {
			return apperrors.NewValidationError("unknown action", map[string]any{"action": action})
		}
		filter.Action = domain.AuditAction(action)
	}
	if actorID := c.QueryInt("actor_id"); actorID > 0 {
		filter.ActorID = int64(actorID)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}

	entries, pagination, err := h.audits.Query(c.UserContext(), filter, page, limit)
	if err != nil {
		return apperrors.MapError(err)
	}

	responses := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewAuditEntryResponse(entry))
	}

	return c.JSON(fiber.Map{
		"data": dto.AuditListResponse{Entries: responses, Pagination: pagination},
	})
}

// Stats handles GET /admin/audit/stats.
func (h *AuditHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.audits.Stats(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewAuditStatsResponse(stats)})
}
