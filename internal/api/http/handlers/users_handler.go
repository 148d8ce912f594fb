package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-service/internal/api/dto"
	"github.com/spec-kit/directory-service/internal/audit"
	"github.com/spec-kit/directory-service/internal/auth"
	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/service"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// UsersHandler exposes administrative account management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// UpdateRole handles PATCH /admin/users/:id/role.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return apperrors.NewValidationError("invalid user id", nil)
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.UpdateRole(c.UserContext(), claims, int64(targetID), domain.Role(req.Role), audit.MetaFromRequest(c))
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"id":   user.ID,
			"name": user.Name,
			"role": user.Role,
		},
	})
}

// Delete handles DELETE /admin/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return apperrors.NewValidationError("invalid user id", nil)
	}

	if err := h.users.Delete(c.UserContext(), claims, int64(targetID), audit.MetaFromRequest(c)); err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deleted"}})
}
