package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/directory-service/internal/audit"
	"github.com/spec-kit/directory-service/internal/auth"
	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/repository"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// UserService handles administrative account mutations. Each successful
// mutation is audit-logged with full before/after snapshots once the write
// committed.
type UserService struct {
	users  repository.UserRepository
	audits *audit.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, audits *audit.Logger) *UserService {
	return &UserService{users: users, audits: audits}
}

// UpdateRole changes an account's role.
func (s *UserService) UpdateRole(ctx context.Context, actor *auth.Claims, targetID int64, role domain.Role, meta audit.Meta) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	before := userSnapshot(user)
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audits.LogUpdate(ctx, actor.UserID, domain.ModuleUser, user.ID, user.Name, before, userSnapshot(user), meta)
	return user, nil
}

// Delete removes an account. Actors cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *auth.Claims, targetID int64, meta audit.Meta) error {
	if actor.UserID == targetID {
		return apperrors.NewValidationError("cannot delete own account", nil)
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}

	s.audits.LogDelete(ctx, actor.UserID, domain.ModuleUser, user.ID, user.Name, userSnapshot(user), meta)
	return nil
}

func userSnapshot(user *domain.User) map[string]any {
	return map[string]any{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}
}
