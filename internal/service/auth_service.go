package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/directory-service/internal/audit"
	"github.com/spec-kit/directory-service/internal/auth"
	"github.com/spec-kit/directory-service/internal/config"
	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/repository"
)

// AuthService coordinates registration, login and logout flows. Successful
// mutations are audit-logged after the domain write committed; audit failures
// never fail the flow.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	audits     *audit.Logger
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, audits *audit.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		audits:     audits,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account with the user role and issues a session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string, meta audit.Meta) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, errors.New("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	s.audits.LogCreate(ctx, user.ID, domain.ModuleUser, user.ID, user.Name, userSnapshot(user), meta)

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates an account and issues a role-bearing session token.
func (s *AuthService) Login(ctx context.Context, email, password string, meta audit.Meta) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, errors.New("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errors.New("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.audits.LogLogin(ctx, user.ID, user.Name, meta)
	return user, token, exp, nil
}

// Logout records the sign-out. The session token itself stays valid until its
// natural expiry; there is no server-side revocation, only cookie deletion.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, meta audit.Meta) {
	s.audits.LogLogout(ctx, claims.UserID, claims.DisplayName, meta)
}

// TokenManager exposes the underlying token manager for carrier construction.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
