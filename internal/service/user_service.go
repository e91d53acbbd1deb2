package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService resolves authenticated identities against the local user
// table and exposes admin user management.
type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// EnsureUser upserts the local record for an authenticated principal
// and stamps the login time. Called on the first authenticated request
// of a session.
func (s *UserService) EnsureUser(ctx context.Context, userCtx *auth.UserContext) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &domain.User{
			BaseModel:   domain.BaseModel{ID: userCtx.UserID},
			Email:       userCtx.Email,
			DisplayName: userCtx.DisplayName,
			Role:        userCtx.Role,
			CompanyName: userCtx.CompanyName,
			IsActive:    true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user provisioned",
			zap.String("user_id", user.ID.String()),
			zap.String("role", string(user.Role)),
		)
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to stamp login", zap.Error(err))
	}
	return user, nil
}

// Get loads a user by id
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns users, optionally filtered by role
func (s *UserService) List(ctx context.Context, page, pageSize int, role *domain.UserRole) ([]domain.User, int64, error) {
	return s.userRepo.List(ctx, page, pageSize, role)
}

// SetActive enables or disables a user account
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
