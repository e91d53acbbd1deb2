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

// NotificationService serves a user's notification feed
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, logger: logger}
}

// List returns the caller's notifications, newest first
func (s *NotificationService) List(ctx context.Context, user *auth.UserContext, page, pageSize int, unreadOnly bool) ([]domain.Notification, int64, error) {
	return s.notificationRepo.ListByUser(ctx, user.UserID, page, pageSize, unreadOnly)
}

// MarkRead marks one of the caller's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, user *auth.UserContext, id uuid.UUID) error {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if notification.UserID != user.UserID {
		return ErrPermissionDenied
	}
	if notification.IsRead {
		return nil
	}
	return s.notificationRepo.MarkAsRead(ctx, id, user.UserID)
}

// MarkAllRead clears the caller's unread notifications
func (s *NotificationService) MarkAllRead(ctx context.Context, user *auth.UserContext) error {
	if err := s.notificationRepo.MarkAllAsRead(ctx, user.UserID); err != nil {
		return err
	}
	s.logger.Debug("notifications marked read", zap.String("user_id", user.UserID.String()))
	return nil
}

// UnreadCount returns the caller's unread notification count
func (s *NotificationService) UnreadCount(ctx context.Context, user *auth.UserContext) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, user.UserID)
}
