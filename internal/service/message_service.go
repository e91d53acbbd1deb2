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

// MessageService runs the threaded messaging between customers,
// suppliers and the platform team.
type MessageService struct {
	messageRepo      *repository.MessageRepository
	userRepo         *repository.UserRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Send posts a message. Omitting the thread id starts a new thread;
// replying requires membership in the thread.
func (s *MessageService) Send(ctx context.Context, user *auth.UserContext, req *domain.SendMessageRequest) (*domain.Message, error) {
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	threadID := uuid.New()
	if req.ThreadID != "" {
		parsed, err := uuid.Parse(req.ThreadID)
		if err != nil {
			return nil, ErrThreadNotFound
		}
		member, err := s.messageRepo.ThreadBelongsTo(ctx, parsed, user.UserID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrThreadNotFound
		}
		threadID = parsed
	}

	category := domain.MessageCategoryGeneral
	if req.Category != "" {
		category = domain.MessageCategory(req.Category)
	}

	message := &domain.Message{
		ThreadID:    threadID,
		SenderID:    user.UserID,
		SenderName:  user.DisplayName,
		RecipientID: recipientID,
		Category:    category,
		Content:     req.Content,
	}
	if req.EntityID != "" {
		if entityID, err := uuid.Parse(req.EntityID); err == nil {
			message.EntityID = &entityID
		}
	}
	if req.FileID != "" {
		if fileID, err := uuid.Parse(req.FileID); err == nil {
			message.AttachmentID = &fileID
		}
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.notifyRecipient(ctx, message)
	s.logger.Debug("message sent",
		zap.String("thread_id", threadID.String()),
		zap.String("sender_id", user.UserID.String()),
	)
	return message, nil
}

// Thread returns a thread's messages oldest first and marks the
// caller's unread messages in it as read.
func (s *MessageService) Thread(ctx context.Context, user *auth.UserContext, threadID uuid.UUID) ([]domain.Message, error) {
	member, err := s.messageRepo.ThreadBelongsTo(ctx, threadID, user.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrThreadNotFound
	}

	messages, err := s.messageRepo.ListByThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.MarkThreadRead(ctx, threadID, user.UserID); err != nil {
		s.logger.Warn("failed to mark thread read", zap.Error(err), zap.String("thread_id", threadID.String()))
	}
	return messages, nil
}

// Threads summarizes the caller's conversations, most recent first
func (s *MessageService) Threads(ctx context.Context, user *auth.UserContext) ([]domain.ThreadSummaryDTO, error) {
	latest, err := s.messageRepo.ListThreadsForUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	unread, err := s.messageRepo.UnreadCountByThread(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ThreadSummaryDTO, 0, len(latest))
	for i := range latest {
		m := &latest[i]
		counterpart := m.SenderID
		counterpartName := m.SenderName
		if m.SenderID == user.UserID {
			counterpart = m.RecipientID
			counterpartName = ""
		}
		summaries = append(summaries, domain.ThreadSummaryDTO{
			ThreadID:        m.ThreadID,
			CounterpartID:   counterpart,
			CounterpartName: counterpartName,
			Category:        m.Category,
			EntityID:        m.EntityID,
			LastMessage:     m.Content,
			LastMessageAt:   m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			UnreadCount:     unread[m.ThreadID],
		})
	}
	return summaries, nil
}

// UnreadTotal returns the caller's unread message count across threads
func (s *MessageService) UnreadTotal(ctx context.Context, user *auth.UserContext) (int64, error) {
	return s.messageRepo.UnreadTotal(ctx, user.UserID)
}

func (s *MessageService) notifyRecipient(ctx context.Context, message *domain.Message) {
	entityID := message.ThreadID
	notification := &domain.Notification{
		UserID:     message.RecipientID,
		Type:       domain.NotificationNewMessage,
		Title:      "New message",
		Message:    "You have a new message from " + message.SenderName,
		EntityType: "thread",
		EntityID:   &entityID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to notify recipient", zap.Error(err))
	}
}
