package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByThread returns a thread's messages oldest first. Threads are
// append-only; there is no update path.
func (r *MessageRepository) ListByThread(ctx context.Context, threadID uuid.UUID) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// ThreadBelongsTo checks that the user participates in the thread
func (r *MessageRepository) ThreadBelongsTo(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("thread_id = ? AND (sender_id = ? OR recipient_id = ?)", threadID, userID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListThreadsForUser returns the latest message of every thread the user
// participates in, newest thread first.
func (r *MessageRepository) ListThreadsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	var latest []domain.Message
	sub := r.db.WithContext(ctx).Model(&domain.Message{}).
		Select("thread_id, MAX(created_at) AS max_created_at").
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Group("thread_id")
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Joins("JOIN (?) AS t ON messages.thread_id = t.thread_id AND messages.created_at = t.max_created_at", sub).
		Order("messages.created_at DESC").
		Find(&latest).Error
	return latest, err
}

// UnreadCountByThread counts the user's unread messages per thread
func (r *MessageRepository) UnreadCountByThread(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	type row struct {
		ThreadID uuid.UUID
		Count    int
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Select("thread_id, COUNT(*) as count").
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Group("thread_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.ThreadID] = row.Count
	}
	return counts, nil
}

// UnreadTotal counts all unread messages addressed to the user
func (r *MessageRepository) UnreadTotal(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkThreadRead flags every message addressed to the user in the thread
func (r *MessageRepository) MarkThreadRead(ctx context.Context, threadID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("thread_id = ? AND recipient_id = ? AND is_read = ?", threadID, userID, false).
		Update("is_read", true).Error
}
