package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

// ActivityRepository persists lifecycle events recorded against RFQs,
// orders and purchase orders.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByTarget returns an entity's activity trail, newest first
func (r *ActivityRepository) ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID, limit int) ([]domain.Activity, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = 50
	}
	var activities []domain.Activity
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
