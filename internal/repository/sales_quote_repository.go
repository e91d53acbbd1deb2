package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

type SalesQuoteRepository struct {
	db *gorm.DB
}

func NewSalesQuoteRepository(db *gorm.DB) *SalesQuoteRepository {
	return &SalesQuoteRepository{db: db}
}

func (r *SalesQuoteRepository) Create(ctx context.Context, quote *domain.SalesQuote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *SalesQuoteRepository) Update(ctx context.Context, quote *domain.SalesQuote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *SalesQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SalesQuote, error) {
	var quote domain.SalesQuote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *SalesQuoteRepository) GetByRFQID(ctx context.Context, rfqID uuid.UUID) (*domain.SalesQuote, error) {
	var quote domain.SalesQuote
	err := r.db.WithContext(ctx).Where("rfq_id = ?", rfqID).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ExpireDue marks every unexpired quote whose validity window has passed
// and returns the affected quotes for notification fan-out.
func (r *SalesQuoteRepository) ExpireDue(ctx context.Context, now time.Time) ([]domain.SalesQuote, error) {
	var due []domain.SalesQuote
	err := r.db.WithContext(ctx).
		Where("is_expired = ? AND valid_until < ?", false, now).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(due))
	for i, q := range due {
		ids[i] = q.ID
	}
	err = r.db.WithContext(ctx).Model(&domain.SalesQuote{}).
		Where("id IN ?", ids).
		Update("is_expired", true).Error
	if err != nil {
		return nil, err
	}
	return due, nil
}
