package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

type SupplierQuoteRepository struct {
	db *gorm.DB
}

func NewSupplierQuoteRepository(db *gorm.DB) *SupplierQuoteRepository {
	return &SupplierQuoteRepository{db: db}
}

func (r *SupplierQuoteRepository) Create(ctx context.Context, quote *domain.SupplierQuote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *SupplierQuoteRepository) Update(ctx context.Context, quote *domain.SupplierQuote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *SupplierQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SupplierQuote, error) {
	var quote domain.SupplierQuote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *SupplierQuoteRepository) ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]domain.SupplierQuote, error) {
	var quotes []domain.SupplierQuote
	err := r.db.WithContext(ctx).
		Where("rfq_id = ?", rfqID).
		Order("created_at ASC").
		Find(&quotes).Error
	return quotes, err
}

func (r *SupplierQuoteRepository) ListBySupplier(ctx context.Context, supplierID uuid.UUID, page, pageSize int) ([]domain.SupplierQuote, int64, error) {
	var quotes []domain.SupplierQuote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.SupplierQuote{}).
		Where("supplier_id = ?", supplierID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = NormalizePagination(page, pageSize)
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&quotes).Error
	return quotes, total, err
}

// HasAcceptedForRFQ reports whether another quote on the RFQ is already
// accepted. Guards the single-acceptance rule.
func (r *SupplierQuoteRepository) HasAcceptedForRFQ(ctx context.Context, rfqID uuid.UUID, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.SupplierQuote{}).
		Where("rfq_id = ? AND status = ? AND id <> ?", rfqID, domain.SupplierQuoteStatusAccepted, excludeID).
		Count(&count).Error
	return count > 0, err
}

// HasPendingFromSupplier prevents duplicate open bids on one RFQ
func (r *SupplierQuoteRepository) HasPendingFromSupplier(ctx context.Context, rfqID, supplierID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.SupplierQuote{}).
		Where("rfq_id = ? AND supplier_id = ? AND status = ?", rfqID, supplierID, domain.SupplierQuoteStatusPending).
		Count(&count).Error
	return count > 0, err
}

// CountBySupplierStatus aggregates a supplier's quotes per status for the
// stats endpoint
func (r *SupplierQuoteRepository) CountBySupplierStatus(ctx context.Context, supplierID uuid.UUID) (map[domain.SupplierQuoteStatus]int64, error) {
	type row struct {
		Status domain.SupplierQuoteStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.SupplierQuote{}).
		Select("status, COUNT(*) as count").
		Where("supplier_id = ?", supplierID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.SupplierQuoteStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
