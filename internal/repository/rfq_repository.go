package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

// rfqSortFields whitelists sortable API fields for RFQ lists
var rfqSortFields = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"projectName":     "project_name",
	"referenceNumber": "reference_number",
	"status":          "status",
	"quantity":        "quantity",
}

// RFQFilters narrows RFQ list queries
type RFQFilters struct {
	Status     *domain.RFQStatus
	CustomerID *uuid.UUID
	Source     *domain.RFQSource
	Search     string
}

type RFQRepository struct {
	db *gorm.DB
}

func NewRFQRepository(db *gorm.DB) *RFQRepository {
	return &RFQRepository{db: db}
}

func (r *RFQRepository) Create(ctx context.Context, rfq *domain.RFQ) error {
	return r.db.WithContext(ctx).Create(rfq).Error
}

func (r *RFQRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RFQ, error) {
	var rfq domain.RFQ
	err := r.db.WithContext(ctx).
		Preload("SalesQuote").
		Preload("SupplierQuotes").
		Where("id = ?", id).
		First(&rfq).Error
	if err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *RFQRepository) Update(ctx context.Context, rfq *domain.RFQ) error {
	return r.db.WithContext(ctx).Save(rfq).Error
}

func (r *RFQRepository) List(ctx context.Context, page, pageSize int, filters RFQFilters, sort SortConfig) ([]domain.RFQ, int64, error) {
	var rfqs []domain.RFQ
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.RFQ{}).Preload("SalesQuote")

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where(
			"LOWER(project_name) LIKE ? OR LOWER(material) LIKE ? OR LOWER(reference_number) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = NormalizePagination(page, pageSize)
	offset := (page - 1) * pageSize
	err := query.
		Order(BuildOrderClause(sort, rfqSortFields, "created_at DESC")).
		Offset(offset).Limit(pageSize).
		Find(&rfqs).Error

	return rfqs, total, err
}

// CountCreatedInYear supports reference number generation
func (r *RFQRepository) CountCreatedInYear(ctx context.Context, year int) (int64, error) {
	var count int64
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	err := r.db.WithContext(ctx).Model(&domain.RFQ{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *RFQRepository) CountByStatus(ctx context.Context) (map[domain.RFQStatus]int64, error) {
	type row struct {
		Status domain.RFQStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.RFQ{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.RFQStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ListAll returns every RFQ matching the filters without paging, for the
// admin pipeline export
func (r *RFQRepository) ListAll(ctx context.Context, filters RFQFilters) ([]domain.RFQ, error) {
	var rfqs []domain.RFQ
	query := r.db.WithContext(ctx).Model(&domain.RFQ{}).Preload("SalesQuote")
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	err := query.Order("created_at ASC").Find(&rfqs).Error
	return rfqs, err
}
