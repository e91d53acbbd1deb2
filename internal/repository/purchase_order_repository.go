package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

// poSortFields whitelists sortable API fields for purchase order lists
var poSortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"poNumber":  "po_number",
	"status":    "status",
	"amount":    "amount",
}

// POFilters narrows purchase order list queries
type POFilters struct {
	SupplierID *uuid.UUID
	RFQID      *uuid.UUID
	Status     *domain.PurchaseOrderStatus
}

type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseOrderRepository) GetBySupplierQuoteID(ctx context.Context, quoteID uuid.UUID) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).Where("supplier_quote_id = ?", quoteID).First(&po).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// ExistsForSupplierQuote backs the derived hasPurchaseOrder flag
func (r *PurchaseOrderRepository) ExistsForSupplierQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).
		Where("supplier_quote_id = ?", quoteID).
		Count(&count).Error
	return count > 0, err
}

func (r *PurchaseOrderRepository) List(ctx context.Context, page, pageSize int, filters POFilters, sort SortConfig) ([]domain.PurchaseOrder, int64, error) {
	var pos []domain.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{})

	if filters.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filters.SupplierID)
	}
	if filters.RFQID != nil {
		query = query.Where("rfq_id = ?", *filters.RFQID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = NormalizePagination(page, pageSize)
	offset := (page - 1) * pageSize
	err := query.
		Order(BuildOrderClause(sort, poSortFields, "created_at DESC")).
		Offset(offset).Limit(pageSize).
		Find(&pos).Error
	return pos, total, err
}

// CountOpenForSupplier counts purchase orders not yet delivered or
// declined, for the supplier stats endpoint
func (r *PurchaseOrderRepository) CountOpenForSupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).
		Where("supplier_id = ? AND status NOT IN ?", supplierID,
			[]domain.PurchaseOrderStatus{
				domain.POStatusDeclined,
				domain.PurchaseOrderStatus(domain.StageDelivered),
			}).
		Count(&count).Error
	return count, err
}

// CountCreatedInYear supports PO number generation
func (r *PurchaseOrderRepository) CountCreatedInYear(ctx context.Context, year int) (int64, error) {
	var count int64
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	err := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}
