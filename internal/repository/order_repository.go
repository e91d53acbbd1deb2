package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

var orderSortFields = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"orderNumber": "order_number",
	"stage":       "stage",
	"amount":      "amount",
}

// OrderFilters narrows order list queries
type OrderFilters struct {
	CustomerID *uuid.UUID
	Stage      *domain.OrderStage
	Archived   *bool
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Shipments", func(db *gorm.DB) *gorm.DB {
			return db.Order("shipments.created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) GetByRFQID(ctx context.Context, rfqID uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Where("rfq_id = ?", rfqID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *OrderRepository) List(ctx context.Context, page, pageSize int, filters OrderFilters, sort SortConfig) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Order{})

	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}
	if filters.Archived != nil {
		query = query.Where("is_archived = ?", *filters.Archived)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = NormalizePagination(page, pageSize)
	offset := (page - 1) * pageSize
	err := query.
		Order(BuildOrderClause(sort, orderSortFields, "created_at DESC")).
		Offset(offset).Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}

// AddShipment appends a shipment and bumps the order's shipped quantity
// in one transaction. The caller validates the quantity beforehand.
func (r *OrderRepository) AddShipment(ctx context.Context, order *domain.Order, shipment *domain.Shipment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shipment).Error; err != nil {
			return err
		}
		order.QuantityShipped += shipment.Quantity
		return tx.Save(order).Error
	})
}

// CountCreatedInYear supports order number generation
func (r *OrderRepository) CountCreatedInYear(ctx context.Context, year int) (int64, error) {
	var count int64
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// ListUnpaidWithInvoice returns active unpaid orders that carry an
// invoice, the candidates for ERP payment reconciliation.
func (r *OrderRepository) ListUnpaidWithInvoice(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Where("payment_status = ? AND invoice_file_id IS NOT NULL AND is_archived = ?",
			domain.PaymentStatusUnpaid, false).
		Find(&orders).Error
	return orders, err
}

// ListAll returns every order matching the filters without paging, for
// the admin order book export
func (r *OrderRepository) ListAll(ctx context.Context, filters OrderFilters) ([]domain.Order, error) {
	var orders []domain.Order
	query := r.db.WithContext(ctx).Model(&domain.Order{})
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}
	if filters.Archived != nil {
		query = query.Where("is_archived = ?", *filters.Archived)
	}
	err := query.Order("created_at ASC").Find(&orders).Error
	return orders, err
}
