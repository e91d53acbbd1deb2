package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/partbridge/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

// supplierSortableFields maps API field names to database column names.
// Only fields in this map can be used for sorting.
var supplierSortableFields = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"name":            "name",
	"companyName":     "company_name",
	"city":            "city",
	"country":         "country",
	"employeeCount":   "employee_count",
	"yearEstablished": "year_established",
}

// SupplierRepository handles supplier directory data access
type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *SupplierRepository) Update(ctx context.Context, supplier *domain.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *SupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Deactivate soft-removes a supplier from the directory
func (r *SupplierRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Supplier{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// List pushes the directory criteria into SQL. The domain package carries
// the same predicates in pure form for in-memory filtering; the array
// criteria use the postgres overlap operator here.
func (r *SupplierRepository) List(ctx context.Context, page, pageSize int, criteria domain.SupplierCriteria, sort SortConfig) ([]domain.Supplier, int64, error) {
	var suppliers []domain.Supplier
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Supplier{}).Where("is_active = ?", true)

	if criteria.Search != "" {
		pattern := "%" + strings.ToLower(criteria.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(company_name) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if len(criteria.Capabilities) > 0 {
		query = query.Where("capabilities && ?", pq.Array(criteria.Capabilities))
	}
	if len(criteria.Certifications) > 0 {
		query = query.Where("certifications && ?", pq.Array(criteria.Certifications))
	}
	if len(criteria.Industries) > 0 {
		query = query.Where("industries && ?", pq.Array(criteria.Industries))
	}
	if len(criteria.Countries) > 0 {
		query = query.Where("country IN ?", criteria.Countries)
	}
	if len(criteria.Cities) > 0 {
		query = query.Where("city IN ?", criteria.Cities)
	}
	if criteria.MinEmployees != nil {
		query = query.Where("employee_count >= ?", *criteria.MinEmployees)
	}
	if criteria.MaxEmployees != nil {
		query = query.Where("employee_count <= ?", *criteria.MaxEmployees)
	}
	if criteria.MinYearEstablished != nil {
		query = query.Where("year_established >= ?", *criteria.MinYearEstablished)
	}
	if criteria.EmergencyCapability != nil {
		query = query.Where("emergency_capability = ?", *criteria.EmergencyCapability)
	}
	if criteria.InternationalShipping != nil {
		query = query.Where("international_shipping = ?", *criteria.InternationalShipping)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = NormalizePagination(page, pageSize)
	offset := (page - 1) * pageSize
	err := query.
		Order(BuildOrderClause(sort, supplierSortableFields, "name ASC")).
		Offset(offset).Limit(pageSize).
		Find(&suppliers).Error

	return suppliers, total, err
}

// ListActive loads the whole active directory, alphabetical by name
func (r *SupplierRepository) ListActive(ctx context.Context) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&suppliers).Error
	return suppliers, err
}

// ListByIDs loads the invited suppliers for an RFQ dispatch
func (r *SupplierRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&suppliers).Error
	return suppliers, err
}
