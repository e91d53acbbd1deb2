package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/database"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

type testEnv struct {
	db *gorm.DB

	rfqRepo          *repository.RFQRepository
	salesQuoteRepo   *repository.SalesQuoteRepository
	supplierQuotes   *repository.SupplierQuoteRepository
	orderRepo        *repository.OrderRepository
	poRepo           *repository.PurchaseOrderRepository
	supplierRepo     *repository.SupplierRepository
	activityRepo     *repository.ActivityRepository
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository

	rfqService   *RFQService
	quoteService *SupplierQuoteService
	orderService *OrderService
	poService    *PurchaseOrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()

	env := &testEnv{
		db:               db,
		rfqRepo:          repository.NewRFQRepository(db),
		salesQuoteRepo:   repository.NewSalesQuoteRepository(db),
		supplierQuotes:   repository.NewSupplierQuoteRepository(db),
		orderRepo:        repository.NewOrderRepository(db),
		poRepo:           repository.NewPurchaseOrderRepository(db),
		supplierRepo:     repository.NewSupplierRepository(db),
		activityRepo:     repository.NewActivityRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		userRepo:         repository.NewUserRepository(db),
	}

	env.rfqService = NewRFQService(env.rfqRepo, env.salesQuoteRepo, env.orderRepo, env.supplierRepo, env.activityRepo, env.notificationRepo, log)
	env.quoteService = NewSupplierQuoteService(env.supplierQuotes, env.rfqRepo, env.supplierRepo, env.poRepo, env.activityRepo, env.notificationRepo, log)
	env.orderService = NewOrderService(env.orderRepo, env.activityRepo, env.notificationRepo, log)
	env.poService = NewPurchaseOrderService(env.poRepo, env.supplierQuotes, env.supplierRepo, env.activityRepo, env.notificationRepo, log)
	return env
}

func adminUser() *auth.UserContext {
	return &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Sales Admin",
		Email:       "admin@partbridge.test",
		Role:        domain.RoleAdmin,
	}
}

func customerUser() *auth.UserContext {
	return &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Casey Customer",
		Email:       "casey@buyer.test",
		Role:        domain.RoleCustomer,
		CompanyName: "Buyer Corp",
	}
}

func supplierUser() *auth.UserContext {
	return &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Sam Supplier",
		Email:       "sam@machining.test",
		Role:        domain.RoleSupplier,
	}
}

// seedSupplier creates a supplier profile linked to the given user
func (env *testEnv) seedSupplier(t *testing.T, user *auth.UserContext, name, company string) *domain.Supplier {
	t.Helper()
	userID := user.UserID
	supplier := &domain.Supplier{
		UserID:      &userID,
		Name:        name,
		CompanyName: company,
		IsActive:    true,
	}
	require.NoError(t, env.supplierRepo.Create(context.Background(), supplier))
	return supplier
}

// seedRFQ creates an RFQ directly in the given status
func (env *testEnv) seedRFQ(t *testing.T, customer *auth.UserContext, status domain.RFQStatus, source domain.RFQSource) *domain.RFQ {
	t.Helper()
	rfq := &domain.RFQ{
		ReferenceNumber: "RFQ-2026-" + uuid.NewString()[:8],
		CustomerID:      customer.UserID,
		CustomerName:    customer.DisplayName,
		ProjectName:     "Test bracket",
		Material:        "steel",
		Quantity:        50,
		Status:          status,
		Source:          source,
	}
	require.NoError(t, env.rfqRepo.Create(context.Background(), rfq))
	return rfq
}

// seedOrder creates an order directly in the given stage
func (env *testEnv) seedOrder(t *testing.T, customer *auth.UserContext, stage domain.OrderStage, quantity int) *domain.Order {
	t.Helper()
	order := &domain.Order{
		OrderNumber:   "ORD-2026-" + uuid.NewString()[:8],
		RFQID:         uuid.New(),
		CustomerID:    customer.UserID,
		CustomerName:  customer.DisplayName,
		ProjectName:   "Test bracket",
		Amount:        1250,
		Currency:      "USD",
		Stage:         stage,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Quantity:      quantity,
	}
	require.NoError(t, env.orderRepo.Create(context.Background(), order))
	return order
}
