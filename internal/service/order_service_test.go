package service

import (
	"context"
	"testing"

	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderAdvanceStage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	customer := customerUser()
	order := env.seedOrder(t, customer, domain.StagePending, 100)

	advanced, err := env.orderService.AdvanceStage(ctx, admin, order.ID, domain.StageMaterialProcurement)
	require.NoError(t, err)
	assert.Equal(t, domain.StageMaterialProcurement, advanced.Stage)

	// The customer is told about the progress
	var notifications []domain.Notification
	require.NoError(t, env.db.Where("user_id = ? AND type = ?", customer.UserID, domain.NotificationOrderStage).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
}

func TestOrderAdvanceStageRejectsSkipAndBackward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	order := env.seedOrder(t, customerUser(), domain.StageManufacturing, 100)

	_, err := env.orderService.AdvanceStage(ctx, admin, order.ID, domain.StagePacking)
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialInvalidTransition, transitionErr.Reason)

	_, err = env.orderService.AdvanceStage(ctx, admin, order.ID, domain.StageMaterialProcurement)
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialBackwardTransition, transitionErr.Reason)
}

func TestOrderAdvanceStageCustomerDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := customerUser()
	order := env.seedOrder(t, customer, domain.StagePending, 100)

	_, err := env.orderService.AdvanceStage(ctx, customer, order.ID, domain.StageMaterialProcurement)
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialInvalidTransition, transitionErr.Reason)
}

func TestOrderAdvanceStageTerminal(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, customerUser(), domain.StageDelivered, 100)

	_, err := env.orderService.AdvanceStage(context.Background(), adminUser(), order.ID, domain.StageDelivered)
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialTerminalState, transitionErr.Reason)
}

func TestOrderAddShipmentAccumulates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	order := env.seedOrder(t, customerUser(), domain.StageShipped, 100)

	updated, err := env.orderService.AddShipment(ctx, admin, order.ID, &domain.CreateShipmentRequest{
		Quantity:        60,
		TrackingNumber:  "TRK-001",
		ShippingCarrier: "DHL",
	})
	require.NoError(t, err)
	assert.Equal(t, 60, updated.QuantityShipped)
	assert.Equal(t, 40, updated.QuantityRemaining())

	// Over-shipping the remainder is refused
	_, err = env.orderService.AddShipment(ctx, admin, order.ID, &domain.CreateShipmentRequest{Quantity: 41})
	assert.ErrorIs(t, err, ErrShipmentQuantity)

	updated, err = env.orderService.AddShipment(ctx, admin, order.ID, &domain.CreateShipmentRequest{
		Quantity:        40,
		TrackingNumber:  "TRK-002",
		ShippingCarrier: "DHL",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.QuantityRemaining())

	var count int64
	require.NoError(t, env.db.Model(&domain.Shipment{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestOrderAddShipmentOnDeliveredOrder(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, customerUser(), domain.StageDelivered, 100)

	_, err := env.orderService.AddShipment(context.Background(), adminUser(), order.ID, &domain.CreateShipmentRequest{Quantity: 10})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialTerminalState, transitionErr.Reason)
}

func TestOrderMarkPaidRequiresInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	customer := customerUser()
	order := env.seedOrder(t, customer, domain.StageManufacturing, 100)

	_, err := env.orderService.MarkPaid(ctx, admin, order.ID, &domain.MarkOrderPaidRequest{})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialPreconditionFailed, transitionErr.Reason)

	invoice := &domain.File{Filename: "invoice.pdf", StoragePath: "invoices/invoice.pdf"}
	require.NoError(t, env.db.Create(invoice).Error)

	paid, err := env.orderService.MarkPaid(ctx, admin, order.ID, &domain.MarkOrderPaidRequest{InvoiceFileID: invoice.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.InvoiceFileID)
	// Settling the order archives it
	assert.True(t, paid.IsArchived)

	// Payment is one way
	_, err = env.orderService.MarkPaid(ctx, admin, order.ID, &domain.MarkOrderPaidRequest{})
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialTerminalState, transitionErr.Reason)

	var notifications []domain.Notification
	require.NoError(t, env.db.Where("user_id = ? AND type = ?", customer.UserID, domain.NotificationOrderPaid).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
}

func TestOrderGetScopedToOwningCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := customerUser()
	order := env.seedOrder(t, owner, domain.StagePending, 10)

	got, err := env.orderService.Get(ctx, owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = env.orderService.Get(ctx, customerUser(), order.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Suppliers have no business reading customer orders
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Curious Shop", "Curious Shop AS")
	_, err = env.orderService.Get(ctx, supUser, order.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestOrderListScopedToCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := customerUser()
	bob := customerUser()
	env.seedOrder(t, alice, domain.StagePending, 10)
	env.seedOrder(t, alice, domain.StageManufacturing, 20)
	env.seedOrder(t, bob, domain.StagePending, 30)

	mine, total, err := env.orderService.List(ctx, alice, 1, 20, repository.OrderFilters{}, repository.SortConfig{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, order := range mine {
		assert.Equal(t, alice.UserID, order.CustomerID)
	}

	_, total, err = env.orderService.List(ctx, adminUser(), 1, 20, repository.OrderFilters{}, repository.SortConfig{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestOrderArchiveRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	order := env.seedOrder(t, customerUser(), domain.StageDelivered, 10)

	archived, err := env.orderService.SetArchived(ctx, admin, order.ID, true)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	restored, err := env.orderService.SetArchived(ctx, admin, order.ID, false)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)
}

func TestOrderActivitiesTrail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	order := env.seedOrder(t, customerUser(), domain.StagePending, 10)

	_, err := env.orderService.AdvanceStage(ctx, admin, order.ID, domain.StageMaterialProcurement)
	require.NoError(t, err)

	activities, err := env.orderService.Activities(ctx, admin, order.ID, 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Stage advanced", activities[0].Title)
}
