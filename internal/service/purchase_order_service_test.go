package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acceptedQuote runs the bid flow up to an accepted supplier quote
func acceptedQuote(t *testing.T, env *testEnv, supUser *auth.UserContext, price float64) *domain.SupplierQuote {
	t.Helper()
	ctx := context.Background()
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	quote, err := env.quoteService.Submit(ctx, supUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: price, LeadTimeDays: 14})
	require.NoError(t, err)
	_, err = env.quoteService.Decide(ctx, adminUser(), quote.ID, &domain.SupplierQuoteDecisionRequest{Status: "accepted"})
	require.NoError(t, err)
	quote.Status = domain.SupplierQuoteStatusAccepted
	return quote
}

func TestPurchaseOrderCreateFromAcceptedQuote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	quote := acceptedQuote(t, env, supUser, 12.5)

	po, err := env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: quote.ID.String(),
		Quantity:        200,
	})
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("PO-%d-0001", year), po.PONumber)
	assert.Equal(t, domain.POStatusPending, po.Status)
	assert.Equal(t, quote.RFQID, po.RFQID)
	assert.Equal(t, quote.SupplierID, po.SupplierID)
	// Amount derives from the quoted unit price
	assert.Equal(t, 2500.0, po.Amount)
	assert.Equal(t, "Precision Works GmbH", po.CompanyName)

	var notifications []domain.Notification
	require.NoError(t, env.db.Where("user_id = ? AND type = ?", supUser.UserID, domain.NotificationPOAssigned).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
}

func TestPurchaseOrderCreateRequiresAcceptedQuote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	pending, err := env.quoteService.Submit(ctx, supUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 10})
	require.NoError(t, err)

	_, err = env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: pending.ID.String(),
		Quantity:        50,
	})
	assert.ErrorIs(t, err, ErrQuoteNotAccepted)
}

func TestPurchaseOrderCreateOncePerQuote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	quote := acceptedQuote(t, env, supUser, 10)

	_, err := env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: quote.ID.String(),
		Quantity:        50,
	})
	require.NoError(t, err)

	_, err = env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: quote.ID.String(),
		Quantity:        50,
	})
	assert.ErrorIs(t, err, ErrDuplicatePurchaseOrder)
}

func TestPurchaseOrderSupplierStatusFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	quote := acceptedQuote(t, env, supUser, 10)

	po, err := env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: quote.ID.String(),
		Quantity:        50,
	})
	require.NoError(t, err)

	accepted, err := env.poService.SetStatus(ctx, supUser, po.ID, &domain.PurchaseOrderStatusRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, domain.POStatusAccepted, accepted.Status)

	// Suppliers may report several stages at once
	skipped, err := env.poService.SetStatus(ctx, supUser, po.ID, &domain.PurchaseOrderStatusRequest{Status: "quality_check"})
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatus(domain.StageQualityCheck), skipped.Status)

	// But never backwards
	_, err = env.poService.SetStatus(ctx, supUser, po.ID, &domain.PurchaseOrderStatusRequest{Status: "manufacturing"})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialBackwardTransition, transitionErr.Reason)

	delivered, err := env.poService.SetStatus(ctx, supUser, po.ID, &domain.PurchaseOrderStatusRequest{Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatus(domain.StageDelivered), delivered.Status)

	_, err = env.poService.SetStatus(ctx, supUser, po.ID, &domain.PurchaseOrderStatusRequest{Status: "delivered"})
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialTerminalState, transitionErr.Reason)
}

func TestPurchaseOrderDecline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	quote := acceptedQuote(t, env, supUser, 10)

	po, err := env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: quote.ID.String(),
		Quantity:        50,
	})
	require.NoError(t, err)

	declined, err := env.poService.SetStatus(ctx, supUser, po.ID, &domain.PurchaseOrderStatusRequest{
		Status: "declined",
		Note:   "capacity booked out",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.POStatusDeclined, declined.Status)

	// Declined is final
	_, err = env.poService.SetStatus(ctx, supUser, po.ID, &domain.PurchaseOrderStatusRequest{Status: "accepted"})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialTerminalState, transitionErr.Reason)
}

func TestPurchaseOrderStatusDeniedForAdminRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	quote := acceptedQuote(t, env, supUser, 10)

	po, err := env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: quote.ID.String(),
		Quantity:        50,
	})
	require.NoError(t, err)

	_, err = env.poService.SetStatus(ctx, adminUser(), po.ID, &domain.PurchaseOrderStatusRequest{Status: "accepted"})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialInvalidTransition, transitionErr.Reason)
}

func TestPurchaseOrderScopedToOwningSupplier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := supplierUser()
	env.seedSupplier(t, owner, "Owner Shop", "Owner Shop AS")
	quote := acceptedQuote(t, env, owner, 10)

	po, err := env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: quote.ID.String(),
		Quantity:        50,
	})
	require.NoError(t, err)

	other := supplierUser()
	env.seedSupplier(t, other, "Other Shop", "Other Shop AS")
	_, err = env.poService.Get(ctx, other, po.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.poService.SetStatus(ctx, other, po.ID, &domain.PurchaseOrderStatusRequest{Status: "accepted"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Supplier pricing is never exposed to customers
	_, err = env.poService.Get(ctx, customerUser(), po.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestPurchaseOrderListScopedToSupplier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := supplierUser()
	env.seedSupplier(t, first, "First Shop", "First Shop AS")
	quote := acceptedQuote(t, env, first, 10)
	_, err := env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: quote.ID.String(),
		Quantity:        50,
	})
	require.NoError(t, err)

	second := supplierUser()
	env.seedSupplier(t, second, "Second Shop", "Second Shop AS")
	otherQuote := acceptedQuote(t, env, second, 20)
	_, err = env.poService.Create(ctx, adminUser(), &domain.CreatePurchaseOrderRequest{
		SupplierQuoteID: otherQuote.ID.String(),
		Quantity:        10,
	})
	require.NoError(t, err)

	mine, total, err := env.poService.List(ctx, first, 1, 20, repository.POFilters{}, repository.SortConfig{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)

	_, total, err = env.poService.List(ctx, adminUser(), 1, 20, repository.POFilters{}, repository.SortConfig{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
