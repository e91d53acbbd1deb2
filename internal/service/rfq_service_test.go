package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFQCreateAssignsSequentialReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := customerUser()

	first, err := env.rfqService.Create(ctx, customer, &domain.CreateRFQRequest{
		ProjectName: "Gear housing",
		Material:    "aluminum",
		Quantity:    100,
	})
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("RFQ-%d-0001", year), first.ReferenceNumber)
	assert.Equal(t, domain.RFQStatusSubmitted, first.Status)
	assert.Equal(t, domain.RFQSourceCustomer, first.Source)
	assert.Equal(t, customer.UserID, first.CustomerID)

	second, err := env.rfqService.Create(ctx, customer, &domain.CreateRFQRequest{
		ProjectName: "Shaft",
		Material:    "steel",
		Quantity:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RFQ-%d-0002", year), second.ReferenceNumber)

	activities, err := env.activityRepo.ListByTarget(ctx, "rfq", first.ID, 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "RFQ submitted", activities[0].Title)
}

func TestRFQGetScopedToOwningCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := customerUser()
	rfq := env.seedRFQ(t, owner, domain.RFQStatusSubmitted, domain.RFQSourceCustomer)

	got, err := env.rfqService.Get(ctx, owner, rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, rfq.ID, got.ID)

	_, err = env.rfqService.Get(ctx, customerUser(), rfq.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Admins are not scoped
	_, err = env.rfqService.Get(ctx, adminUser(), rfq.ID)
	assert.NoError(t, err)
}

func TestRFQGetSupplierVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := customerUser()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")

	// Undispatched RFQs are not visible to suppliers
	private := env.seedRFQ(t, customer, domain.RFQStatusSubmitted, domain.RFQSourceCustomer)
	_, err := env.rfqService.Get(ctx, supUser, private.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Dispatched RFQs are open to every supplier
	open := env.seedRFQ(t, customer, domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)
	_, err = env.rfqService.Get(ctx, supUser, open.ID)
	require.NoError(t, err)

	// A supplier with a bid keeps read access after the RFQ moves on
	_, err = env.quoteService.Submit(ctx, supUser, open.ID, &domain.CreateSupplierQuoteRequest{Price: 500})
	require.NoError(t, err)
	open.Status = domain.RFQStatusQuoted
	require.NoError(t, env.rfqRepo.Update(ctx, open))

	_, err = env.rfqService.Get(ctx, supUser, open.ID)
	assert.NoError(t, err)

	// But a supplier without one does not
	bystander := supplierUser()
	env.seedSupplier(t, bystander, "Bystander Shop", "Bystander Shop AS")
	_, err = env.rfqService.Get(ctx, bystander, open.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRFQUpdateOnlyWhileSubmitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := customerUser()
	rfq := env.seedRFQ(t, customer, domain.RFQStatusSubmitted, domain.RFQSourceCustomer)

	name := "Revised bracket"
	qty := 75
	updated, err := env.rfqService.Update(ctx, customer, rfq.ID, &domain.UpdateRFQRequest{
		ProjectName: &name,
		Quantity:    &qty,
	})
	require.NoError(t, err)
	assert.Equal(t, "Revised bracket", updated.ProjectName)
	assert.Equal(t, 75, updated.Quantity)

	quoted := env.seedRFQ(t, customer, domain.RFQStatusQuoted, domain.RFQSourceCustomer)
	_, err = env.rfqService.Update(ctx, customer, quoted.ID, &domain.UpdateRFQRequest{ProjectName: &name})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialPreconditionFailed, transitionErr.Reason)
}

func TestRFQQuoteAcceptCreatesOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	customer := customerUser()
	rfq := env.seedRFQ(t, customer, domain.RFQStatusSubmitted, domain.RFQSourceCustomer)

	quote, err := env.rfqService.CreateSalesQuote(ctx, admin, rfq.ID, &domain.CreateSalesQuoteRequest{
		Amount:     4200,
		ValidUntil: time.Now().Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", quote.Currency)

	refreshed, err := env.rfqRepo.GetByID(ctx, rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RFQStatusQuoted, refreshed.Status)

	// The customer got a quote_received notification
	var notifications []domain.Notification
	require.NoError(t, env.db.Where("user_id = ?", customer.UserID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationQuoteReceived, notifications[0].Type)

	decided, order, err := env.rfqService.Decide(ctx, customer, rfq.ID, &domain.RFQDecisionRequest{Decision: "accept"})
	require.NoError(t, err)
	assert.Equal(t, domain.RFQStatusAccepted, decided.Status)
	require.NotNil(t, order)

	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("ORD-%d-0001", year), order.OrderNumber)
	assert.Equal(t, rfq.ID, order.RFQID)
	assert.Equal(t, 4200.0, order.Amount)
	assert.Equal(t, rfq.Quantity, order.Quantity)
	assert.Equal(t, domain.StagePending, order.Stage)
	assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)
}

func TestRFQDecline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := customerUser()
	rfq := env.seedRFQ(t, customer, domain.RFQStatusQuoted, domain.RFQSourceCustomer)

	decided, order, err := env.rfqService.Decide(ctx, customer, rfq.ID, &domain.RFQDecisionRequest{
		Decision: "decline",
		Reason:   "price too high",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RFQStatusDeclined, decided.Status)
	assert.Nil(t, order)
}

func TestRFQAcceptWithExpiredQuote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	customer := customerUser()
	rfq := env.seedRFQ(t, customer, domain.RFQStatusQuoted, domain.RFQSourceCustomer)

	require.NoError(t, env.salesQuoteRepo.Create(ctx, &domain.SalesQuote{
		RFQID:       rfq.ID,
		Amount:      900,
		Currency:    "USD",
		ValidUntil:  time.Now().Add(-time.Hour),
		CreatedByID: admin.UserID,
	}))

	_, _, err := env.rfqService.Decide(ctx, customer, rfq.ID, &domain.RFQDecisionRequest{Decision: "accept"})
	assert.ErrorIs(t, err, ErrQuoteExpired)

	// Declining the stale quote is still allowed
	decided, _, err := env.rfqService.Decide(ctx, customer, rfq.ID, &domain.RFQDecisionRequest{Decision: "decline"})
	require.NoError(t, err)
	assert.Equal(t, domain.RFQStatusDeclined, decided.Status)
}

func TestRFQAdminRoleCannotDecide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := customerUser()
	rfq := env.seedRFQ(t, customer, domain.RFQStatusQuoted, domain.RFQSourceCustomer)

	_, _, err := env.rfqService.Decide(ctx, adminUser(), rfq.ID, &domain.RFQDecisionRequest{Decision: "decline"})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialInvalidTransition, transitionErr.Reason)
}

func TestRFQRequoteReplacesExistingQuote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	customer := customerUser()
	rfq := env.seedRFQ(t, customer, domain.RFQStatusSubmitted, domain.RFQSourceCustomer)

	first, err := env.rfqService.CreateSalesQuote(ctx, admin, rfq.ID, &domain.CreateSalesQuoteRequest{
		Amount:     1000,
		ValidUntil: time.Now().Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)

	second, err := env.rfqService.CreateSalesQuote(ctx, admin, rfq.ID, &domain.CreateSalesQuoteRequest{
		Amount:     850,
		Currency:   "EUR",
		ValidUntil: time.Now().Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 850.0, second.Amount)
	assert.Equal(t, "EUR", second.Currency)

	var count int64
	require.NoError(t, env.db.Model(&domain.SalesQuote{}).Where("rfq_id = ?", rfq.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRFQDispatchRequiresAdminSource(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	customer := customerUser()

	fromCustomer := env.seedRFQ(t, customer, domain.RFQStatusSubmitted, domain.RFQSourceCustomer)
	_, err := env.rfqService.Dispatch(ctx, admin, fromCustomer.ID, &domain.DispatchRFQRequest{})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialPreconditionFailed, transitionErr.Reason)
}

func TestRFQDispatchNotifiesSuppliers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	customer := customerUser()

	linkedUser := supplierUser()
	linked := env.seedSupplier(t, linkedUser, "Linked Shop", "Linked Shop AS")
	unlinked := &domain.Supplier{Name: "Directory Only", IsActive: true}
	require.NoError(t, env.supplierRepo.Create(ctx, unlinked))

	rfq := env.seedRFQ(t, customer, domain.RFQStatusSubmitted, domain.RFQSourceAdmin)
	dispatched, err := env.rfqService.Dispatch(ctx, admin, rfq.ID, &domain.DispatchRFQRequest{
		SupplierIDs: []string{linked.ID.String(), unlinked.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RFQStatusSentToSuppliers, dispatched.Status)

	// Only suppliers with a portal account get notified
	var notifications []domain.Notification
	require.NoError(t, env.db.Where("type = ?", domain.NotificationRFQDispatched).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, linkedUser.UserID, notifications[0].UserID)
}

func TestRFQListScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := customerUser()
	bob := customerUser()

	env.seedRFQ(t, alice, domain.RFQStatusSubmitted, domain.RFQSourceCustomer)
	env.seedRFQ(t, alice, domain.RFQStatusQuoted, domain.RFQSourceCustomer)
	env.seedRFQ(t, bob, domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	all, total, err := env.rfqService.List(ctx, adminUser(), 1, 20, repository.RFQFilters{}, repository.SortConfig{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	mine, total, err := env.rfqService.List(ctx, alice, 1, 20, repository.RFQFilters{}, repository.SortConfig{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, rfq := range mine {
		assert.Equal(t, alice.UserID, rfq.CustomerID)
	}

	open, total, err := env.rfqService.List(ctx, supplierUser(), 1, 20, repository.RFQFilters{}, repository.SortConfig{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, open, 1)
	assert.Equal(t, domain.RFQStatusSentToSuppliers, open[0].Status)
}

func TestRFQExpireQuotesSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	customer := customerUser()

	stale := env.seedRFQ(t, customer, domain.RFQStatusQuoted, domain.RFQSourceCustomer)
	require.NoError(t, env.salesQuoteRepo.Create(ctx, &domain.SalesQuote{
		RFQID:       stale.ID,
		Amount:      500,
		Currency:    "USD",
		ValidUntil:  time.Now().Add(-48 * time.Hour),
		CreatedByID: admin.UserID,
	}))

	fresh := env.seedRFQ(t, customer, domain.RFQStatusQuoted, domain.RFQSourceCustomer)
	require.NoError(t, env.salesQuoteRepo.Create(ctx, &domain.SalesQuote{
		RFQID:       fresh.ID,
		Amount:      700,
		Currency:    "USD",
		ValidUntil:  time.Now().Add(48 * time.Hour),
		CreatedByID: admin.UserID,
	}))

	count, err := env.rfqService.ExpireQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var notifications []domain.Notification
	require.NoError(t, env.db.Where("type = ?", domain.NotificationQuoteExpired).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, customer.UserID, notifications[0].UserID)

	// The sweep is idempotent
	count, err = env.rfqService.ExpireQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRFQNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.rfqService.Get(context.Background(), adminUser(), uuid.New())
	assert.True(t, errors.Is(err, ErrRFQNotFound))
}
