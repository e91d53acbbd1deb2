package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierQuoteSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	supplier := env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	quote, err := env.quoteService.Submit(ctx, supUser, rfq.ID, &domain.CreateSupplierQuoteRequest{
		Price:        1800,
		LeadTimeDays: 21,
		Notes:        "Tooling included",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SupplierQuoteStatusPending, quote.Status)
	assert.Equal(t, supplier.ID, quote.SupplierID)
	// Supplier identity is snapshotted onto the quote
	assert.Equal(t, "Precision Works", quote.SupplierName)
	assert.Equal(t, "Precision Works GmbH", quote.CompanyName)
	assert.Equal(t, "USD", quote.Currency)
}

func TestSupplierQuoteSubmitRejectsDuplicatePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	_, err := env.quoteService.Submit(ctx, supUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1800})
	require.NoError(t, err)

	_, err = env.quoteService.Submit(ctx, supUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1700})
	assert.ErrorIs(t, err, ErrDuplicateQuote)
}

func TestSupplierQuoteSubmitRequiresDispatchedRFQ(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSubmitted, domain.RFQSourceCustomer)

	_, err := env.quoteService.Submit(ctx, supUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1800})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialPreconditionFailed, transitionErr.Reason)
}

func TestSupplierQuoteSubmitWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	_, err := env.quoteService.Submit(context.Background(), supplierUser(), rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1800})
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestSupplierQuoteDecideAccept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	quote, err := env.quoteService.Submit(ctx, supUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1800})
	require.NoError(t, err)

	decided, err := env.quoteService.Decide(ctx, admin, quote.ID, &domain.SupplierQuoteDecisionRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, domain.SupplierQuoteStatusAccepted, decided.Status)

	var notifications []domain.Notification
	require.NoError(t, env.db.Where("user_id = ? AND type = ?", supUser.UserID, domain.NotificationQuoteAccepted).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
}

func TestSupplierQuoteDecideConflictingAcceptance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := adminUser()
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	firstUser := supplierUser()
	env.seedSupplier(t, firstUser, "First Shop", "First Shop AS")
	first, err := env.quoteService.Submit(ctx, firstUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1800})
	require.NoError(t, err)

	secondUser := supplierUser()
	env.seedSupplier(t, secondUser, "Second Shop", "Second Shop AS")
	second, err := env.quoteService.Submit(ctx, secondUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1900})
	require.NoError(t, err)

	_, err = env.quoteService.Decide(ctx, admin, first.ID, &domain.SupplierQuoteDecisionRequest{Status: "accepted"})
	require.NoError(t, err)

	_, err = env.quoteService.Decide(ctx, admin, second.ID, &domain.SupplierQuoteDecisionRequest{Status: "accepted"})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialConflictingAcceptance, transitionErr.Reason)

	// The losing bid can still be marked not selected
	decided, err := env.quoteService.Decide(ctx, admin, second.ID, &domain.SupplierQuoteDecisionRequest{Status: "not_selected"})
	require.NoError(t, err)
	assert.Equal(t, domain.SupplierQuoteStatusNotSelected, decided.Status)
}

func TestSupplierQuoteDecideLegacyRejectedValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	quote, err := env.quoteService.Submit(ctx, supUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1800})
	require.NoError(t, err)

	decided, err := env.quoteService.Decide(ctx, adminUser(), quote.ID, &domain.SupplierQuoteDecisionRequest{
		Status:        "rejected",
		AdminFeedback: "lead time too long",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SupplierQuoteStatusNotSelected, decided.Status)
	assert.Equal(t, "lead time too long", decided.AdminFeedback)
}

func TestSupplierQuoteDecideRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	quote, err := env.quoteService.Submit(ctx, supUser, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1800})
	require.NoError(t, err)

	_, err = env.quoteService.Decide(ctx, supUser, quote.ID, &domain.SupplierQuoteDecisionRequest{Status: "accepted"})
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.DenialInvalidTransition, transitionErr.Reason)
}

func TestSupplierQuoteGetScopedToOwningSupplier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := supplierUser()
	env.seedSupplier(t, owner, "Owner Shop", "Owner Shop AS")
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	quote, err := env.quoteService.Submit(ctx, owner, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: 1800})
	require.NoError(t, err)

	got, err := env.quoteService.Get(ctx, owner, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.ID, got.ID)

	other := supplierUser()
	env.seedSupplier(t, other, "Other Shop", "Other Shop AS")
	_, err = env.quoteService.Get(ctx, other, quote.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.quoteService.Get(ctx, customerUser(), quote.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSupplierQuoteListMine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supUser := supplierUser()
	env.seedSupplier(t, supUser, "Precision Works", "Precision Works GmbH")

	first := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)
	second := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)
	_, err := env.quoteService.Submit(ctx, supUser, first.ID, &domain.CreateSupplierQuoteRequest{Price: 100})
	require.NoError(t, err)
	_, err = env.quoteService.Submit(ctx, supUser, second.ID, &domain.CreateSupplierQuoteRequest{Price: 200})
	require.NoError(t, err)

	quotes, total, err := env.quoteService.ListMine(ctx, supUser, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, quotes, 2)

	_, _, err = env.quoteService.ListMine(ctx, supplierUser(), 1, 20)
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestSupplierQuoteCompareByRFQ(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSentToSuppliers, domain.RFQSourceAdmin)

	seed := func(name, company string, price float64) {
		user := supplierUser()
		env.seedSupplier(t, user, name, company)
		_, err := env.quoteService.Submit(ctx, user, rfq.ID, &domain.CreateSupplierQuoteRequest{Price: price})
		require.NoError(t, err)
	}
	seed("Alice", "Acme", 900)
	seed("Bob", "Acme", 850)
	seed("Carol", "Budget Metals", 700)

	groups, err := env.quoteService.CompareByRFQ(ctx, rfq.ID)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Budget Metals", groups[0].CompanyName)
	assert.Equal(t, "Acme", groups[1].CompanyName)
	assert.Equal(t, 850.0, groups[1].Representative.Price)
}

func TestSupplierQuoteNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.quoteService.Decide(context.Background(), adminUser(), uuid.New(), &domain.SupplierQuoteDecisionRequest{Status: "accepted"})
	assert.ErrorIs(t, err, ErrSupplierQuoteNotFound)
}
