package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderStageSequence(t *testing.T) {
	assert.Equal(t, 0, StagePending.StageIndex())
	assert.Equal(t, len(ManufacturingStages)-1, StageDelivered.StageIndex())
	assert.Equal(t, -1, OrderStage("warehouse").StageIndex())

	assert.True(t, StageDelivered.IsTerminal())
	assert.False(t, StageShipped.IsTerminal())

	assert.True(t, StageQualityCheck.IsValid())
	assert.False(t, OrderStage("").IsValid())
}

func TestOrderQuantityRemaining(t *testing.T) {
	order := &Order{Quantity: 100, QuantityShipped: 30}
	assert.Equal(t, 70, order.QuantityRemaining())

	order.QuantityShipped = 100
	assert.Equal(t, 0, order.QuantityRemaining())

	order.QuantityShipped = 120
	assert.Equal(t, 0, order.QuantityRemaining())
}

func TestSalesQuoteIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	active := &SalesQuote{ValidUntil: now.Add(24 * time.Hour)}
	assert.False(t, active.IsExpired(now))

	past := &SalesQuote{ValidUntil: now.Add(-time.Minute)}
	assert.True(t, past.IsExpired(now))

	// The sweep flag wins even inside the validity window
	flagged := &SalesQuote{ValidUntil: now.Add(24 * time.Hour), IsExpiredFlag: true}
	assert.True(t, flagged.IsExpired(now))
}

func TestNormalizeSupplierQuoteStatus(t *testing.T) {
	assert.Equal(t, SupplierQuoteStatusNotSelected, NormalizeSupplierQuoteStatus("rejected"))
	assert.Equal(t, SupplierQuoteStatusNotSelected, NormalizeSupplierQuoteStatus("not_selected"))
	assert.Equal(t, SupplierQuoteStatusAccepted, NormalizeSupplierQuoteStatus("accepted"))
	assert.Equal(t, SupplierQuoteStatusPending, NormalizeSupplierQuoteStatus("pending"))
}

func TestPurchaseOrderProgressionIndex(t *testing.T) {
	assert.Equal(t, 0, POStatusAccepted.ProgressionIndex())
	assert.Equal(t, -1, POStatusPending.ProgressionIndex())
	assert.Equal(t, -1, POStatusDeclined.ProgressionIndex())
	assert.Equal(t, len(PurchaseOrderProgression)-1,
		PurchaseOrderStatus(StageDelivered).ProgressionIndex())

	assert.True(t, POStatusPending.IsValid())
	assert.True(t, PurchaseOrderStatus(StagePacking).IsValid())
	assert.False(t, PurchaseOrderStatus("pending_review").IsValid())

	assert.True(t, POStatusDeclined.IsTerminal())
	assert.True(t, PurchaseOrderStatus(StageDelivered).IsTerminal())
	assert.False(t, POStatusAccepted.IsTerminal())
}

func TestRFQStatusHelpers(t *testing.T) {
	assert.True(t, RFQStatusAccepted.IsTerminal())
	assert.True(t, RFQStatusDeclined.IsTerminal())
	assert.False(t, RFQStatusQuoted.IsTerminal())

	assert.Equal(t, "Sent to suppliers", RFQStatusSentToSuppliers.DisplayName())
	assert.Equal(t, "weird", RFQStatus("weird").DisplayName())
}

func TestUserRoleIsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleCustomer.IsValid())
	assert.True(t, RoleSupplier.IsValid())
	assert.False(t, UserRole("superuser").IsValid())
}
