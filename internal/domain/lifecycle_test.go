package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionRFQ(t *testing.T) {
	tests := []struct {
		name           string
		role           UserRole
		from, to       RFQStatus
		hasActiveQuote bool
		wantAllowed    bool
		wantReason     DenialReason
	}{
		{
			name: "admin quotes submitted rfq",
			role: RoleAdmin, from: RFQStatusSubmitted, to: RFQStatusQuoted,
			wantAllowed: true,
		},
		{
			name: "admin dispatches submitted rfq to suppliers",
			role: RoleAdmin, from: RFQStatusSubmitted, to: RFQStatusSentToSuppliers,
			wantAllowed: true,
		},
		{
			name: "admin quotes after supplier round",
			role: RoleAdmin, from: RFQStatusSentToSuppliers, to: RFQStatusQuoted,
			wantAllowed: true,
		},
		{
			name: "customer accepts active quote",
			role: RoleCustomer, from: RFQStatusQuoted, to: RFQStatusAccepted,
			hasActiveQuote: true, wantAllowed: true,
		},
		{
			name: "customer declines quote",
			role: RoleCustomer, from: RFQStatusQuoted, to: RFQStatusDeclined,
			wantAllowed: true,
		},
		{
			name: "customer cannot accept without active quote",
			role: RoleCustomer, from: RFQStatusQuoted, to: RFQStatusAccepted,
			hasActiveQuote: false, wantReason: DenialPreconditionFailed,
		},
		{
			name: "customer cannot quote own rfq",
			role: RoleCustomer, from: RFQStatusSubmitted, to: RFQStatusQuoted,
			wantReason: DenialInvalidTransition,
		},
		{
			name: "admin cannot accept on customer's behalf",
			role: RoleAdmin, from: RFQStatusQuoted, to: RFQStatusAccepted,
			hasActiveQuote: true, wantReason: DenialInvalidTransition,
		},
		{
			name: "supplier has no rfq transitions",
			role: RoleSupplier, from: RFQStatusSubmitted, to: RFQStatusQuoted,
			wantReason: DenialInvalidTransition,
		},
		{
			name: "accepted rfq is terminal",
			role: RoleAdmin, from: RFQStatusAccepted, to: RFQStatusQuoted,
			wantReason: DenialTerminalState,
		},
		{
			name: "declined rfq is terminal",
			role: RoleCustomer, from: RFQStatusDeclined, to: RFQStatusAccepted,
			hasActiveQuote: true, wantReason: DenialTerminalState,
		},
		{
			name: "skipping quoted straight to accepted is invalid",
			role: RoleCustomer, from: RFQStatusSubmitted, to: RFQStatusAccepted,
			hasActiveQuote: true, wantReason: DenialInvalidTransition,
		},
		{
			name: "unknown target status is invalid",
			role: RoleAdmin, from: RFQStatusSubmitted, to: RFQStatus("bogus"),
			wantReason: DenialInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanTransitionRFQ(tt.role, tt.from, tt.to, tt.hasActiveQuote)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			if !tt.wantAllowed {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

func TestCanTransitionSupplierQuote(t *testing.T) {
	tests := []struct {
		name          string
		role          UserRole
		from, to      SupplierQuoteStatus
		otherAccepted bool
		wantAllowed   bool
		wantReason    DenialReason
	}{
		{
			name: "admin accepts pending quote",
			role: RoleAdmin, from: SupplierQuoteStatusPending, to: SupplierQuoteStatusAccepted,
			wantAllowed: true,
		},
		{
			name: "admin passes on pending quote",
			role: RoleAdmin, from: SupplierQuoteStatusPending, to: SupplierQuoteStatusNotSelected,
			wantAllowed: true,
		},
		{
			name: "second acceptance on same rfq conflicts",
			role: RoleAdmin, from: SupplierQuoteStatusPending, to: SupplierQuoteStatusAccepted,
			otherAccepted: true, wantReason: DenialConflictingAcceptance,
		},
		{
			name: "not selected is still allowed with an accepted sibling",
			role: RoleAdmin, from: SupplierQuoteStatusPending, to: SupplierQuoteStatusNotSelected,
			otherAccepted: true, wantAllowed: true,
		},
		{
			name: "supplier cannot decide own quote",
			role: RoleSupplier, from: SupplierQuoteStatusPending, to: SupplierQuoteStatusAccepted,
			wantReason: DenialInvalidTransition,
		},
		{
			name: "accepted quote is final",
			role: RoleAdmin, from: SupplierQuoteStatusAccepted, to: SupplierQuoteStatusNotSelected,
			wantReason: DenialTerminalState,
		},
		{
			name: "not selected quote is final",
			role: RoleAdmin, from: SupplierQuoteStatusNotSelected, to: SupplierQuoteStatusAccepted,
			wantReason: DenialTerminalState,
		},
		{
			name: "pending to pending is invalid",
			role: RoleAdmin, from: SupplierQuoteStatusPending, to: SupplierQuoteStatusPending,
			wantReason: DenialInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanTransitionSupplierQuote(tt.role, tt.from, tt.to, tt.otherAccepted)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			if !tt.wantAllowed {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

func TestCanAdvanceOrderStage(t *testing.T) {
	tests := []struct {
		name        string
		role        UserRole
		from, to    OrderStage
		wantAllowed bool
		wantReason  DenialReason
	}{
		{
			name: "advance one stage",
			role: RoleAdmin, from: StagePending, to: StageMaterialProcurement,
			wantAllowed: true,
		},
		{
			name: "advance into terminal stage",
			role: RoleAdmin, from: StageShipped, to: StageDelivered,
			wantAllowed: true,
		},
		{
			name: "skipping a stage is invalid",
			role: RoleAdmin, from: StagePending, to: StageManufacturing,
			wantReason: DenialInvalidTransition,
		},
		{
			name: "moving backwards is refused",
			role: RoleAdmin, from: StageFinishing, to: StageManufacturing,
			wantReason: DenialBackwardTransition,
		},
		{
			name: "staying in place counts as backward",
			role: RoleAdmin, from: StagePacking, to: StagePacking,
			wantReason: DenialBackwardTransition,
		},
		{
			name: "delivered is terminal",
			role: RoleAdmin, from: StageDelivered, to: StagePending,
			wantReason: DenialTerminalState,
		},
		{
			name: "customer cannot advance stages",
			role: RoleCustomer, from: StagePending, to: StageMaterialProcurement,
			wantReason: DenialInvalidTransition,
		},
		{
			name: "unknown stage is invalid",
			role: RoleAdmin, from: StagePending, to: OrderStage("teleported"),
			wantReason: DenialInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanAdvanceOrderStage(tt.role, tt.from, tt.to)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			if !tt.wantAllowed {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

func TestCanAdvanceOrderStageWalksFullSequence(t *testing.T) {
	for i := 0; i < len(ManufacturingStages)-1; i++ {
		d := CanAdvanceOrderStage(RoleAdmin, ManufacturingStages[i], ManufacturingStages[i+1])
		assert.True(t, d.Allowed, "stage %s -> %s", ManufacturingStages[i], ManufacturingStages[i+1])
	}
}

func TestCanTransitionOrderPayment(t *testing.T) {
	tests := []struct {
		name        string
		role        UserRole
		from, to    PaymentStatus
		hasInvoice  bool
		wantAllowed bool
		wantReason  DenialReason
	}{
		{
			name: "mark paid with invoice on file",
			role: RoleAdmin, from: PaymentStatusUnpaid, to: PaymentStatusPaid,
			hasInvoice: true, wantAllowed: true,
		},
		{
			name: "mark paid without invoice fails precondition",
			role: RoleAdmin, from: PaymentStatusUnpaid, to: PaymentStatusPaid,
			wantReason: DenialPreconditionFailed,
		},
		{
			name: "paid is terminal",
			role: RoleAdmin, from: PaymentStatusPaid, to: PaymentStatusUnpaid,
			hasInvoice: true, wantReason: DenialTerminalState,
		},
		{
			name: "customer cannot mark paid",
			role: RoleCustomer, from: PaymentStatusUnpaid, to: PaymentStatusPaid,
			hasInvoice: true, wantReason: DenialInvalidTransition,
		},
		{
			name: "unpaid to unpaid is invalid",
			role: RoleAdmin, from: PaymentStatusUnpaid, to: PaymentStatusUnpaid,
			hasInvoice: true, wantReason: DenialInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanTransitionOrderPayment(tt.role, tt.from, tt.to, tt.hasInvoice)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			if !tt.wantAllowed {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

func TestCanTransitionPurchaseOrder(t *testing.T) {
	tests := []struct {
		name        string
		role        UserRole
		from, to    PurchaseOrderStatus
		wantAllowed bool
		wantReason  DenialReason
	}{
		{
			name: "supplier accepts pending po",
			role: RoleSupplier, from: POStatusPending, to: POStatusAccepted,
			wantAllowed: true,
		},
		{
			name: "supplier declines pending po",
			role: RoleSupplier, from: POStatusPending, to: POStatusDeclined,
			wantAllowed: true,
		},
		{
			name: "pending cannot jump into production",
			role: RoleSupplier, from: POStatusPending, to: PurchaseOrderStatus(StageManufacturing),
			wantReason: DenialInvalidTransition,
		},
		{
			name: "accepted po reports next stage",
			role: RoleSupplier, from: POStatusAccepted, to: PurchaseOrderStatus(StageMaterialProcurement),
			wantAllowed: true,
		},
		{
			name: "accepted po may skip ahead several stages",
			role: RoleSupplier, from: POStatusAccepted, to: PurchaseOrderStatus(StagePacking),
			wantAllowed: true,
		},
		{
			name: "backward progression is refused",
			role: RoleSupplier, from: PurchaseOrderStatus(StageFinishing), to: PurchaseOrderStatus(StageManufacturing),
			wantReason: DenialBackwardTransition,
		},
		{
			name: "reporting the current stage again is a no-op allow",
			role: RoleSupplier, from: PurchaseOrderStatus(StageManufacturing), to: PurchaseOrderStatus(StageManufacturing),
			wantAllowed: true,
		},
		{
			name: "declined po is terminal",
			role: RoleSupplier, from: POStatusDeclined, to: POStatusAccepted,
			wantReason: DenialTerminalState,
		},
		{
			name: "delivered po is terminal",
			role: RoleSupplier, from: PurchaseOrderStatus(StageDelivered), to: PurchaseOrderStatus(StagePacking),
			wantReason: DenialTerminalState,
		},
		{
			name: "admin does not act on supplier pos",
			role: RoleAdmin, from: POStatusPending, to: POStatusAccepted,
			wantReason: DenialInvalidTransition,
		},
		{
			name: "progression cannot fall back to pending",
			role: RoleSupplier, from: POStatusAccepted, to: POStatusPending,
			wantReason: DenialInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanTransitionPurchaseOrder(tt.role, tt.from, tt.to)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			if !tt.wantAllowed {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}
