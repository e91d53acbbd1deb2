package domain

// DenialReason explains why a lifecycle transition was refused
type DenialReason string

const (
	DenialInvalidTransition     DenialReason = "invalid_transition"
	DenialConflictingAcceptance DenialReason = "conflicting_acceptance"
	DenialBackwardTransition    DenialReason = "backward_transition"
	DenialTerminalState         DenialReason = "terminal_state"
	DenialPreconditionFailed    DenialReason = "precondition_failed"
)

// Decision is the outcome of a transition check. Reason is set only
// when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  DenialReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenialReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanTransitionRFQ checks whether role may move an RFQ from one status to
// another. hasActiveQuote must be true when the RFQ carries an unexpired
// sales quote; accepting without one is a precondition failure.
func CanTransitionRFQ(role UserRole, from, to RFQStatus, hasActiveQuote bool) Decision {
	if !from.IsValid() || !to.IsValid() {
		return deny(DenialInvalidTransition)
	}
	if from.IsTerminal() {
		return deny(DenialTerminalState)
	}

	switch role {
	case RoleAdmin:
		switch {
		case from == RFQStatusSubmitted && to == RFQStatusQuoted:
			return allow()
		case from == RFQStatusSubmitted && to == RFQStatusSentToSuppliers:
			return allow()
		case from == RFQStatusSentToSuppliers && to == RFQStatusQuoted:
			return allow()
		}
	case RoleCustomer:
		if from == RFQStatusQuoted && to == RFQStatusAccepted {
			if !hasActiveQuote {
				return deny(DenialPreconditionFailed)
			}
			return allow()
		}
		if from == RFQStatusQuoted && to == RFQStatusDeclined {
			return allow()
		}
	}

	return deny(DenialInvalidTransition)
}

// CanTransitionSupplierQuote checks whether role may move a supplier quote
// between statuses. otherAccepted must be true when another quote on the
// same RFQ is already accepted; only one acceptance per RFQ is allowed.
func CanTransitionSupplierQuote(role UserRole, from, to SupplierQuoteStatus, otherAccepted bool) Decision {
	if !from.IsValid() || !to.IsValid() {
		return deny(DenialInvalidTransition)
	}
	if from != SupplierQuoteStatusPending {
		return deny(DenialTerminalState)
	}
	if role != RoleAdmin {
		return deny(DenialInvalidTransition)
	}

	switch to {
	case SupplierQuoteStatusAccepted:
		if otherAccepted {
			return deny(DenialConflictingAcceptance)
		}
		return allow()
	case SupplierQuoteStatusNotSelected:
		return allow()
	}

	return deny(DenialInvalidTransition)
}

// CanAdvanceOrderStage checks an order stage change. Orders walk the
// manufacturing sequence exactly one stage at a time; skipping ahead and
// moving backwards are both refused.
func CanAdvanceOrderStage(role UserRole, from, to OrderStage) Decision {
	fromIdx, toIdx := from.StageIndex(), to.StageIndex()
	if fromIdx < 0 || toIdx < 0 {
		return deny(DenialInvalidTransition)
	}
	if from.IsTerminal() {
		return deny(DenialTerminalState)
	}
	if role != RoleAdmin {
		return deny(DenialInvalidTransition)
	}
	if toIdx <= fromIdx {
		return deny(DenialBackwardTransition)
	}
	if toIdx != fromIdx+1 {
		return deny(DenialInvalidTransition)
	}
	return allow()
}

// CanTransitionOrderPayment checks a payment status change. Payment is a
// one-way unpaid to paid switch and requires an invoice on file.
func CanTransitionOrderPayment(role UserRole, from, to PaymentStatus, hasInvoice bool) Decision {
	if !from.IsValid() || !to.IsValid() {
		return deny(DenialInvalidTransition)
	}
	if from == PaymentStatusPaid {
		return deny(DenialTerminalState)
	}
	if role != RoleAdmin {
		return deny(DenialInvalidTransition)
	}
	if to != PaymentStatusPaid {
		return deny(DenialInvalidTransition)
	}
	if !hasInvoice {
		return deny(DenialPreconditionFailed)
	}
	return allow()
}

// CanTransitionPurchaseOrder checks a purchase order status change.
// Pending purchase orders may only be accepted or declined. Accepted ones
// move forward through the progression; suppliers may report several
// stages at once, so skips are allowed but backward moves are not.
func CanTransitionPurchaseOrder(role UserRole, from, to PurchaseOrderStatus) Decision {
	if !from.IsValid() || !to.IsValid() {
		return deny(DenialInvalidTransition)
	}
	if from.IsTerminal() {
		return deny(DenialTerminalState)
	}
	if role != RoleSupplier {
		return deny(DenialInvalidTransition)
	}

	if from == POStatusPending {
		if to == POStatusAccepted || to == POStatusDeclined {
			return allow()
		}
		return deny(DenialInvalidTransition)
	}

	fromIdx, toIdx := from.ProgressionIndex(), to.ProgressionIndex()
	if toIdx < 0 {
		return deny(DenialInvalidTransition)
	}
	if toIdx < fromIdx {
		return deny(DenialBackwardTransition)
	}
	return allow()
}
