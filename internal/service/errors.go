package service

import (
	"errors"
	"fmt"

	"github.com/partbridge/marketplace-api/internal/domain"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when a user may not act on a resource
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRFQNotFound is returned when an RFQ does not exist
	ErrRFQNotFound = errors.New("rfq not found")

	// ErrQuoteNotFound is returned when a sales quote does not exist
	ErrQuoteNotFound = errors.New("sales quote not found")

	// ErrSupplierQuoteNotFound is returned when a supplier quote does not exist
	ErrSupplierQuoteNotFound = errors.New("supplier quote not found")

	// ErrOrderNotFound is returned when an order does not exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrPurchaseOrderNotFound is returned when a purchase order does not exist
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")

	// ErrSupplierNotFound is returned when a supplier profile does not exist
	ErrSupplierNotFound = errors.New("supplier not found")

	// ErrUserNotFound is returned when a user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrFileNotFound is returned when a file does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrThreadNotFound is returned when a message thread does not exist
	ErrThreadNotFound = errors.New("thread not found")

	// ErrNotificationNotFound is returned when a notification does not exist
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrQuoteExpired is returned when a customer acts on an expired quote
	ErrQuoteExpired = errors.New("sales quote has expired")

	// ErrDuplicateQuote is returned when a supplier already has an open bid
	// on the RFQ
	ErrDuplicateQuote = errors.New("supplier already has a pending quote on this rfq")

	// ErrDuplicatePurchaseOrder is returned when the supplier quote already
	// has a purchase order
	ErrDuplicatePurchaseOrder = errors.New("purchase order already exists for this quote")

	// ErrQuoteNotAccepted is returned when a purchase order references a
	// quote that was not accepted
	ErrQuoteNotAccepted = errors.New("supplier quote is not accepted")

	// ErrShipmentQuantity is returned when a shipment exceeds the
	// remaining unshipped quantity
	ErrShipmentQuantity = errors.New("shipment quantity exceeds remaining quantity")

	// ErrFileTooLarge is returned when an upload exceeds the size limit
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
)

// TransitionError carries the validator's denial so handlers can map it
// onto the right status code.
type TransitionError struct {
	Entity string
	From   string
	To     string
	Reason domain.DenialReason
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s transition %s -> %s denied: %s", e.Entity, e.From, e.To, e.Reason)
}

// NewTransitionError wraps a denied decision
func NewTransitionError(entity, from, to string, reason domain.DenialReason) *TransitionError {
	return &TransitionError{Entity: entity, From: from, To: to, Reason: reason}
}

// AsTransitionError unwraps a TransitionError if err carries one
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
