package mapper

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestToRFQDTODerivedFields(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	rfq := &domain.RFQ{
		ReferenceNumber: "RFQ-2026-0007",
		Status:          domain.RFQStatusSentToSuppliers,
		SalesQuote: &domain.SalesQuote{
			Amount:     1200,
			ValidUntil: time.Now().Add(24 * time.Hour),
		},
	}
	rfq.CreatedAt = created
	rfq.UpdatedAt = created

	dto := ToRFQDTO(rfq)
	assert.Equal(t, "Sent to suppliers", dto.StatusLabel)
	assert.Equal(t, "2026-02-01T09:30:00Z", dto.CreatedAt)
	if assert.NotNil(t, dto.SalesQuote) {
		assert.False(t, dto.SalesQuote.IsExpired)
	}
}

func TestToSalesQuoteDTOExpiry(t *testing.T) {
	stale := &domain.SalesQuote{ValidUntil: time.Now().Add(-time.Hour)}
	assert.True(t, ToSalesQuoteDTO(stale).IsExpired)

	flagged := &domain.SalesQuote{ValidUntil: time.Now().Add(time.Hour), IsExpiredFlag: true}
	assert.True(t, ToSalesQuoteDTO(flagged).IsExpired)
}

func TestToOrderDTODerivedFields(t *testing.T) {
	order := &domain.Order{
		Stage:           domain.StageQualityCheck,
		Quantity:        100,
		QuantityShipped: 40,
	}

	dto := ToOrderDTO(order)
	assert.Equal(t, domain.StageQualityCheck.StageIndex(), dto.StageIndex)
	assert.Equal(t, "Quality check", dto.StageLabel)
	assert.Equal(t, 60, dto.QuantityRemaining)
	assert.Empty(t, dto.Shipments)
}

func TestToSupplierDTOProfileCompletion(t *testing.T) {
	supplier := &domain.Supplier{
		Name:           "Precision Works",
		CompanyName:    "Precision Works GmbH",
		Email:          "sales@precision.example",
		Phone:          "+49 711 0000",
		City:           "Stuttgart",
		Country:        "Germany",
		Capabilities:   pq.StringArray{"cnc_milling"},
		Certifications: pq.StringArray{"ISO9001"},
		Description:    "Tight tolerance machining",
	}

	dto := ToSupplierDTO(supplier)
	assert.Equal(t, 100, dto.ProfileCompletion)
	assert.Equal(t, domain.ProfileComplete, dto.ProfileBucket)

	sparse := &domain.Supplier{Name: "New Shop", CompanyName: "New Shop AS"}
	dto = ToSupplierDTO(sparse)
	assert.Equal(t, domain.ProfileIncomplete, dto.ProfileBucket)
}

func TestToNotificationDTOReadAt(t *testing.T) {
	unread := &domain.Notification{Title: "Quote received"}
	assert.Nil(t, ToNotificationDTO(unread).ReadAt)

	readAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	read := &domain.Notification{Title: "Quote received", IsRead: true, ReadAt: &readAt}
	dto := ToNotificationDTO(read)
	if assert.NotNil(t, dto.ReadAt) {
		assert.Equal(t, "2026-03-01T08:00:00Z", *dto.ReadAt)
	}
}
