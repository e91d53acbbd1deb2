package mapper

import (
	"time"

	"github.com/partbridge/marketplace-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToRFQDTO converts an RFQ to its API representation
func ToRFQDTO(rfq *domain.RFQ) domain.RFQDTO {
	dto := domain.RFQDTO{
		ID:                   rfq.ID,
		ReferenceNumber:      rfq.ReferenceNumber,
		CustomerID:           rfq.CustomerID,
		CustomerName:         rfq.CustomerName,
		CompanyName:          rfq.CompanyName,
		ProjectName:          rfq.ProjectName,
		Material:             rfq.Material,
		MaterialGrade:        rfq.MaterialGrade,
		Finishing:            rfq.Finishing,
		Tolerance:            rfq.Tolerance,
		ManufacturingProcess: rfq.ManufacturingProcess,
		Quantity:             rfq.Quantity,
		AllowInternational:   rfq.AllowInternational,
		Notes:                rfq.Notes,
		Status:               rfq.Status,
		StatusLabel:          rfq.Status.DisplayName(),
		Source:               rfq.Source,
		DrawingFileID:        rfq.DrawingFileID,
		CreatedAt:            formatTime(rfq.CreatedAt),
		UpdatedAt:            formatTime(rfq.UpdatedAt),
	}

	if rfq.SalesQuote != nil {
		quote := ToSalesQuoteDTO(rfq.SalesQuote)
		dto.SalesQuote = &quote
	}
	for i := range rfq.SupplierQuotes {
		dto.SupplierQuotes = append(dto.SupplierQuotes, ToSupplierQuoteDTO(&rfq.SupplierQuotes[i], false))
	}

	return dto
}

// ToSalesQuoteDTO converts a SalesQuote to its API representation
func ToSalesQuoteDTO(quote *domain.SalesQuote) domain.SalesQuoteDTO {
	return domain.SalesQuoteDTO{
		ID:                    quote.ID,
		RFQID:                 quote.RFQID,
		Amount:                quote.Amount,
		Currency:              quote.Currency,
		ValidUntil:            formatTime(quote.ValidUntil),
		EstimatedDeliveryDate: formatTimePtr(quote.EstimatedDeliveryDate),
		Notes:                 quote.Notes,
		QuoteFileID:           quote.QuoteFileID,
		IsExpired:             quote.IsExpired(time.Now()),
		CreatedAt:             formatTime(quote.CreatedAt),
	}
}

// ToSupplierQuoteDTO converts a SupplierQuote to its API representation.
// hasPurchaseOrder is derived by lookup, never stored.
func ToSupplierQuoteDTO(quote *domain.SupplierQuote, hasPurchaseOrder bool) domain.SupplierQuoteDTO {
	return domain.SupplierQuoteDTO{
		ID:               quote.ID,
		RFQID:            quote.RFQID,
		SupplierID:       quote.SupplierID,
		SupplierName:     quote.SupplierName,
		CompanyName:      quote.CompanyName,
		Price:            quote.Price,
		Currency:         quote.Currency,
		LeadTimeDays:     quote.LeadTimeDays,
		Notes:            quote.Notes,
		AdminFeedback:    quote.AdminFeedback,
		QuoteFileID:      quote.QuoteFileID,
		Status:           quote.Status,
		HasPurchaseOrder: hasPurchaseOrder,
		CreatedAt:        formatTime(quote.CreatedAt),
	}
}

// ToQuoteGroupDTO converts a quote comparison group
func ToQuoteGroupDTO(group domain.QuoteGroup) domain.QuoteGroupDTO {
	dto := domain.QuoteGroupDTO{
		CompanyName:    group.CompanyName,
		Representative: ToSupplierQuoteDTO(&group.Representative, false),
	}
	for i := range group.Quotes {
		dto.Quotes = append(dto.Quotes, ToSupplierQuoteDTO(&group.Quotes[i], false))
	}
	return dto
}

// ToOrderDTO converts an Order to its API representation
func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	dto := domain.OrderDTO{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		RFQID:             order.RFQID,
		CustomerID:        order.CustomerID,
		CustomerName:      order.CustomerName,
		CompanyName:       order.CompanyName,
		ProjectName:       order.ProjectName,
		Amount:            order.Amount,
		Currency:          order.Currency,
		Stage:             order.Stage,
		StageLabel:        order.Stage.DisplayName(),
		StageIndex:        order.Stage.StageIndex(),
		PaymentStatus:     order.PaymentStatus,
		Quantity:          order.Quantity,
		QuantityShipped:   order.QuantityShipped,
		QuantityRemaining: order.QuantityRemaining(),
		InvoiceFileID:     order.InvoiceFileID,
		IsArchived:        order.IsArchived,
		CreatedAt:         formatTime(order.CreatedAt),
		UpdatedAt:         formatTime(order.UpdatedAt),
	}
	for i := range order.Shipments {
		dto.Shipments = append(dto.Shipments, ToShipmentDTO(&order.Shipments[i]))
	}
	return dto
}

// ToShipmentDTO converts a Shipment to its API representation
func ToShipmentDTO(shipment *domain.Shipment) domain.ShipmentDTO {
	return domain.ShipmentDTO{
		ID:              shipment.ID,
		OrderID:         shipment.OrderID,
		Quantity:        shipment.Quantity,
		TrackingNumber:  shipment.TrackingNumber,
		ShippingCarrier: shipment.ShippingCarrier,
		ShippedAt:       formatTime(shipment.ShippedAt),
	}
}

// ToPurchaseOrderDTO converts a PurchaseOrder to its API representation
func ToPurchaseOrderDTO(po *domain.PurchaseOrder) domain.PurchaseOrderDTO {
	return domain.PurchaseOrderDTO{
		ID:              po.ID,
		PONumber:        po.PONumber,
		SupplierQuoteID: po.SupplierQuoteID,
		RFQID:           po.RFQID,
		SupplierID:      po.SupplierID,
		SupplierName:    po.SupplierName,
		CompanyName:     po.CompanyName,
		Amount:          po.Amount,
		Currency:        po.Currency,
		Quantity:        po.Quantity,
		DeliveryDate:    formatTimePtr(po.DeliveryDate),
		Notes:           po.Notes,
		POFileID:        po.POFileID,
		Status:          po.Status,
		CreatedAt:       formatTime(po.CreatedAt),
		UpdatedAt:       formatTime(po.UpdatedAt),
	}
}

// ToSupplierDTO converts a Supplier to its directory representation
func ToSupplierDTO(supplier *domain.Supplier) domain.SupplierDTO {
	completion := supplier.ProfileCompletionPercent()
	return domain.SupplierDTO{
		ID:                    supplier.ID,
		Name:                  supplier.Name,
		CompanyName:           supplier.CompanyName,
		Email:                 supplier.Email,
		Phone:                 supplier.Phone,
		Address:               supplier.Address,
		City:                  supplier.City,
		Country:               supplier.Country,
		Website:               supplier.Website,
		Description:           supplier.Description,
		Capabilities:          supplier.Capabilities,
		Certifications:        supplier.Certifications,
		Industries:            supplier.Industries,
		EmployeeCount:         supplier.EmployeeCount,
		YearEstablished:       supplier.YearEstablished,
		EmergencyCapability:   supplier.EmergencyCapability,
		InternationalShipping: supplier.InternationalShipping,
		IsActive:              supplier.IsActive,
		ProfileCompletion:     completion,
		ProfileBucket:         domain.BucketForCompletion(completion),
		CreatedAt:             formatTime(supplier.CreatedAt),
		UpdatedAt:             formatTime(supplier.UpdatedAt),
	}
}

// ToMessageDTO converts a Message to its API representation
func ToMessageDTO(message *domain.Message) domain.MessageDTO {
	return domain.MessageDTO{
		ID:           message.ID,
		ThreadID:     message.ThreadID,
		SenderID:     message.SenderID,
		SenderName:   message.SenderName,
		RecipientID:  message.RecipientID,
		Category:     message.Category,
		EntityID:     message.EntityID,
		Content:      message.Content,
		AttachmentID: message.AttachmentID,
		IsRead:       message.IsRead,
		CreatedAt:    formatTime(message.CreatedAt),
	}
}

// ToNotificationDTO converts a Notification to its API representation
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         notification.ID,
		Type:       notification.Type,
		Title:      notification.Title,
		Message:    notification.Message,
		EntityType: notification.EntityType,
		EntityID:   notification.EntityID,
		IsRead:     notification.IsRead,
		ReadAt:     formatTimePtr(notification.ReadAt),
		CreatedAt:  formatTime(notification.CreatedAt),
	}
}

// ToActivityDTO converts an Activity to its API representation
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:         activity.ID,
		TargetType: activity.TargetType,
		TargetID:   activity.TargetID,
		Title:      activity.Title,
		Body:       activity.Body,
		ActorID:    activity.ActorID,
		ActorName:  activity.ActorName,
		CreatedAt:  formatTime(activity.CreatedAt),
	}
}

// ToFileDTO converts a File to its API representation
func ToFileDTO(file *domain.File) domain.FileDTO {
	return domain.FileDTO{
		ID:          file.ID,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		CreatedAt:   formatTime(file.CreatedAt),
	}
}

// ToUserDTO converts a User to its API representation
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		CompanyName: user.CompanyName,
		IsActive:    user.IsActive,
		LastLoginAt: formatTimePtr(user.LastLoginAt),
	}
}
