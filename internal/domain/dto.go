package domain

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs carry validator tags; response DTOs use ISO 8601 strings
// for timestamps.

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps list responses with paging metadata
type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// CreateRFQRequest is the customer-facing RFQ submission payload
type CreateRFQRequest struct {
	ProjectName          string `json:"projectName" validate:"required,max=200"`
	Material             string `json:"material" validate:"required,max=100"`
	MaterialGrade        string `json:"materialGrade" validate:"max=100"`
	Finishing            string `json:"finishing" validate:"max=100"`
	Tolerance            string `json:"tolerance" validate:"max=100"`
	ManufacturingProcess string `json:"manufacturingProcess" validate:"max=100"`
	Quantity             int    `json:"quantity" validate:"required,gt=0"`
	AllowInternational   bool   `json:"allowInternational"`
	Notes                string `json:"notes" validate:"max=5000"`
	DrawingFileID        string `json:"drawingFileId" validate:"omitempty,uuid"`
}

// CreateRFQForCustomerRequest is the admin variant that registers an RFQ
// on a customer's behalf
type CreateRFQForCustomerRequest struct {
	CreateRFQRequest
	CustomerID   string `json:"customerId" validate:"required,uuid"`
	CustomerName string `json:"customerName" validate:"max=200"`
}

// UpdateRFQRequest allows editing an RFQ while it is still submitted
type UpdateRFQRequest struct {
	ProjectName          *string `json:"projectName" validate:"omitempty,max=200"`
	Material             *string `json:"material" validate:"omitempty,max=100"`
	MaterialGrade        *string `json:"materialGrade" validate:"omitempty,max=100"`
	Finishing            *string `json:"finishing" validate:"omitempty,max=100"`
	Tolerance            *string `json:"tolerance" validate:"omitempty,max=100"`
	ManufacturingProcess *string `json:"manufacturingProcess" validate:"omitempty,max=100"`
	Quantity             *int    `json:"quantity" validate:"omitempty,gt=0"`
	AllowInternational   *bool   `json:"allowInternational"`
	Notes                *string `json:"notes" validate:"omitempty,max=5000"`
}

// DispatchRFQRequest forwards an admin-origin RFQ to selected suppliers
type DispatchRFQRequest struct {
	SupplierIDs []string `json:"supplierIds" validate:"required,min=1,dive,uuid"`
	Note        string   `json:"note" validate:"max=2000"`
}

// RFQDecisionRequest is the customer's accept or decline on a quoted RFQ
type RFQDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept decline"`
	Reason   string `json:"reason" validate:"max=2000"`
}

// RFQDecisionResponse carries the updated RFQ and, on acceptance, the
// order created from it
type RFQDecisionResponse struct {
	RFQ   RFQDTO    `json:"rfq"`
	Order *OrderDTO `json:"order,omitempty"`
}

// RFQDTO is the list/detail representation of an RFQ
type RFQDTO struct {
	ID                   uuid.UUID          `json:"id"`
	ReferenceNumber      string             `json:"referenceNumber"`
	CustomerID           uuid.UUID          `json:"customerId"`
	CustomerName         string             `json:"customerName,omitempty"`
	CompanyName          string             `json:"companyName,omitempty"`
	ProjectName          string             `json:"projectName"`
	Material             string             `json:"material"`
	MaterialGrade        string             `json:"materialGrade,omitempty"`
	Finishing            string             `json:"finishing,omitempty"`
	Tolerance            string             `json:"tolerance,omitempty"`
	ManufacturingProcess string             `json:"manufacturingProcess,omitempty"`
	Quantity             int                `json:"quantity"`
	AllowInternational   bool               `json:"allowInternational"`
	Notes                string             `json:"notes,omitempty"`
	Status               RFQStatus          `json:"status"`
	StatusLabel          string             `json:"statusLabel"`
	Source               RFQSource          `json:"source"`
	DrawingFileID        *uuid.UUID         `json:"drawingFileId,omitempty"`
	SalesQuote           *SalesQuoteDTO     `json:"salesQuote,omitempty"`
	SupplierQuotes       []SupplierQuoteDTO `json:"supplierQuotes,omitempty"`
	CreatedAt            string             `json:"createdAt"`
	UpdatedAt            string             `json:"updatedAt"`
}

// CreateSalesQuoteRequest is the admin quote sent to the customer.
// Re-quoting an already quoted RFQ replaces the existing quote.
type CreateSalesQuoteRequest struct {
	Amount                float64    `json:"amount" validate:"required,gt=0"`
	Currency              string     `json:"currency" validate:"omitempty,len=3"`
	ValidUntil            time.Time  `json:"validUntil" validate:"required"`
	EstimatedDeliveryDate *time.Time `json:"estimatedDeliveryDate"`
	Notes                 string     `json:"notes" validate:"max=5000"`
	QuoteFileID           string     `json:"quoteFileId" validate:"omitempty,uuid"`
}

// SalesQuoteDTO is the response shape of a sales quote
type SalesQuoteDTO struct {
	ID                    uuid.UUID  `json:"id"`
	RFQID                 uuid.UUID  `json:"rfqId"`
	Amount                float64    `json:"amount"`
	Currency              string     `json:"currency"`
	ValidUntil            string     `json:"validUntil"`
	EstimatedDeliveryDate *string    `json:"estimatedDeliveryDate,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
	QuoteFileID           *uuid.UUID `json:"quoteFileId,omitempty"`
	IsExpired             bool       `json:"isExpired"`
	CreatedAt             string     `json:"createdAt"`
}

// CreateSupplierQuoteRequest is a supplier's bid on an RFQ
type CreateSupplierQuoteRequest struct {
	Price        float64 `json:"price" validate:"required,gt=0"`
	Currency     string  `json:"currency" validate:"omitempty,len=3"`
	LeadTimeDays int     `json:"leadTimeDays" validate:"gte=0"`
	Notes        string  `json:"notes" validate:"max=5000"`
	QuoteFileID  string  `json:"quoteFileId" validate:"omitempty,uuid"`
}

// SupplierQuoteDecisionRequest is the admin's verdict on a supplier quote.
// The legacy "rejected" status value is accepted and stored as not_selected.
type SupplierQuoteDecisionRequest struct {
	Status        string `json:"status" validate:"required,oneof=accepted not_selected rejected"`
	AdminFeedback string `json:"adminFeedback" validate:"max=2000"`
}

// SupplierQuoteDTO is the response shape of a supplier quote
type SupplierQuoteDTO struct {
	ID               uuid.UUID           `json:"id"`
	RFQID            uuid.UUID           `json:"rfqId"`
	SupplierID       uuid.UUID           `json:"supplierId"`
	SupplierName     string              `json:"supplierName,omitempty"`
	CompanyName      string              `json:"companyName,omitempty"`
	Price            float64             `json:"price"`
	Currency         string              `json:"currency"`
	LeadTimeDays     int                 `json:"leadTimeDays"`
	Notes            string              `json:"notes,omitempty"`
	AdminFeedback    string              `json:"adminFeedback,omitempty"`
	QuoteFileID      *uuid.UUID          `json:"quoteFileId,omitempty"`
	Status           SupplierQuoteStatus `json:"status"`
	HasPurchaseOrder bool                `json:"hasPurchaseOrder"`
	CreatedAt        string              `json:"createdAt"`
}

// QuoteGroupDTO is one company's bucket on the quote comparison screen
type QuoteGroupDTO struct {
	CompanyName    string             `json:"companyName"`
	Representative SupplierQuoteDTO   `json:"representative"`
	Quotes         []SupplierQuoteDTO `json:"quotes"`
}

// AdvanceOrderStageRequest moves an order one stage forward
type AdvanceOrderStageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

// CreateShipmentRequest records a partial shipment on an order
type CreateShipmentRequest struct {
	Quantity        int        `json:"quantity" validate:"required,gt=0"`
	TrackingNumber  string     `json:"trackingNumber" validate:"max=100"`
	ShippingCarrier string     `json:"shippingCarrier" validate:"max=100"`
	ShippedAt       *time.Time `json:"shippedAt"`
}

// MarkOrderPaidRequest flips an order's payment status to paid
type MarkOrderPaidRequest struct {
	InvoiceFileID string `json:"invoiceFileId" validate:"omitempty,uuid"`
}

// OrderDTO is the response shape of an order
type OrderDTO struct {
	ID                uuid.UUID     `json:"id"`
	OrderNumber       string        `json:"orderNumber"`
	RFQID             uuid.UUID     `json:"rfqId"`
	CustomerID        uuid.UUID     `json:"customerId"`
	CustomerName      string        `json:"customerName,omitempty"`
	CompanyName       string        `json:"companyName,omitempty"`
	ProjectName       string        `json:"projectName,omitempty"`
	Amount            float64       `json:"amount"`
	Currency          string        `json:"currency"`
	Stage             OrderStage    `json:"stage"`
	StageLabel        string        `json:"stageLabel"`
	StageIndex        int           `json:"stageIndex"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	Quantity          int           `json:"quantity"`
	QuantityShipped   int           `json:"quantityShipped"`
	QuantityRemaining int           `json:"quantityRemaining"`
	InvoiceFileID     *uuid.UUID    `json:"invoiceFileId,omitempty"`
	IsArchived        bool          `json:"isArchived"`
	Shipments         []ShipmentDTO `json:"shipments,omitempty"`
	CreatedAt         string        `json:"createdAt"`
	UpdatedAt         string        `json:"updatedAt"`
}

// ShipmentDTO is the response shape of a shipment
type ShipmentDTO struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"orderId"`
	Quantity        int       `json:"quantity"`
	TrackingNumber  string    `json:"trackingNumber,omitempty"`
	ShippingCarrier string    `json:"shippingCarrier,omitempty"`
	ShippedAt       string    `json:"shippedAt"`
}

// CreatePurchaseOrderRequest places a purchase order against an accepted
// supplier quote
type CreatePurchaseOrderRequest struct {
	SupplierQuoteID string     `json:"supplierQuoteId" validate:"required,uuid"`
	Quantity        int        `json:"quantity" validate:"required,gt=0"`
	DeliveryDate    *time.Time `json:"deliveryDate"`
	Notes           string     `json:"notes" validate:"max=5000"`
	POFileID        string     `json:"poFileId" validate:"omitempty,uuid"`
}

// PurchaseOrderStatusRequest is the supplier's status report on a
// purchase order
type PurchaseOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=2000"`
}

// PurchaseOrderDTO is the response shape of a purchase order
type PurchaseOrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	PONumber        string              `json:"poNumber"`
	SupplierQuoteID uuid.UUID           `json:"supplierQuoteId"`
	RFQID           uuid.UUID           `json:"rfqId"`
	SupplierID      uuid.UUID           `json:"supplierId"`
	SupplierName    string              `json:"supplierName,omitempty"`
	CompanyName     string              `json:"companyName,omitempty"`
	Amount          float64             `json:"amount"`
	Currency        string              `json:"currency"`
	Quantity        int                 `json:"quantity"`
	DeliveryDate    *string             `json:"deliveryDate,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	POFileID        *uuid.UUID          `json:"poFileId,omitempty"`
	Status          PurchaseOrderStatus `json:"status"`
	CreatedAt       string              `json:"createdAt"`
	UpdatedAt       string              `json:"updatedAt"`
}

// CreateSupplierRequest creates a supplier directory profile
type CreateSupplierRequest struct {
	UserID                string   `json:"userId" validate:"omitempty,uuid"`
	Name                  string   `json:"name" validate:"required,max=200"`
	CompanyName           string   `json:"companyName" validate:"max=200"`
	Email                 string   `json:"email" validate:"omitempty,email"`
	Phone                 string   `json:"phone" validate:"max=50"`
	Address               string   `json:"address" validate:"max=500"`
	City                  string   `json:"city" validate:"max=100"`
	Country               string   `json:"country" validate:"max=100"`
	Website               string   `json:"website" validate:"omitempty,url"`
	Description           string   `json:"description" validate:"max=5000"`
	Capabilities          []string `json:"capabilities"`
	Certifications        []string `json:"certifications"`
	Industries            []string `json:"industries"`
	EmployeeCount         int      `json:"employeeCount" validate:"gte=0"`
	YearEstablished       int      `json:"yearEstablished" validate:"omitempty,gte=1800"`
	EmergencyCapability   bool     `json:"emergencyCapability"`
	InternationalShipping bool     `json:"internationalShipping"`
}

// UpdateSupplierRequest edits a supplier directory profile
type UpdateSupplierRequest struct {
	Name                  *string   `json:"name" validate:"omitempty,max=200"`
	CompanyName           *string   `json:"companyName" validate:"omitempty,max=200"`
	Email                 *string   `json:"email" validate:"omitempty,email"`
	Phone                 *string   `json:"phone" validate:"omitempty,max=50"`
	Address               *string   `json:"address" validate:"omitempty,max=500"`
	City                  *string   `json:"city" validate:"omitempty,max=100"`
	Country               *string   `json:"country" validate:"omitempty,max=100"`
	Website               *string   `json:"website" validate:"omitempty,url"`
	Description           *string   `json:"description" validate:"omitempty,max=5000"`
	Capabilities          *[]string `json:"capabilities"`
	Certifications        *[]string `json:"certifications"`
	Industries            *[]string `json:"industries"`
	EmployeeCount         *int      `json:"employeeCount" validate:"omitempty,gte=0"`
	YearEstablished       *int      `json:"yearEstablished" validate:"omitempty,gte=1800"`
	EmergencyCapability   *bool     `json:"emergencyCapability"`
	InternationalShipping *bool     `json:"internationalShipping"`
}

// SupplierDTO is the directory representation of a supplier
type SupplierDTO struct {
	ID                    uuid.UUID               `json:"id"`
	Name                  string                  `json:"name"`
	CompanyName           string                  `json:"companyName,omitempty"`
	Email                 string                  `json:"email,omitempty"`
	Phone                 string                  `json:"phone,omitempty"`
	Address               string                  `json:"address,omitempty"`
	City                  string                  `json:"city,omitempty"`
	Country               string                  `json:"country,omitempty"`
	Website               string                  `json:"website,omitempty"`
	Description           string                  `json:"description,omitempty"`
	Capabilities          []string                `json:"capabilities"`
	Certifications        []string                `json:"certifications"`
	Industries            []string                `json:"industries"`
	EmployeeCount         int                     `json:"employeeCount"`
	YearEstablished       int                     `json:"yearEstablished,omitempty"`
	EmergencyCapability   bool                    `json:"emergencyCapability"`
	InternationalShipping bool                    `json:"internationalShipping"`
	IsActive              bool                    `json:"isActive"`
	ProfileCompletion     int                     `json:"profileCompletion"`
	ProfileBucket         ProfileCompletionBucket `json:"profileBucket"`
	CreatedAt             string                  `json:"createdAt"`
	UpdatedAt             string                  `json:"updatedAt"`
}

// SupplierStatsDTO aggregates a supplier's quoting history
type SupplierStatsDTO struct {
	TotalQuotes    int64   `json:"totalQuotes"`
	AcceptedQuotes int64   `json:"acceptedQuotes"`
	PendingQuotes  int64   `json:"pendingQuotes"`
	WinRate        float64 `json:"winRate"`
	OpenPOs        int64   `json:"openPurchaseOrders"`
}

// SendMessageRequest posts a message into a thread
type SendMessageRequest struct {
	RecipientID string `json:"recipientId" validate:"required,uuid"`
	ThreadID    string `json:"threadId" validate:"omitempty,uuid"`
	Category    string `json:"category" validate:"omitempty,oneof=general rfq order purchase_order"`
	EntityID    string `json:"entityId" validate:"omitempty,uuid"`
	Content     string `json:"content" validate:"required,max=10000"`
	FileID      string `json:"fileId" validate:"omitempty,uuid"`
}

// MessageDTO is the response shape of a message
type MessageDTO struct {
	ID           uuid.UUID       `json:"id"`
	ThreadID     uuid.UUID       `json:"threadId"`
	SenderID     uuid.UUID       `json:"senderId"`
	SenderName   string          `json:"senderName,omitempty"`
	RecipientID  uuid.UUID       `json:"recipientId"`
	Category     MessageCategory `json:"category"`
	EntityID     *uuid.UUID      `json:"entityId,omitempty"`
	Content      string          `json:"content"`
	AttachmentID *uuid.UUID      `json:"attachmentId,omitempty"`
	IsRead       bool            `json:"isRead"`
	CreatedAt    string          `json:"createdAt"`
}

// ThreadSummaryDTO is one row in the inbox view
type ThreadSummaryDTO struct {
	ThreadID        uuid.UUID       `json:"threadId"`
	Category        MessageCategory `json:"category"`
	CounterpartID   uuid.UUID       `json:"counterpartId"`
	CounterpartName string          `json:"counterpartName,omitempty"`
	EntityID        *uuid.UUID      `json:"entityId,omitempty"`
	LastMessage     string          `json:"lastMessage"`
	LastMessageAt   string          `json:"lastMessageAt"`
	UnreadCount     int             `json:"unreadCount"`
}

// NotificationDTO is the response shape of a notification
type NotificationDTO struct {
	ID         uuid.UUID        `json:"id"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message,omitempty"`
	EntityType string           `json:"entityType,omitempty"`
	EntityID   *uuid.UUID       `json:"entityId,omitempty"`
	IsRead     bool             `json:"isRead"`
	ReadAt     *string          `json:"readAt,omitempty"`
	CreatedAt  string           `json:"createdAt"`
}

// ActivityDTO is the response shape of an activity log row
type ActivityDTO struct {
	ID         uuid.UUID `json:"id"`
	TargetType string    `json:"targetType"`
	TargetID   uuid.UUID `json:"targetId"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	ActorID    uuid.UUID `json:"actorId"`
	ActorName  string    `json:"actorName,omitempty"`
	CreatedAt  string    `json:"createdAt"`
}

// FileDTO is the metadata response after an upload
type FileDTO struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   string    `json:"createdAt"`
}

// UserDTO is the response shape of a portal user
type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	Role        UserRole  `json:"role"`
	CompanyName string    `json:"companyName,omitempty"`
	IsActive    bool      `json:"isActive"`
	LastLoginAt *string   `json:"lastLoginAt,omitempty"`
}
