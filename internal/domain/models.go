package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate assigns an ID when none was provided. Keeps the models
// portable across postgres and the sqlite test database.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole represents the role of a portal user
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"
	RoleSupplier UserRole = "supplier"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleSupplier:
		return true
	}
	return false
}

// User represents a portal account. Tokens are issued by the external
// identity provider; this table mirrors the claims the API cares about.
type User struct {
	BaseModel
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string     `json:"displayName"`
	Role        UserRole   `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	CompanyName string     `json:"companyName"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// RFQStatus represents the lifecycle status of a request for quote
type RFQStatus string

const (
	RFQStatusSubmitted       RFQStatus = "submitted"
	RFQStatusQuoted          RFQStatus = "quoted"
	RFQStatusSentToSuppliers RFQStatus = "sent_to_suppliers"
	RFQStatusAccepted        RFQStatus = "accepted"
	RFQStatusDeclined        RFQStatus = "declined"
)

// IsValid checks if the RFQ status is valid
func (s RFQStatus) IsValid() bool {
	switch s {
	case RFQStatusSubmitted, RFQStatusQuoted, RFQStatusSentToSuppliers,
		RFQStatusAccepted, RFQStatusDeclined:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed
func (s RFQStatus) IsTerminal() bool {
	return s == RFQStatusAccepted || s == RFQStatusDeclined
}

// DisplayName returns a human-readable label for the status
func (s RFQStatus) DisplayName() string {
	names := map[RFQStatus]string{
		RFQStatusSubmitted:       "Submitted",
		RFQStatusQuoted:          "Quoted",
		RFQStatusSentToSuppliers: "Sent to suppliers",
		RFQStatusAccepted:        "Accepted",
		RFQStatusDeclined:        "Declined",
	}
	if name, ok := names[s]; ok {
		return name
	}
	return string(s)
}

// RFQSource distinguishes customer-submitted RFQs from ones the sales
// team registers on a customer's behalf and forwards to suppliers.
type RFQSource string

const (
	RFQSourceCustomer RFQSource = "customer"
	RFQSourceAdmin    RFQSource = "admin"
)

// RFQ represents a customer's request for quote on a manufactured part
type RFQ struct {
	BaseModel
	ReferenceNumber      string     `gorm:"uniqueIndex;not null" json:"referenceNumber"`
	CustomerID           uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	CustomerName         string     `json:"customerName"`
	CompanyName          string     `json:"companyName"`
	ProjectName          string     `gorm:"not null" json:"projectName"`
	Material             string     `json:"material"`
	MaterialGrade        string     `json:"materialGrade"`
	Finishing            string     `json:"finishing"`
	Tolerance            string     `json:"tolerance"`
	ManufacturingProcess string     `json:"manufacturingProcess"`
	Quantity             int        `gorm:"not null" json:"quantity"`
	AllowInternational   bool       `gorm:"default:false" json:"allowInternational"`
	Notes                string     `gorm:"type:text" json:"notes,omitempty"`
	Status               RFQStatus  `gorm:"type:varchar(30);not null;default:'submitted';index" json:"status"`
	Source               RFQSource  `gorm:"type:varchar(20);not null;default:'customer'" json:"source"`
	DrawingFileID        *uuid.UUID `gorm:"type:uuid" json:"drawingFileId,omitempty"`

	SalesQuote     *SalesQuote     `gorm:"foreignKey:RFQID" json:"salesQuote,omitempty"`
	SupplierQuotes []SupplierQuote `gorm:"foreignKey:RFQID" json:"supplierQuotes,omitempty"`
}

// SalesQuote is the quote the sales team sends back to the customer for an RFQ.
// One active sales quote per RFQ; re-quoting replaces the row in place.
type SalesQuote struct {
	BaseModel
	RFQID                 uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"rfqId"`
	Amount                float64    `gorm:"not null" json:"amount"`
	Currency              string     `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	ValidUntil            time.Time  `gorm:"not null" json:"validUntil"`
	EstimatedDeliveryDate *time.Time `json:"estimatedDeliveryDate,omitempty"`
	Notes                 string     `gorm:"type:text" json:"notes,omitempty"`
	QuoteFileID           *uuid.UUID `gorm:"type:uuid" json:"quoteFileId,omitempty"`
	CreatedByID           uuid.UUID  `gorm:"type:uuid" json:"createdById"`
	IsExpiredFlag         bool       `gorm:"column:is_expired;default:false" json:"isExpired"`
}

// IsExpired reports whether the quote's validity window has passed
func (q *SalesQuote) IsExpired(now time.Time) bool {
	return q.IsExpiredFlag || now.After(q.ValidUntil)
}

// SupplierQuoteStatus represents the status of a supplier's bid on an RFQ
type SupplierQuoteStatus string

const (
	SupplierQuoteStatusPending     SupplierQuoteStatus = "pending"
	SupplierQuoteStatusAccepted    SupplierQuoteStatus = "accepted"
	SupplierQuoteStatusNotSelected SupplierQuoteStatus = "not_selected"
)

// IsValid checks if the supplier quote status is valid
func (s SupplierQuoteStatus) IsValid() bool {
	switch s {
	case SupplierQuoteStatusPending, SupplierQuoteStatusAccepted, SupplierQuoteStatusNotSelected:
		return true
	}
	return false
}

// NormalizeSupplierQuoteStatus maps the legacy "rejected" spelling onto
// not_selected. Only normalized values are ever stored.
func NormalizeSupplierQuoteStatus(raw string) SupplierQuoteStatus {
	if raw == "rejected" {
		return SupplierQuoteStatusNotSelected
	}
	return SupplierQuoteStatus(raw)
}

// SupplierQuote represents a supplier's bid on an RFQ
type SupplierQuote struct {
	BaseModel
	RFQID         uuid.UUID           `gorm:"type:uuid;index;not null" json:"rfqId"`
	SupplierID    uuid.UUID           `gorm:"type:uuid;index;not null" json:"supplierId"`
	SupplierName  string              `json:"supplierName"`
	CompanyName   string              `json:"companyName"`
	Price         float64             `gorm:"not null" json:"price"`
	Currency      string              `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	LeadTimeDays  int                 `json:"leadTimeDays"`
	Notes         string              `gorm:"type:text" json:"notes,omitempty"`
	AdminFeedback string              `gorm:"type:text" json:"adminFeedback,omitempty"`
	QuoteFileID   *uuid.UUID          `gorm:"type:uuid" json:"quoteFileId,omitempty"`
	Status        SupplierQuoteStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
}

// OrderStage represents an order's position in the manufacturing sequence
type OrderStage string

const (
	StagePending             OrderStage = "pending"
	StageMaterialProcurement OrderStage = "material_procurement"
	StageManufacturing       OrderStage = "manufacturing"
	StageFinishing           OrderStage = "finishing"
	StageQualityCheck        OrderStage = "quality_check"
	StagePacking             OrderStage = "packing"
	StageShipped             OrderStage = "shipped"
	StageDelivered           OrderStage = "delivered"
)

// ManufacturingStages is the fixed production sequence for customer orders
var ManufacturingStages = []OrderStage{
	StagePending,
	StageMaterialProcurement,
	StageManufacturing,
	StageFinishing,
	StageQualityCheck,
	StagePacking,
	StageShipped,
	StageDelivered,
}

// StageIndex returns the position of the stage in the manufacturing
// sequence, or -1 if the stage is unknown.
func (s OrderStage) StageIndex() int {
	for i, stage := range ManufacturingStages {
		if stage == s {
			return i
		}
	}
	return -1
}

// IsValid checks if the order stage is valid
func (s OrderStage) IsValid() bool {
	return s.StageIndex() >= 0
}

// IsTerminal reports whether the stage ends the sequence
func (s OrderStage) IsTerminal() bool {
	return s == StageDelivered
}

// DisplayName returns a human-readable label for the stage
func (s OrderStage) DisplayName() string {
	names := map[OrderStage]string{
		StagePending:             "Pending",
		StageMaterialProcurement: "Material procurement",
		StageManufacturing:       "Manufacturing",
		StageFinishing:           "Finishing",
		StageQualityCheck:        "Quality check",
		StagePacking:             "Packing",
		StageShipped:             "Shipped",
		StageDelivered:           "Delivered",
	}
	if name, ok := names[s]; ok {
		return name
	}
	return string(s)
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusUnpaid || s == PaymentStatusPaid
}

// Order represents a confirmed customer order created from an accepted RFQ
type Order struct {
	BaseModel
	OrderNumber     string        `gorm:"uniqueIndex;not null" json:"orderNumber"`
	RFQID           uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"rfqId"`
	CustomerID      uuid.UUID     `gorm:"type:uuid;index;not null" json:"customerId"`
	CustomerName    string        `json:"customerName"`
	CompanyName     string        `json:"companyName"`
	ProjectName     string        `json:"projectName"`
	Amount          float64       `json:"amount"`
	Currency        string        `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	Stage           OrderStage    `gorm:"type:varchar(30);not null;default:'pending';index" json:"stage"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'" json:"paymentStatus"`
	Quantity        int           `gorm:"not null" json:"quantity"`
	QuantityShipped int           `gorm:"not null;default:0" json:"quantityShipped"`
	InvoiceFileID   *uuid.UUID    `gorm:"type:uuid" json:"invoiceFileId,omitempty"`
	IsArchived      bool          `gorm:"default:false;index" json:"isArchived"`

	Shipments []Shipment `gorm:"foreignKey:OrderID" json:"shipments,omitempty"`
}

// QuantityRemaining returns how many units are still unshipped,
// never below zero even for over-shipped legacy rows
func (o *Order) QuantityRemaining() int {
	return max(o.Quantity-o.QuantityShipped, 0)
}

// Shipment is an append-only partial shipment record on an order
type Shipment struct {
	BaseModel
	OrderID         uuid.UUID `gorm:"type:uuid;index;not null" json:"orderId"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	TrackingNumber  string    `json:"trackingNumber"`
	ShippingCarrier string    `json:"shippingCarrier"`
	ShippedAt       time.Time `json:"shippedAt"`
}

// PurchaseOrderStatus represents the status of a purchase order sent to a
// supplier. After acceptance the status walks the same manufacturing stage
// names as orders, but suppliers may report several stages at once.
type PurchaseOrderStatus string

const (
	POStatusPending  PurchaseOrderStatus = "pending"
	POStatusAccepted PurchaseOrderStatus = "accepted"
	POStatusDeclined PurchaseOrderStatus = "declined"
)

// PurchaseOrderProgression is the forward-only sequence an accepted
// purchase order moves through. Index 0 is the accepted state itself.
var PurchaseOrderProgression = []PurchaseOrderStatus{
	POStatusAccepted,
	PurchaseOrderStatus(StageMaterialProcurement),
	PurchaseOrderStatus(StageManufacturing),
	PurchaseOrderStatus(StageFinishing),
	PurchaseOrderStatus(StageQualityCheck),
	PurchaseOrderStatus(StagePacking),
	PurchaseOrderStatus(StageShipped),
	PurchaseOrderStatus(StageDelivered),
}

// ProgressionIndex returns the position in the accepted-PO sequence,
// or -1 for pending/declined/unknown statuses.
func (s PurchaseOrderStatus) ProgressionIndex() int {
	for i, status := range PurchaseOrderProgression {
		if status == s {
			return i
		}
	}
	return -1
}

// IsValid checks if the purchase order status is valid
func (s PurchaseOrderStatus) IsValid() bool {
	if s == POStatusPending || s == POStatusDeclined {
		return true
	}
	return s.ProgressionIndex() >= 0
}

// IsTerminal reports whether no further transitions are allowed
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == POStatusDeclined || s == PurchaseOrderStatus(StageDelivered)
}

// PurchaseOrder represents an order placed with a supplier against an
// accepted supplier quote
type PurchaseOrder struct {
	BaseModel
	PONumber        string              `gorm:"uniqueIndex;not null" json:"poNumber"`
	SupplierQuoteID uuid.UUID           `gorm:"type:uuid;uniqueIndex;not null" json:"supplierQuoteId"`
	RFQID           uuid.UUID           `gorm:"type:uuid;index;not null" json:"rfqId"`
	SupplierID      uuid.UUID           `gorm:"type:uuid;index;not null" json:"supplierId"`
	SupplierName    string              `json:"supplierName"`
	CompanyName     string              `json:"companyName"`
	Amount          float64             `json:"amount"`
	Currency        string              `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	Quantity        int                 `json:"quantity"`
	DeliveryDate    *time.Time          `json:"deliveryDate,omitempty"`
	Notes           string              `gorm:"type:text" json:"notes,omitempty"`
	POFileID        *uuid.UUID          `gorm:"type:uuid" json:"poFileId,omitempty"`
	Status          PurchaseOrderStatus `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`
}

// Supplier represents a supplier directory profile
type Supplier struct {
	BaseModel
	UserID                *uuid.UUID     `gorm:"type:uuid;index" json:"userId,omitempty"`
	Name                  string         `gorm:"not null" json:"name"`
	CompanyName           string         `json:"companyName"`
	Email                 string         `gorm:"index" json:"email"`
	Phone                 string         `json:"phone"`
	Address               string         `json:"address,omitempty"`
	City                  string         `json:"city"`
	Country               string         `json:"country"`
	Website               string         `json:"website,omitempty"`
	Description           string         `gorm:"type:text" json:"description,omitempty"`
	Capabilities          pq.StringArray `gorm:"type:text[]" json:"capabilities"`
	Certifications        pq.StringArray `gorm:"type:text[]" json:"certifications"`
	Industries            pq.StringArray `gorm:"type:text[]" json:"industries"`
	EmployeeCount         int            `json:"employeeCount"`
	YearEstablished       int            `json:"yearEstablished"`
	EmergencyCapability   bool           `gorm:"default:false" json:"emergencyCapability"`
	InternationalShipping bool           `gorm:"default:false" json:"internationalShipping"`
	IsActive              bool           `gorm:"default:true;index" json:"isActive"`
}

// MessageCategory groups message threads by the entity they concern
type MessageCategory string

const (
	MessageCategoryGeneral MessageCategory = "general"
	MessageCategoryRFQ     MessageCategory = "rfq"
	MessageCategoryOrder   MessageCategory = "order"
	MessageCategoryPO      MessageCategory = "purchase_order"
)

// IsValid checks if the message category is valid
func (c MessageCategory) IsValid() bool {
	switch c {
	case MessageCategoryGeneral, MessageCategoryRFQ, MessageCategoryOrder, MessageCategoryPO:
		return true
	}
	return false
}

// Message is one entry in an append-only thread between the sales team
// and a single counterparty
type Message struct {
	BaseModel
	ThreadID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"threadId"`
	SenderID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"senderId"`
	SenderName   string          `json:"senderName"`
	RecipientID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"recipientId"`
	Category     MessageCategory `gorm:"type:varchar(30);not null;default:'general'" json:"category"`
	EntityID     *uuid.UUID      `gorm:"type:uuid" json:"entityId,omitempty"`
	Content      string          `gorm:"type:text;not null" json:"content"`
	AttachmentID *uuid.UUID      `gorm:"type:uuid" json:"attachmentId,omitempty"`
	IsRead       bool            `gorm:"default:false;index" json:"isRead"`
}

// File represents an uploaded file's metadata. The binary lives in the
// configured storage backend under StoragePath.
type File struct {
	BaseModel
	Filename     string    `gorm:"not null" json:"filename"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	StoragePath  string    `gorm:"not null" json:"-"`
	UploadedByID uuid.UUID `gorm:"type:uuid;index" json:"uploadedById"`
}

// NotificationType categorizes persisted notifications
type NotificationType string

const (
	NotificationQuoteReceived  NotificationType = "quote_received"
	NotificationQuoteAccepted  NotificationType = "quote_accepted"
	NotificationQuoteDeclined  NotificationType = "quote_declined"
	NotificationQuoteExpired   NotificationType = "quote_expired"
	NotificationRFQDispatched  NotificationType = "rfq_dispatched"
	NotificationPOAssigned     NotificationType = "po_assigned"
	NotificationPOStatusChange NotificationType = "po_status_change"
	NotificationOrderStage     NotificationType = "order_stage"
	NotificationOrderShipped   NotificationType = "order_shipped"
	NotificationOrderPaid      NotificationType = "order_paid"
	NotificationNewMessage     NotificationType = "new_message"
)

// Notification is a persisted per-user notification row
type Notification struct {
	BaseModel
	UserID     uuid.UUID        `gorm:"type:uuid;index;not null" json:"userId"`
	Type       NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title      string           `gorm:"not null" json:"title"`
	Message    string           `gorm:"type:text" json:"message"`
	EntityType string           `json:"entityType,omitempty"`
	EntityID   *uuid.UUID       `gorm:"type:uuid" json:"entityId,omitempty"`
	IsRead     bool             `gorm:"default:false;index" json:"isRead"`
	ReadAt     *time.Time       `json:"readAt,omitempty"`
}

// Activity records a lifecycle event on an RFQ, order or purchase order
type Activity struct {
	BaseModel
	TargetType string    `gorm:"index:idx_activity_target;not null" json:"targetType"`
	TargetID   uuid.UUID `gorm:"type:uuid;index:idx_activity_target;not null" json:"targetId"`
	Title      string    `gorm:"not null" json:"title"`
	Body       string    `gorm:"type:text" json:"body,omitempty"`
	ActorID    uuid.UUID `gorm:"type:uuid" json:"actorId"`
	ActorName  string    `json:"actorName"`
}
