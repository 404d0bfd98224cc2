package entity

import (
	"time"

	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseInvoice is a supplier invoice. Draft invoices are freely editable;
// once confirmed the line items are immutable and stock has been received,
// so later corrections go through payments and return entries only.
type PurchaseInvoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:ux_invoices_tenant_number,priority:1" json:"tenant_id"`
	InvoiceNumber string             `gorm:"size:100;not null;uniqueIndex:ux_invoices_tenant_number,priority:2" json:"invoice_number"`
	BranchID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"branch_id"`
	SupplierID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"supplier_id"`
	InvoiceDate   time.Time          `gorm:"type:date;not null" json:"invoice_date"`
	Status        enum.InvoiceStatus `gorm:"default:0;index" json:"status"`
	Subtotal      decimal.Decimal    `gorm:"type:decimal(15,2);default:0" json:"subtotal"`
	TaxAmount     decimal.Decimal    `gorm:"type:decimal(15,2);default:0" json:"tax_amount"`
	Total         decimal.Decimal    `gorm:"type:decimal(15,2);default:0" json:"total"`
	AmountPaid    decimal.Decimal    `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`

	CreatedByID   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by_id"`
	ConfirmedByID *uuid.UUID `gorm:"type:uuid" json:"confirmed_by_id,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Branch   Branch                `gorm:"foreignKey:BranchID" json:"-"`
	Supplier Supplier              `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Items    []PurchaseInvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments []InvoicePayment      `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// AmountDue returns the outstanding balance on the invoice
func (i *PurchaseInvoice) AmountDue() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *PurchaseInvoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PurchaseInvoice model
func (PurchaseInvoice) TableName() string {
	return "purchase_invoices"
}

// PurchaseInvoiceItem is a line item on a supplier invoice
type PurchaseInvoiceItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	PurchasePrice    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"purchase_price"`
	Total            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total"`
	ReturnedQuantity int             `gorm:"default:0" json:"returned_quantity"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Relationships
	Invoice PurchaseInvoice `gorm:"foreignKey:InvoiceID" json:"-"`
	Product Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (it *PurchaseInvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PurchaseInvoiceItem model
func (PurchaseInvoiceItem) TableName() string {
	return "purchase_invoice_items"
}

// InvoicePayment is one payment applied against a confirmed invoice
type InvoicePayment struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount          decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentDate     time.Time          `gorm:"not null" json:"payment_date"`
	Method          enum.PaymentMethod `gorm:"size:50;not null" json:"method"`
	ReferenceNumber string             `gorm:"size:100" json:"reference_number,omitempty"`
	RecordedByID    uuid.UUID          `gorm:"type:uuid;not null" json:"recorded_by_id"`
	CreatedAt       time.Time          `json:"created_at"`

	// Relationships
	Invoice PurchaseInvoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *InvoicePayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoicePayment model
func (InvoicePayment) TableName() string {
	return "invoice_payments"
}
