package request

import (
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItemRequest is one line item on an invoice submission
type InvoiceItemRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	Quantity      int             `json:"quantity" binding:"required,min=1"`
	PurchasePrice decimal.Decimal `json:"purchase_price" binding:"required"`
}

// CreateInvoiceRequest represents a draft invoice creation submission
type CreateInvoiceRequest struct {
	BranchID    uuid.UUID            `json:"branch_id" binding:"required"`
	SupplierID  uuid.UUID            `json:"supplier_id" binding:"required"`
	InvoiceDate string               `json:"invoice_date"`
	Items       []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateInvoiceItemsRequest replaces a draft invoice's line items
type UpdateInvoiceItemsRequest struct {
	Items []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// AddInvoicePaymentRequest represents a payment against an invoice
type AddInvoicePaymentRequest struct {
	Amount          decimal.Decimal    `json:"amount" binding:"required"`
	Method          enum.PaymentMethod `json:"method" binding:"required"`
	PaymentDate     string             `json:"payment_date"`
	ReferenceNumber string             `json:"reference_number" binding:"omitempty,max=100"`
}

// ReturnInvoiceItemRequest is one return line against an invoice item
type ReturnInvoiceItemRequest struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// ReturnInvoiceItemsRequest sends goods on an invoice back to the supplier
type ReturnInvoiceItemsRequest struct {
	Items  []ReturnInvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	Reason string                     `json:"reason" binding:"omitempty,max=500"`
}

// CancelInvoiceRequest voids an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// InvoiceFilterRequest represents invoice list filter parameters
type InvoiceFilterRequest struct {
	SupplierID string `form:"supplier_id"`
	BranchID   string `form:"branch_id"`
	Status     *int   `form:"status"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
