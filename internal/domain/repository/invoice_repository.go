package repository

import (
	"context"
	"time"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for purchase invoice data
// operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.PurchaseInvoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PurchaseInvoice, error)
	// GetWithDetails loads the invoice with its items and payments
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.PurchaseInvoice, error)
	Update(ctx context.Context, invoice *entity.PurchaseInvoice) error
	// ReplaceItems swaps the full line item set of a draft invoice
	ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []entity.PurchaseInvoiceItem) error
	UpdateItem(ctx context.Context, item *entity.PurchaseInvoiceItem) error
	AddPayment(ctx context.Context, payment *entity.InvoicePayment) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.PurchaseInvoice, int64, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	SupplierID *uuid.UUID
	BranchID   *uuid.UUID
	Status     *int
	StartDate  *time.Time
	EndDate    *time.Time
}
