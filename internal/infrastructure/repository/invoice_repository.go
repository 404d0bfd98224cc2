package repository

import (
	"context"
	"errors"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	domainRepo "github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new purchase invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.PurchaseInvoice) error {
	return conn(ctx, r.db).WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PurchaseInvoice, error) {
	var invoice entity.PurchaseInvoice
	err := conn(ctx, r.db).WithContext(ctx).
		Scopes(TenantScope(ctx)).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.PurchaseInvoice, error) {
	var invoice entity.PurchaseInvoice
	err := conn(ctx, r.db).WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Items").Preload("Payments").Preload("Supplier").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Update saves the invoice row only; items and payments have their own
// write paths
func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.PurchaseInvoice) error {
	return conn(ctx, r.db).WithContext(ctx).Omit(clause.Associations).Save(invoice).Error
}

// ReplaceItems swaps the full line item set. Only valid while the invoice
// is a draft; the service enforces that.
func (r *invoiceRepository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []entity.PurchaseInvoiceItem) error {
	db := conn(ctx, r.db).WithContext(ctx)

	if err := db.Where("invoice_id = ?", invoiceID).Delete(&entity.PurchaseInvoiceItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
	}
	return db.Create(&items).Error
}

func (r *invoiceRepository) UpdateItem(ctx context.Context, item *entity.PurchaseInvoiceItem) error {
	return conn(ctx, r.db).WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *invoiceRepository) AddPayment(ctx context.Context, payment *entity.InvoicePayment) error {
	return conn(ctx, r.db).WithContext(ctx).Create(payment).Error
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.PurchaseInvoice, int64, error) {
	var invoices []entity.PurchaseInvoice
	var total int64

	query := conn(ctx, r.db).WithContext(ctx).
		Model(&entity.PurchaseInvoice{}).
		Scopes(TenantScope(ctx))

	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}
	if params.BranchID != nil {
		query = query.Where("branch_id = ?", *params.BranchID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.StartDate != nil {
		query = query.Where("invoice_date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("invoice_date <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("invoice_date DESC").
		Find(&invoices).Error

	return invoices, total, err
}
