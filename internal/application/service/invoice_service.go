package service

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	infraRepo "github.com/finchpos/ledger-api/internal/infrastructure/repository"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/finchpos/ledger-api/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService runs the supplier purchase invoice workflow. Confirmation
// is the point where paper becomes inventory: every line item lands in the
// stock ledger as a Receiving entry, atomically with the status change.
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	tenantRepo   repository.TenantRepository
	stockLedger  *StockLedgerService
	cashLedger   *CashLedgerService
	tx           repository.TxManager
	audit        *AuditService
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	tenantRepo repository.TenantRepository,
	stockLedger *StockLedgerService,
	cashLedger *CashLedgerService,
	tx repository.TxManager,
	audit *AuditService,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		tenantRepo:   tenantRepo,
		stockLedger:  stockLedger,
		cashLedger:   cashLedger,
		tx:           tx,
		audit:        audit,
	}
}

// InvoiceItemInput is one requested line item
type InvoiceItemInput struct {
	ProductID     uuid.UUID
	Quantity      int
	PurchasePrice decimal.Decimal
}

// CreateInvoiceInput represents a new draft invoice
type CreateInvoiceInput struct {
	BranchID    uuid.UUID
	SupplierID  uuid.UUID
	InvoiceDate time.Time
	Items       []InvoiceItemInput
	ActorUserID uuid.UUID
}

// CreateInvoice creates a draft invoice. Drafts have no ledger effect.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.PurchaseInvoice, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	supplier, err := s.supplierRepo.GetByID(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}

	items, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	invoiceDate := input.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now().UTC()
	}

	invoice := &entity.PurchaseInvoice{
		TenantID:      tenantID,
		InvoiceNumber: utils.GenerateReferenceNo("PINV"),
		BranchID:      input.BranchID,
		SupplierID:    input.SupplierID,
		InvoiceDate:   invoiceDate,
		Status:        enum.InvoiceStatusDraft,
		CreatedByID:   input.ActorUserID,
		Items:         items,
	}
	if err := s.applyTotals(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "invoice.create", "purchase_invoice", invoice.ID, nil, invoice, input.ActorUserID)
	return invoice, nil
}

// UpdateItems replaces the line items of a draft invoice and recomputes its
// totals. Any other status rejects the edit.
func (s *InvoiceService) UpdateItems(ctx context.Context, invoiceID uuid.UUID, itemInputs []InvoiceItemInput, actorUserID uuid.UUID) (*entity.PurchaseInvoice, error) {
	var invoice *entity.PurchaseInvoice
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.GetWithDetails(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if !invoice.Status.IsEditable() {
			return &apperror.InvoiceNotEditableError{
				InvoiceID: invoice.ID,
				Status:    invoice.Status.String(),
				Operation: "edit items",
			}
		}

		items, err := s.buildItems(ctx, itemInputs)
		if err != nil {
			return err
		}
		if err := s.invoiceRepo.ReplaceItems(ctx, invoice.ID, items); err != nil {
			return err
		}

		invoice.Items = items
		if err := s.applyTotals(ctx, invoice); err != nil {
			return err
		}
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "invoice.update_items", "purchase_invoice", invoice.ID, nil, invoice, actorUserID)
	return invoice, nil
}

// ConfirmInvoice transitions a draft to Confirmed and receives every line
// item into the branch stock ledger. All entries and the status change
// commit or roll back as one unit.
func (s *InvoiceService) ConfirmInvoice(ctx context.Context, invoiceID, actorUserID uuid.UUID) (*entity.PurchaseInvoice, error) {
	var invoice *entity.PurchaseInvoice
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.GetWithDetails(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.Status != enum.InvoiceStatusDraft {
			return &apperror.InvoiceNotEditableError{
				InvoiceID: invoice.ID,
				Status:    invoice.Status.String(),
				Operation: "confirm",
			}
		}
		if len(invoice.Items) == 0 {
			return apperror.NewBadRequestError("Cannot confirm an invoice with no items")
		}

		for _, item := range itemsInLockOrder(invoice.Items) {
			_, err := s.stockLedger.RecordMovement(ctx, &RecordStockMovementInput{
				BranchID:      invoice.BranchID,
				ProductID:     item.ProductID,
				Type:          enum.MovementReceiving,
				Quantity:      item.Quantity,
				ReferenceType: enum.ReferencePurchaseInvoice,
				ReferenceID:   &invoice.ID,
				ActorUserID:   actorUserID,
			})
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		invoice.Status = enum.InvoiceStatusConfirmed
		invoice.ConfirmedByID = &actorUserID
		invoice.ConfirmedAt = &now
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "invoice.confirm", "purchase_invoice", invoice.ID, nil, invoice, actorUserID)
	return invoice, nil
}

// AddPaymentInput represents one payment against a confirmed invoice
type AddPaymentInput struct {
	Amount          decimal.Decimal
	Method          enum.PaymentMethod
	PaymentDate     time.Time
	ReferenceNumber string
	ActorUserID     uuid.UUID
}

// AddPayment applies a payment to an invoice that accepts one. Overpayment
// is rejected. Cash payments additionally debit the branch register as a
// SupplierPayment movement, inside the same scope.
func (s *InvoiceService) AddPayment(ctx context.Context, invoiceID uuid.UUID, input *AddPaymentInput) (*entity.PurchaseInvoice, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.NewBadRequestError("Payment amount must be positive")
	}

	var invoice *entity.PurchaseInvoice
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.GetWithDetails(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if !invoice.Status.AcceptsPayments() {
			return &apperror.InvoiceNotEditableError{
				InvoiceID: invoice.ID,
				Status:    invoice.Status.String(),
				Operation: "add payment",
			}
		}
		if input.Amount.GreaterThan(invoice.AmountDue()) {
			return apperror.NewBadRequestError("Payment exceeds the amount due")
		}

		paymentDate := input.PaymentDate
		if paymentDate.IsZero() {
			paymentDate = time.Now().UTC()
		}
		payment := &entity.InvoicePayment{
			InvoiceID:       invoice.ID,
			Amount:          input.Amount,
			PaymentDate:     paymentDate,
			Method:          input.Method,
			ReferenceNumber: input.ReferenceNumber,
			RecordedByID:    input.ActorUserID,
		}
		if err := s.invoiceRepo.AddPayment(ctx, payment); err != nil {
			return err
		}

		if input.Method == enum.PaymentMethodCash {
			_, err := s.cashLedger.RecordMovement(ctx, &RecordCashMovementInput{
				BranchID:      invoice.BranchID,
				Type:          enum.MovementSupplierPayment,
				Amount:        input.Amount,
				ReferenceType: enum.ReferencePurchaseInvoice,
				ReferenceID:   &invoice.ID,
				ActorUserID:   input.ActorUserID,
			})
			if err != nil {
				return err
			}
		}

		invoice.AmountPaid = invoice.AmountPaid.Add(input.Amount)
		if invoice.AmountDue().IsZero() {
			invoice.Status = enum.InvoiceStatusPaid
		} else if invoice.Status == enum.InvoiceStatusConfirmed {
			invoice.Status = enum.InvoiceStatusPartiallyPaid
		}
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "invoice.add_payment", "purchase_invoice", invoice.ID, nil, invoice, input.ActorUserID)
	return invoice, nil
}

// ReturnItemInput is one requested return line
type ReturnItemInput struct {
	ItemID   uuid.UUID
	Quantity int
}

// ReturnItems sends goods back to the supplier. Each returned quantity is
// bounded by what the line item has left unreturned, and every accepted
// line produces a Return stock entry.
func (s *InvoiceService) ReturnItems(ctx context.Context, invoiceID uuid.UUID, returns []ReturnItemInput, reason string, actorUserID uuid.UUID) (*entity.PurchaseInvoice, error) {
	if len(returns) == 0 {
		return nil, apperror.NewBadRequestError("At least one return line is required")
	}

	var invoice *entity.PurchaseInvoice
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.GetWithDetails(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if !invoice.Status.AcceptsReturns() {
			return &apperror.InvoiceNotEditableError{
				InvoiceID: invoice.ID,
				Status:    invoice.Status.String(),
				Operation: "return items",
			}
		}

		itemsByID := make(map[uuid.UUID]*entity.PurchaseInvoiceItem, len(invoice.Items))
		for i := range invoice.Items {
			itemsByID[invoice.Items[i].ID] = &invoice.Items[i]
		}

		type returnLine struct {
			item *entity.PurchaseInvoiceItem
			qty  int
		}
		lines := make([]returnLine, 0, len(returns))
		for _, ret := range returns {
			item, ok := itemsByID[ret.ItemID]
			if !ok {
				return apperror.NewNotFoundError("Invoice item")
			}
			if ret.Quantity <= 0 {
				return apperror.NewBadRequestError("Return quantity must be positive")
			}
			remaining := item.Quantity - item.ReturnedQuantity
			if ret.Quantity > remaining {
				return apperror.NewBadRequestError("Return quantity exceeds the unreturned quantity")
			}
			item.ReturnedQuantity += ret.Quantity
			lines = append(lines, returnLine{item: item, qty: ret.Quantity})
		}
		// product lock order, same as confirmation
		sort.SliceStable(lines, func(i, j int) bool {
			return bytes.Compare(lines[i].item.ProductID[:], lines[j].item.ProductID[:]) < 0
		})

		for _, line := range lines {
			_, err := s.stockLedger.RecordMovement(ctx, &RecordStockMovementInput{
				BranchID:      invoice.BranchID,
				ProductID:     line.item.ProductID,
				Type:          enum.MovementReturn,
				Quantity:      line.qty,
				ReferenceType: enum.ReferencePurchaseInvoice,
				ReferenceID:   &invoice.ID,
				Reason:        reason,
				ActorUserID:   actorUserID,
			})
			if err != nil {
				return err
			}
			if err := s.invoiceRepo.UpdateItem(ctx, line.item); err != nil {
				return err
			}
		}

		fullyReturned := true
		for i := range invoice.Items {
			if invoice.Items[i].ReturnedQuantity < invoice.Items[i].Quantity {
				fullyReturned = false
				break
			}
		}
		if fullyReturned {
			invoice.Status = enum.InvoiceStatusReturned
		} else {
			invoice.Status = enum.InvoiceStatusPartiallyReturned
		}
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "invoice.return_items", "purchase_invoice", invoice.ID, nil, invoice, actorUserID)
	return invoice, nil
}

// CancelInvoice voids an invoice. A draft cancels outright; a confirmed
// invoice cancels only while untouched by payments or returns, writing
// compensating Return entries for the received stock.
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string, actorUserID uuid.UUID) (*entity.PurchaseInvoice, error) {
	var invoice *entity.PurchaseInvoice
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.GetWithDetails(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}

		switch invoice.Status {
		case enum.InvoiceStatusDraft:
			// no ledger effect to unwind
		case enum.InvoiceStatusConfirmed:
			if !invoice.AmountPaid.IsZero() {
				return &apperror.InvoiceNotEditableError{
					InvoiceID: invoice.ID,
					Status:    invoice.Status.String(),
					Operation: "cancel with payments applied",
				}
			}
			for _, item := range itemsInLockOrder(invoice.Items) {
				if item.ReturnedQuantity > 0 {
					return &apperror.InvoiceNotEditableError{
						InvoiceID: invoice.ID,
						Status:    invoice.Status.String(),
						Operation: "cancel with returns recorded",
					}
				}
				_, err := s.stockLedger.RecordMovement(ctx, &RecordStockMovementInput{
					BranchID:      invoice.BranchID,
					ProductID:     item.ProductID,
					Type:          enum.MovementReturn,
					Quantity:      item.Quantity,
					ReferenceType: enum.ReferencePurchaseInvoice,
					ReferenceID:   &invoice.ID,
					Reason:        "invoice cancelled: " + reason,
					ActorUserID:   actorUserID,
				})
				if err != nil {
					return err
				}
			}
		default:
			return &apperror.InvoiceNotEditableError{
				InvoiceID: invoice.ID,
				Status:    invoice.Status.String(),
				Operation: "cancel",
			}
		}

		invoice.Status = enum.InvoiceStatusCancelled
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "invoice.cancel", "purchase_invoice", invoice.ID, nil, invoice, actorUserID)
	return invoice, nil
}

// GetInvoice retrieves an invoice with its items and payments
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.PurchaseInvoice, error) {
	invoice, err := s.invoiceRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.PurchaseInvoice], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// itemsInLockOrder returns the items sorted by product ID. Composite
// operations must acquire product locks in one global order or two invoices
// sharing products can deadlock each other.
func itemsInLockOrder(items []entity.PurchaseInvoiceItem) []*entity.PurchaseInvoiceItem {
	ordered := make([]*entity.PurchaseInvoiceItem, len(items))
	for i := range items {
		ordered[i] = &items[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].ProductID[:], ordered[j].ProductID[:]) < 0
	})
	return ordered
}

// buildItems validates line inputs against the product catalogue and prices
// them
func (s *InvoiceService) buildItems(ctx context.Context, inputs []InvoiceItemInput) ([]entity.PurchaseInvoiceItem, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewBadRequestError("At least one line item is required")
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Line item quantity must be positive")
		}
		if in.PurchasePrice.IsNegative() {
			return nil, apperror.NewBadRequestError("Purchase price cannot be negative")
		}
		ids = append(ids, in.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
	}

	items := make([]entity.PurchaseInvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		if !known[in.ProductID] {
			return nil, apperror.NewNotFoundError("Product")
		}
		items = append(items, entity.PurchaseInvoiceItem{
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			PurchasePrice: in.PurchasePrice,
			Total:         in.PurchasePrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		})
	}
	return items, nil
}

// applyTotals recomputes subtotal, tax, and total from the invoice's items
// using the tenant's tax settings
func (s *InvoiceService) applyTotals(ctx context.Context, invoice *entity.PurchaseInvoice) error {
	subtotal := decimal.Zero
	for _, item := range invoice.Items {
		subtotal = subtotal.Add(item.Total)
	}

	tax := decimal.Zero
	settings, err := s.tenantRepo.GetSettings(ctx)
	if err != nil {
		return err
	}
	if settings.IsTaxEnabled {
		// TaxRate is a percentage, e.g. 16 for 16% VAT
		tax = subtotal.Mul(settings.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	}

	invoice.Subtotal = subtotal
	invoice.TaxAmount = tax
	invoice.Total = subtotal.Add(tax)
	return nil
}
