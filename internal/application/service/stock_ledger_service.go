package service

import (
	"context"
	"time"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	infraRepo "github.com/finchpos/ledger-api/internal/infrastructure/repository"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/google/uuid"
)

// StockLedgerService owns the per-(branch, product) stock journal
type StockLedgerService struct {
	stockRepo  repository.StockLedgerRepository
	tenantRepo repository.TenantRepository
	tx         repository.TxManager
}

// NewStockLedgerService creates a new stock ledger service
func NewStockLedgerService(
	stockRepo repository.StockLedgerRepository,
	tenantRepo repository.TenantRepository,
	tx repository.TxManager,
) *StockLedgerService {
	return &StockLedgerService{
		stockRepo:  stockRepo,
		tenantRepo: tenantRepo,
		tx:         tx,
	}
}

// RecordStockMovementInput represents one stock movement to record.
// Quantity is a positive count for fixed-direction types; for Adjustment it
// is the signed delta itself.
type RecordStockMovementInput struct {
	BranchID      uuid.UUID
	ProductID     uuid.UUID
	Type          enum.MovementType
	Quantity      int
	ReferenceType enum.ReferenceType
	ReferenceID   *uuid.UUID
	Reason        string
	ActorUserID   uuid.UUID
}

// RecordMovement validates and appends one stock ledger entry. The
// read-compute-append sequence runs under the subject lock inside a
// coordinator scope; when called from a composite operation it joins the
// caller's scope, so a later failure there discards this entry too.
func (s *StockLedgerService) RecordMovement(ctx context.Context, input *RecordStockMovementInput) (*entity.StockEntry, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	delta, err := movementDelta(input.Type, input.Quantity, stockLedger)
	if err != nil {
		return nil, err
	}
	if input.Type.RequiresReason() && input.Reason == "" {
		return nil, apperror.NewBadRequestError("Reason is required for manual movements")
	}

	var entry *entity.StockEntry
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.stockRepo.LockSubject(ctx, input.BranchID, input.ProductID); err != nil {
			return err
		}

		last, err := s.stockRepo.LastEntry(ctx, input.BranchID, input.ProductID)
		if err != nil {
			return err
		}
		before := 0
		seq := int64(1)
		if last != nil {
			before = last.BalanceAfter
			seq = last.Sequence + 1
		}
		after := before + delta

		if delta < 0 && after < 0 {
			settings, err := s.tenantRepo.GetSettings(ctx)
			if err != nil {
				return err
			}
			if !settings.AllowNegativeStock {
				return &apperror.InsufficientStockError{
					ProductID: input.ProductID,
					Requested: -delta,
					Available: before,
				}
			}
		}

		entry = &entity.StockEntry{
			TenantID:      tenantID,
			BranchID:      input.BranchID,
			ProductID:     input.ProductID,
			Sequence:      seq,
			Type:          input.Type,
			Quantity:      delta,
			BalanceBefore: before,
			BalanceAfter:  after,
			ReferenceType: input.ReferenceType,
			ReferenceID:   input.ReferenceID,
			Reason:        input.Reason,
			ActorUserID:   input.ActorUserID,
			RecordedAt:    time.Now().UTC(),
		}
		return s.stockRepo.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CurrentBalance returns the running quantity for a (branch, product)
// subject: the last entry's balance, or 0 when the subject has no history
func (s *StockLedgerService) CurrentBalance(ctx context.Context, branchID, productID uuid.UUID) (int, error) {
	last, err := s.stockRepo.LastEntry(ctx, branchID, productID)
	if err != nil {
		return 0, err
	}
	if last == nil {
		return 0, nil
	}
	return last.BalanceAfter, nil
}

// History returns the subject's entries in insertion order, paged
func (s *StockLedgerService) History(ctx context.Context, branchID, productID uuid.UUID, params *repository.LedgerFilterParams) (*pagination.PaginatedResult[entity.StockEntry], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	entries, total, err := s.stockRepo.History(ctx, branchID, productID, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(entries, pag), nil
}
