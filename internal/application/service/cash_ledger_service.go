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
	"github.com/shopspring/decimal"
)

// CashLedgerService owns the per-branch cash register journal
type CashLedgerService struct {
	cashRepo   repository.CashLedgerRepository
	shiftRepo  repository.ShiftRepository
	tenantRepo repository.TenantRepository
	tx         repository.TxManager
}

// NewCashLedgerService creates a new cash ledger service
func NewCashLedgerService(
	cashRepo repository.CashLedgerRepository,
	shiftRepo repository.ShiftRepository,
	tenantRepo repository.TenantRepository,
	tx repository.TxManager,
) *CashLedgerService {
	return &CashLedgerService{
		cashRepo:   cashRepo,
		shiftRepo:  shiftRepo,
		tenantRepo: tenantRepo,
		tx:         tx,
	}
}

// RecordCashMovementInput represents one register movement to record.
// Amount is positive for fixed-direction types; for Adjustment it is the
// signed delta itself.
type RecordCashMovementInput struct {
	BranchID      uuid.UUID
	Type          enum.MovementType
	Amount        decimal.Decimal
	ReferenceType enum.ReferenceType
	ReferenceID   *uuid.UUID
	Reason        string
	ActorUserID   uuid.UUID
}

// RecordMovement validates and appends one cash ledger entry. Sales and
// refunds require an open shift for the acting user at the branch; the
// entry is stamped with whatever open shift exists so close reconciliation
// can scope it.
func (s *CashLedgerService) RecordMovement(ctx context.Context, input *RecordCashMovementInput) (*entity.CashEntry, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	delta, err := cashMovementDelta(input.Type, input.Amount)
	if err != nil {
		return nil, err
	}
	if input.Type.RequiresReason() && input.Reason == "" {
		return nil, apperror.NewBadRequestError("Reason is required for manual movements")
	}

	var entry *entity.CashEntry
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.cashRepo.LockSubject(ctx, input.BranchID); err != nil {
			return err
		}

		shift, err := s.shiftRepo.GetOpen(ctx, input.BranchID, input.ActorUserID)
		if err != nil {
			return err
		}
		if input.Type.RequiresOpenShift() && shift == nil {
			return &apperror.NoActiveShiftError{BranchID: input.BranchID, UserID: input.ActorUserID}
		}

		last, err := s.cashRepo.LastEntry(ctx, input.BranchID)
		if err != nil {
			return err
		}
		before := decimal.Zero
		seq := int64(1)
		if last != nil {
			before = last.BalanceAfter
			seq = last.Sequence + 1
		}
		after := before.Add(delta)

		if delta.IsNegative() && after.IsNegative() {
			settings, err := s.tenantRepo.GetSettings(ctx)
			if err != nil {
				return err
			}
			if !settings.AllowNegativeCash {
				return &apperror.CashInsufficientBalanceError{
					BranchID:  input.BranchID,
					Requested: delta.Neg(),
					Available: before,
				}
			}
		}

		var shiftID *uuid.UUID
		if shift != nil {
			shiftID = &shift.ID
		}
		entry = &entity.CashEntry{
			TenantID:      tenantID,
			BranchID:      input.BranchID,
			Sequence:      seq,
			Type:          input.Type,
			Amount:        delta,
			BalanceBefore: before,
			BalanceAfter:  after,
			ShiftID:       shiftID,
			ReferenceType: input.ReferenceType,
			ReferenceID:   input.ReferenceID,
			Reason:        input.Reason,
			ActorUserID:   input.ActorUserID,
			RecordedAt:    time.Now().UTC(),
		}
		return s.cashRepo.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CurrentBalance returns the running register balance for a branch
func (s *CashLedgerService) CurrentBalance(ctx context.Context, branchID uuid.UUID) (decimal.Decimal, error) {
	last, err := s.cashRepo.LastEntry(ctx, branchID)
	if err != nil {
		return decimal.Zero, err
	}
	if last == nil {
		return decimal.Zero, nil
	}
	return last.BalanceAfter, nil
}

// History returns the branch's entries in insertion order, paged
func (s *CashLedgerService) History(ctx context.Context, branchID uuid.UUID, params *repository.LedgerFilterParams) (*pagination.PaginatedResult[entity.CashEntry], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	entries, total, err := s.cashRepo.History(ctx, branchID, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(entries, pag), nil
}
