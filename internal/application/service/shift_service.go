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

// ShiftService governs the cashier shift lifecycle: open, close,
// force-close, and handover. Expected balances are always derived from the
// cash ledger, never tracked as a mutable counter.
type ShiftService struct {
	shiftRepo repository.ShiftRepository
	cashRepo  repository.CashLedgerRepository
	userRepo  repository.UserRepository
	tx        repository.TxManager
	audit     *AuditService
}

// NewShiftService creates a new shift service
func NewShiftService(
	shiftRepo repository.ShiftRepository,
	cashRepo repository.CashLedgerRepository,
	userRepo repository.UserRepository,
	tx repository.TxManager,
	audit *AuditService,
) *ShiftService {
	return &ShiftService{
		shiftRepo: shiftRepo,
		cashRepo:  cashRepo,
		userRepo:  userRepo,
		tx:        tx,
		audit:     audit,
	}
}

// OpenShift opens a shift for (branch, user). At most one open shift may
// exist per pair.
func (s *ShiftService) OpenShift(ctx context.Context, branchID, userID uuid.UUID, openingBalance decimal.Decimal) (*entity.Shift, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if openingBalance.IsNegative() {
		return nil, apperror.NewBadRequestError("Opening balance cannot be negative")
	}

	var shift *entity.Shift
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// the branch lock serializes shift transitions with each other and
		// with cash movements; the partial unique index on open shifts backs
		// this up at the schema level
		if err := s.cashRepo.LockSubject(ctx, branchID); err != nil {
			return err
		}

		existing, err := s.shiftRepo.GetOpen(ctx, branchID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &apperror.ShiftAlreadyOpenError{BranchID: branchID, UserID: userID, ShiftID: existing.ID}
		}

		shift = &entity.Shift{
			TenantID:       tenantID,
			BranchID:       branchID,
			UserID:         userID,
			Status:         enum.ShiftStatusOpen,
			OpeningBalance: openingBalance,
			OpenedAt:       time.Now().UTC(),
		}
		return s.shiftRepo.Create(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "shift.open", "shift", shift.ID, nil, shift, userID)
	return shift, nil
}

// CloseShift closes an open shift, reconciling counted cash against the
// ledger-derived expectation. A non-zero difference is recorded, not
// rejected.
func (s *ShiftService) CloseShift(ctx context.Context, shiftID uuid.UUID, closingBalance decimal.Decimal, notes string, actorUserID uuid.UUID) (*entity.Shift, error) {
	var shift *entity.Shift
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		shift, err = s.getOpenShiftForUpdate(ctx, shiftID, "close")
		if err != nil {
			return err
		}
		if shift.UserID != actorUserID {
			return apperror.ErrForbidden
		}
		// hold the branch lock so no sale lands on the shift between the
		// reconciliation sum and the status change
		if err := s.cashRepo.LockSubject(ctx, shift.BranchID); err != nil {
			return err
		}

		expected, err := s.expectedBalance(ctx, shift)
		if err != nil {
			return err
		}
		difference := closingBalance.Sub(expected)
		now := time.Now().UTC()

		shift.Status = enum.ShiftStatusClosed
		shift.ClosingBalance = &closingBalance
		shift.ExpectedBalance = &expected
		shift.Difference = &difference
		shift.Notes = notes
		shift.ClosedAt = &now
		return s.shiftRepo.Update(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "shift.close", "shift", shift.ID, nil, shift, actorUserID)
	return shift, nil
}

// ForceClose closes a stale or abandoned shift on behalf of a privileged
// actor. When no counted balance is supplied the ledger-derived expectation
// stands in for it.
func (s *ShiftService) ForceClose(ctx context.Context, shiftID uuid.UUID, reason string, actualBalance *decimal.Decimal, adminUserID uuid.UUID) (*entity.Shift, error) {
	if reason == "" {
		return nil, apperror.NewBadRequestError("Force-close reason is required")
	}

	admin, err := s.userRepo.GetByID(ctx, adminUserID)
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	var shift *entity.Shift
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		shift, err = s.getOpenShiftForUpdate(ctx, shiftID, "force-close")
		if err != nil {
			return err
		}
		if err := s.cashRepo.LockSubject(ctx, shift.BranchID); err != nil {
			return err
		}

		expected, err := s.expectedBalance(ctx, shift)
		if err != nil {
			return err
		}
		closing := expected
		if actualBalance != nil {
			closing = *actualBalance
		}
		difference := closing.Sub(expected)
		now := time.Now().UTC()

		shift.Status = enum.ShiftStatusForceClosed
		shift.ClosingBalance = &closing
		shift.ExpectedBalance = &expected
		shift.Difference = &difference
		shift.ClosedAt = &now
		shift.ForceClosedByUserID = &adminUserID
		shift.ForceCloseReason = reason
		return s.shiftRepo.Update(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "shift.force_close", "shift", shift.ID, nil, shift, adminUserID)
	return shift, nil
}

// Handover passes the register to another cashier without interrupting the
// cash trail: the acting user's shift closes at the counted balance and a
// continuation opens under the new user with that balance carried forward.
func (s *ShiftService) Handover(ctx context.Context, shiftID, toUserID uuid.UUID, currentBalance decimal.Decimal, notes string, actorUserID uuid.UUID) (*entity.Shift, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	var continuation *entity.Shift
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		shift, err := s.getOpenShiftForUpdate(ctx, shiftID, "handover")
		if err != nil {
			return err
		}
		if shift.UserID != actorUserID {
			return apperror.ErrForbidden
		}
		if toUserID == actorUserID {
			return apperror.NewBadRequestError("Cannot hand a shift over to its own user")
		}
		if err := s.cashRepo.LockSubject(ctx, shift.BranchID); err != nil {
			return err
		}

		existing, err := s.shiftRepo.GetOpen(ctx, shift.BranchID, toUserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &apperror.ShiftAlreadyOpenError{BranchID: shift.BranchID, UserID: toUserID, ShiftID: existing.ID}
		}

		expected, err := s.expectedBalance(ctx, shift)
		if err != nil {
			return err
		}
		difference := currentBalance.Sub(expected)
		now := time.Now().UTC()

		shift.Status = enum.ShiftStatusClosed
		shift.ClosingBalance = &currentBalance
		shift.ExpectedBalance = &expected
		shift.Difference = &difference
		shift.Notes = notes
		shift.ClosedAt = &now
		shift.HandedOverToUserID = &toUserID
		shift.HandoverBalance = &currentBalance
		shift.HandoverAt = &now
		if err := s.shiftRepo.Update(ctx, shift); err != nil {
			return err
		}

		continuation = &entity.Shift{
			TenantID:             tenantID,
			BranchID:             shift.BranchID,
			UserID:               toUserID,
			Status:               enum.ShiftStatusOpen,
			OpeningBalance:       currentBalance,
			OpenedAt:             now,
			HandedOverFromUserID: &actorUserID,
			HandoverBalance:      &currentBalance,
			HandoverAt:           &now,
		}
		return s.shiftRepo.Create(ctx, continuation)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "shift.handover", "shift", continuation.ID, nil, continuation, actorUserID)
	return continuation, nil
}

// GetShift retrieves a shift by ID
func (s *ShiftService) GetShift(ctx context.Context, id uuid.UUID) (*entity.Shift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.NewNotFoundError("Shift")
	}
	return shift, nil
}

// ListShifts lists shifts with filtering
func (s *ShiftService) ListShifts(ctx context.Context, params *repository.ShiftFilterParams) (*pagination.PaginatedResult[entity.Shift], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	shifts, total, err := s.shiftRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(shifts, pag), nil
}

// StaleShift is an open shift that has exceeded a staleness threshold
type StaleShift struct {
	Shift    entity.Shift `json:"shift"`
	OpenFor  string       `json:"open_for"`
	Severity string       `json:"severity"` // warning, critical
}

// ListStaleShifts returns open shifts past the warning threshold, flagging
// those past the critical one. Candidates for ForceClose.
func (s *ShiftService) ListStaleShifts(ctx context.Context, warningAfter, criticalAfter time.Duration) ([]StaleShift, error) {
	now := time.Now().UTC()
	shifts, err := s.shiftRepo.ListStale(ctx, now.Add(-warningAfter))
	if err != nil {
		return nil, err
	}

	stale := make([]StaleShift, 0, len(shifts))
	for _, shift := range shifts {
		openFor := now.Sub(shift.OpenedAt)
		severity := "warning"
		if openFor >= criticalAfter {
			severity = "critical"
		}
		stale = append(stale, StaleShift{
			Shift:    shift,
			OpenFor:  openFor.Round(time.Minute).String(),
			Severity: severity,
		})
	}
	return stale, nil
}

// getOpenShiftForUpdate loads a shift and rejects any transition attempted
// from a terminal state
func (s *ShiftService) getOpenShiftForUpdate(ctx context.Context, shiftID uuid.UUID, operation string) (*entity.Shift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.NewNotFoundError("Shift")
	}
	if shift.Status != enum.ShiftStatusOpen {
		return nil, &apperror.InvalidShiftStateError{
			ShiftID:   shift.ID,
			Status:    shift.Status.String(),
			Operation: operation,
		}
	}
	return shift, nil
}

// expectedBalance derives the reconciliation expectation from the cash
// ledger: opening balance plus the signed sum of entries recorded against
// the shift
func (s *ShiftService) expectedBalance(ctx context.Context, shift *entity.Shift) (decimal.Decimal, error) {
	sum, err := s.cashRepo.SumByShift(ctx, shift.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return shift.OpeningBalance.Add(sum), nil
}
