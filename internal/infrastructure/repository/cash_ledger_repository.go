package repository

import (
	"context"
	"errors"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	domainRepo "github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type cashLedgerRepository struct {
	db *gorm.DB
}

// NewCashLedgerRepository creates a new cash ledger repository
func NewCashLedgerRepository(db *gorm.DB) domainRepo.CashLedgerRepository {
	return &cashLedgerRepository{db: db}
}

// LockSubject takes the branch row lock anchoring the branch register.
// Composite operations lock stock subjects before cash subjects, so
// concurrent orders touching the same product and branch cannot deadlock.
func (r *cashLedgerRepository) LockSubject(ctx context.Context, branchID uuid.UUID) error {
	var branch entity.Branch
	err := lockForUpdate(conn(ctx, r.db).WithContext(ctx)).
		Scopes(TenantScope(ctx)).
		First(&branch, "id = ?", branchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFoundError("Branch")
	}
	return err
}

func (r *cashLedgerRepository) LastEntry(ctx context.Context, branchID uuid.UUID) (*entity.CashEntry, error) {
	var entry entity.CashEntry
	err := conn(ctx, r.db).WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("branch_id = ?", branchID).
		Order("sequence DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Append writes the entry after re-checking the chain head, mirroring the
// stock ledger.
func (r *cashLedgerRepository) Append(ctx context.Context, entry *entity.CashEntry) error {
	db := conn(ctx, r.db).WithContext(ctx)

	head, err := r.LastEntry(ctx, entry.BranchID)
	if err != nil {
		return err
	}
	if head == nil {
		if !entry.BalanceBefore.IsZero() {
			return &apperror.ConcurrentModificationError{Subject: "cash:" + entry.BranchID.String()}
		}
	} else if !head.BalanceAfter.Equal(entry.BalanceBefore) {
		return &apperror.ConcurrentModificationError{Subject: "cash:" + entry.BranchID.String()}
	}

	return db.Create(entry).Error
}

func (r *cashLedgerRepository) History(ctx context.Context, branchID uuid.UUID, params *domainRepo.LedgerFilterParams) ([]entity.CashEntry, int64, error) {
	var entries []entity.CashEntry
	var total int64

	query := conn(ctx, r.db).WithContext(ctx).
		Model(&entity.CashEntry{}).
		Scopes(TenantScope(ctx)).
		Where("branch_id = ?", branchID)

	if len(params.Types) > 0 {
		query = query.Where("type IN ?", params.Types)
	}
	if params.StartDate != nil {
		query = query.Where("recorded_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("recorded_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("sequence ASC").
		Find(&entries).Error

	return entries, total, err
}

// SumByShift sums over the stored entries in Go rather than SQL so the
// decimal amounts never pass through float aggregation.
func (r *cashLedgerRepository) SumByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	var entries []entity.CashEntry
	err := conn(ctx, r.db).WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("shift_id = ?", shiftID).
		Find(&entries).Error
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum, nil
}
