package repository

import (
	"context"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashLedgerRepository persists the append-only cash register ledger. The
// subject is the branch alone.
type CashLedgerRepository interface {
	// LockSubject serializes writers for one branch register for the
	// duration of the surrounding transaction.
	LockSubject(ctx context.Context, branchID uuid.UUID) error
	LastEntry(ctx context.Context, branchID uuid.UUID) (*entity.CashEntry, error)
	// Append writes a new entry after re-checking the chain head; a
	// mismatch returns ConcurrentModificationError.
	Append(ctx context.Context, entry *entity.CashEntry) error
	History(ctx context.Context, branchID uuid.UUID, params *LedgerFilterParams) ([]entity.CashEntry, int64, error)
	// SumByShift returns the signed sum of all entries recorded against a
	// shift, used for close reconciliation.
	SumByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error)
}
