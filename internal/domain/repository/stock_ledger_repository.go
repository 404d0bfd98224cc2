package repository

import (
	"context"
	"time"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/google/uuid"
)

// StockLedgerRepository persists the append-only stock ledger. Append is the
// only write: entries are never updated or deleted.
type StockLedgerRepository interface {
	// LockSubject serializes writers for one (branch, product) subject for
	// the duration of the surrounding transaction. Must be called inside a
	// TxManager scope before LastEntry when a write will follow.
	LockSubject(ctx context.Context, branchID, productID uuid.UUID) error
	// LastEntry returns the chain head for the subject, or nil if the
	// subject has no entries yet.
	LastEntry(ctx context.Context, branchID, productID uuid.UUID) (*entity.StockEntry, error)
	// Append writes a new entry after re-checking that BalanceBefore still
	// matches the chain head; a mismatch returns ConcurrentModificationError.
	Append(ctx context.Context, entry *entity.StockEntry) error
	History(ctx context.Context, branchID, productID uuid.UUID, params *LedgerFilterParams) ([]entity.StockEntry, int64, error)
}

// LedgerFilterParams contains filtering parameters for ledger history queries
type LedgerFilterParams struct {
	Pagination *pagination.PaginationParams
	Types      []int
	StartDate  *time.Time
	EndDate    *time.Time
}
