package repository

import (
	"context"
	"errors"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	domainRepo "github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type stockLedgerRepository struct {
	db *gorm.DB
}

// NewStockLedgerRepository creates a new stock ledger repository
func NewStockLedgerRepository(db *gorm.DB) domainRepo.StockLedgerRepository {
	return &stockLedgerRepository{db: db}
}

// lockForUpdate adds a row-level lock on dialects that support it. SQLite
// rejects the clause and serializes writers on its own.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// LockSubject takes the product row lock anchoring all (branch, product)
// subjects of the product. Held until the surrounding transaction ends,
// this serializes the read-compute-append sequence per subject.
func (r *stockLedgerRepository) LockSubject(ctx context.Context, branchID, productID uuid.UUID) error {
	var product entity.Product
	err := lockForUpdate(conn(ctx, r.db).WithContext(ctx)).
		Scopes(TenantScope(ctx)).
		First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFoundError("Product")
	}
	return err
}

func (r *stockLedgerRepository) LastEntry(ctx context.Context, branchID, productID uuid.UUID) (*entity.StockEntry, error) {
	var entry entity.StockEntry
	err := conn(ctx, r.db).WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
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

// Append writes the entry after re-checking that its BalanceBefore still
// matches the chain head. Under the subject lock the check cannot fail; it
// guards callers that skipped LockSubject or run on a weaker isolation
// level.
func (r *stockLedgerRepository) Append(ctx context.Context, entry *entity.StockEntry) error {
	db := conn(ctx, r.db).WithContext(ctx)

	head, err := r.LastEntry(ctx, entry.BranchID, entry.ProductID)
	if err != nil {
		return err
	}
	if head == nil {
		if entry.BalanceBefore != 0 {
			return &apperror.ConcurrentModificationError{Subject: "stock:" + entry.BranchID.String() + ":" + entry.ProductID.String()}
		}
	} else if head.BalanceAfter != entry.BalanceBefore {
		return &apperror.ConcurrentModificationError{Subject: "stock:" + entry.BranchID.String() + ":" + entry.ProductID.String()}
	}

	return db.Create(entry).Error
}

func (r *stockLedgerRepository) History(ctx context.Context, branchID, productID uuid.UUID, params *domainRepo.LedgerFilterParams) ([]entity.StockEntry, int64, error) {
	var entries []entity.StockEntry
	var total int64

	query := conn(ctx, r.db).WithContext(ctx).
		Model(&entity.StockEntry{}).
		Scopes(TenantScope(ctx)).
		Where("branch_id = ? AND product_id = ?", branchID, productID)

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
