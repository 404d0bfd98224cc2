package repository

import (
	"context"

	domainRepo "github.com/finchpos/ledger-api/internal/domain/repository"
	"gorm.io/gorm"
)

type txCtxKey struct{}

// withTx returns a context carrying an open transaction handle. The handle
// is an explicit value, not ambient state: repositories pick it up via
// TxFrom and the coordinator checks it to refuse nesting.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txCtxKey{}, tx)
}

// TxFrom extracts the active transaction handle from the context, if any
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txCtxKey{}).(*gorm.DB)
	return tx, ok
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates the transaction coordinator backing all composite
// ledger operations
func NewTxManager(db *gorm.DB) domainRepo.TxManager {
	return &txManager{db: db}
}

// InTransaction reports whether the context already carries an open scope
func (m *txManager) InTransaction(ctx context.Context) bool {
	tx, ok := TxFrom(ctx)
	return ok && tx != nil
}

// WithTransaction runs fn inside a transaction scope. If one is already
// active on the context, fn joins it instead of opening a nested one, so an
// inner failure unwinds the whole outer scope and nothing is partially
// committed.
func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.InTransaction(ctx) {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

// conn returns the transaction handle from the context when present, or the
// base connection. Every repository routes its statements through this so
// writes land in the caller's scope.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := TxFrom(ctx); ok && tx != nil {
		return tx
	}
	return db
}
