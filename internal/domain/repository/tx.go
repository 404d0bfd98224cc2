package repository

import "context"

// TxManager is the transaction coordinator. WithTransaction begins a
// persistence transaction unless one is already active on the context, in
// which case fn runs inside the existing scope and the outer caller keeps
// commit/rollback authority. There is never a nested transaction: any error
// from fn unwinds the whole outermost scope.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	InTransaction(ctx context.Context) bool
}
