package service

import (
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

type ledgerKind int

const (
	stockLedger ledgerKind = iota
	cashLedger
)

// movementDelta normalizes a stock quantity into a signed delta. Fixed
// direction types take a positive count and get their sign from the type;
// Adjustment keeps the caller's sign.
func movementDelta(t enum.MovementType, quantity int, kind ledgerKind) (int, error) {
	dir, ok := t.StockDirection()
	if kind == cashLedger {
		dir, ok = t.CashDirection()
	}
	if !ok {
		return 0, apperror.NewBadRequestError("Movement type " + t.String() + " is not valid for this ledger")
	}
	if dir == 0 {
		if quantity == 0 {
			return 0, apperror.NewBadRequestError("Adjustment quantity must be non-zero")
		}
		return quantity, nil
	}
	if quantity <= 0 {
		return 0, apperror.NewBadRequestError("Quantity must be positive")
	}
	return dir * quantity, nil
}

// cashMovementDelta is the decimal analogue of movementDelta for register
// amounts
func cashMovementDelta(t enum.MovementType, amount decimal.Decimal) (decimal.Decimal, error) {
	dir, ok := t.CashDirection()
	if !ok {
		return decimal.Zero, apperror.NewBadRequestError("Movement type " + t.String() + " is not valid for the cash ledger")
	}
	if dir == 0 {
		if amount.IsZero() {
			return decimal.Zero, apperror.NewBadRequestError("Adjustment amount must be non-zero")
		}
		return amount, nil
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperror.NewBadRequestError("Amount must be positive")
	}
	return amount.Mul(decimal.NewFromInt(int64(dir))), nil
}

// maxConflictRetries bounds automatic reattempts after an optimistic
// balance check loses a race. Only ConcurrentModificationError is ever
// retried: every other failure is surfaced, and nothing is retried once a
// ledger write has gone through.
const maxConflictRetries = 3

// RetryOnConflict re-runs fn for ConcurrentModificationError, up to the
// retry bound. fn must re-read balances itself on each attempt.
func RetryOnConflict(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = fn()
		if err == nil || !apperror.IsRetryable(err) {
			return err
		}
	}
	return err
}
