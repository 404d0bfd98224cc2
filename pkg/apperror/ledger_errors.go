package apperror

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InsufficientStockError is returned when a decreasing stock movement would
// drive the balance negative and tenant policy forbids it. Nothing is
// written when it is raised.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// CashInsufficientBalanceError is the cash register analogue of
// InsufficientStockError
type CashInsufficientBalanceError struct {
	BranchID  uuid.UUID
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *CashInsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient register balance for branch %s: requested %s, available %s",
		e.BranchID, e.Requested, e.Available)
}

// NoActiveShiftError is returned when a sale or refund cash movement is
// attempted without an open shift for the acting user at the branch
type NoActiveShiftError struct {
	BranchID uuid.UUID
	UserID   uuid.UUID
}

func (e *NoActiveShiftError) Error() string {
	return fmt.Sprintf("no open shift for user %s at branch %s", e.UserID, e.BranchID)
}

// ShiftAlreadyOpenError is returned when opening a shift while one is
// already open for the same (branch, user)
type ShiftAlreadyOpenError struct {
	BranchID uuid.UUID
	UserID   uuid.UUID
	ShiftID  uuid.UUID
}

func (e *ShiftAlreadyOpenError) Error() string {
	return fmt.Sprintf("shift %s is already open for user %s at branch %s", e.ShiftID, e.UserID, e.BranchID)
}

// InvalidShiftStateError is returned when a shift transition is attempted
// from a state that does not permit it
type InvalidShiftStateError struct {
	ShiftID   uuid.UUID
	Status    string
	Operation string
}

func (e *InvalidShiftStateError) Error() string {
	return fmt.Sprintf("cannot %s shift %s in status %s", e.Operation, e.ShiftID, e.Status)
}

// InvalidTransferStateError is the transfer workflow analogue of
// InvalidShiftStateError
type InvalidTransferStateError struct {
	TransferID uuid.UUID
	Status     string
	Operation  string
}

func (e *InvalidTransferStateError) Error() string {
	return fmt.Sprintf("cannot %s transfer %s in status %s", e.Operation, e.TransferID, e.Status)
}

// InvoiceNotEditableError is returned when line items are edited on a
// non-draft invoice, or an operation needs a status the invoice is not in
type InvoiceNotEditableError struct {
	InvoiceID uuid.UUID
	Status    string
	Operation string
}

func (e *InvoiceNotEditableError) Error() string {
	return fmt.Sprintf("cannot %s invoice %s in status %s", e.Operation, e.InvoiceID, e.Status)
}

// ConcurrentModificationError is returned when the optimistic balance check
// lost a race: another writer appended to the same subject between the
// balance read and the append. It is the only failure a caller may retry
// automatically, after re-reading the balance.
type ConcurrentModificationError struct {
	Subject string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("concurrent modification on %s", e.Subject)
}

// IsRetryable reports whether the caller may safely re-read and reattempt
func IsRetryable(err error) bool {
	var concurrent *ConcurrentModificationError
	return errors.As(err, &concurrent)
}
