package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// MovementType represents the kind of balance-changing event recorded in a
// ledger. The set is closed: direction logic switches exhaustively over it.
type MovementType int

const (
	MovementOpening MovementType = iota
	MovementSale
	MovementRefund
	MovementAdjustment
	MovementReceiving
	MovementDamage
	MovementReturn
	MovementTransferOut
	MovementTransferIn
	MovementDeposit
	MovementWithdrawal
	MovementExpense
	MovementSupplierPayment
)

var movementTypeNames = [...]string{
	"Opening",
	"Sale",
	"Refund",
	"Adjustment",
	"Receiving",
	"Damage",
	"Return",
	"TransferOut",
	"TransferIn",
	"Deposit",
	"Withdrawal",
	"Expense",
	"SupplierPayment",
}

func (t MovementType) String() string {
	if t < 0 || int(t) >= len(movementTypeNames) {
		return "Unknown"
	}
	return movementTypeNames[t]
}

// StockDirection returns the sign a movement applies to a stock balance and
// whether the type is valid for the stock ledger at all. Adjustment returns
// direction 0: its sign comes from the caller.
func (t MovementType) StockDirection() (int, bool) {
	switch t {
	case MovementOpening, MovementRefund, MovementReceiving, MovementTransferIn:
		return 1, true
	case MovementSale, MovementDamage, MovementReturn, MovementTransferOut:
		return -1, true
	case MovementAdjustment:
		return 0, true
	case MovementDeposit, MovementWithdrawal, MovementExpense, MovementSupplierPayment:
		return 0, false
	}
	return 0, false
}

// CashDirection returns the sign a movement applies to a register balance and
// whether the type is valid for the cash ledger. Note that Sale increases
// cash while it decreases stock.
func (t MovementType) CashDirection() (int, bool) {
	switch t {
	case MovementOpening, MovementSale, MovementDeposit, MovementTransferIn:
		return 1, true
	case MovementRefund, MovementWithdrawal, MovementExpense, MovementSupplierPayment, MovementTransferOut:
		return -1, true
	case MovementAdjustment:
		return 0, true
	case MovementReceiving, MovementDamage, MovementReturn:
		return 0, false
	}
	return 0, false
}

// RequiresReason reports whether the movement is a manual correction that
// must carry an operator-supplied reason.
func (t MovementType) RequiresReason() bool {
	switch t {
	case MovementAdjustment, MovementDamage, MovementWithdrawal, MovementExpense:
		return true
	}
	return false
}

// RequiresOpenShift reports whether a cash movement of this type may only be
// recorded while the acting cashier has an open shift.
func (t MovementType) RequiresOpenShift() bool {
	return t == MovementSale || t == MovementRefund
}

func (t MovementType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *MovementType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = MovementType(i)
		return nil
	}
	for i, name := range movementTypeNames {
		if name == str {
			*t = MovementType(i)
			return nil
		}
	}
	return nil
}

func (t MovementType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *MovementType) Scan(value interface{}) error {
	if value == nil {
		*t = MovementOpening
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = MovementType(v)
	case int:
		*t = MovementType(v)
	}
	return nil
}
