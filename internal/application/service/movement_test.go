package service

import (
	"errors"
	"testing"

	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

func TestMovementDelta(t *testing.T) {
	tests := []struct {
		name     string
		typ      enum.MovementType
		quantity int
		kind     ledgerKind
		want     int
		wantErr  bool
	}{
		{"receiving increases stock", enum.MovementReceiving, 10, stockLedger, 10, false},
		{"sale decreases stock", enum.MovementSale, 3, stockLedger, -3, false},
		{"refund restores stock", enum.MovementRefund, 2, stockLedger, 2, false},
		{"damage decreases stock", enum.MovementDamage, 1, stockLedger, -1, false},
		{"adjustment keeps negative sign", enum.MovementAdjustment, -4, stockLedger, -4, false},
		{"adjustment keeps positive sign", enum.MovementAdjustment, 4, stockLedger, 4, false},
		{"adjustment rejects zero", enum.MovementAdjustment, 0, stockLedger, 0, true},
		{"fixed-direction rejects zero", enum.MovementSale, 0, stockLedger, 0, true},
		{"fixed-direction rejects negative", enum.MovementReceiving, -5, stockLedger, 0, true},
		{"deposit invalid for stock", enum.MovementDeposit, 5, stockLedger, 0, true},
		{"sale increases cash", enum.MovementSale, 100, cashLedger, 100, false},
		{"refund decreases cash", enum.MovementRefund, 50, cashLedger, -50, false},
		{"receiving invalid for cash", enum.MovementReceiving, 5, cashLedger, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := movementDelta(tt.typ, tt.quantity, tt.kind)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("movementDelta(%s, %d) succeeded, want error", tt.typ, tt.quantity)
				}
				return
			}
			if err != nil {
				t.Fatalf("movementDelta(%s, %d) failed: %v", tt.typ, tt.quantity, err)
			}
			if got != tt.want {
				t.Errorf("movementDelta(%s, %d) = %d, want %d", tt.typ, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestCashMovementDelta(t *testing.T) {
	tests := []struct {
		name    string
		typ     enum.MovementType
		amount  int64
		want    int64
		wantErr bool
	}{
		{"sale credits the register", enum.MovementSale, 100, 100, false},
		{"supplier payment debits", enum.MovementSupplierPayment, 80, -80, false},
		{"withdrawal debits", enum.MovementWithdrawal, 40, -40, false},
		{"adjustment keeps sign", enum.MovementAdjustment, -25, -25, false},
		{"adjustment rejects zero", enum.MovementAdjustment, 0, 0, true},
		{"fixed-direction rejects negative", enum.MovementDeposit, -10, 0, true},
		{"damage invalid for cash", enum.MovementDamage, 10, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cashMovementDelta(tt.typ, decimal.NewFromInt(tt.amount))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("cashMovementDelta(%s, %d) succeeded, want error", tt.typ, tt.amount)
				}
				return
			}
			if err != nil {
				t.Fatalf("cashMovementDelta(%s, %d) failed: %v", tt.typ, tt.amount, err)
			}
			if !got.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("cashMovementDelta(%s, %d) = %s, want %d", tt.typ, tt.amount, got, tt.want)
			}
		})
	}
}

func TestRetryOnConflict(t *testing.T) {
	t.Run("retries only concurrent modification", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(func() error {
			calls++
			return &apperror.ConcurrentModificationError{Subject: "stock"}
		})
		if !apperror.IsRetryable(err) {
			t.Fatalf("err = %v, want the conflict surfaced after retries", err)
		}
		if calls != maxConflictRetries {
			t.Errorf("fn called %d times, want %d", calls, maxConflictRetries)
		}
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		sentinel := errors.New("boom")
		err := RetryOnConflict(func() error {
			calls++
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("err = %v, want sentinel", err)
		}
		if calls != 1 {
			t.Errorf("fn called %d times, want 1", calls)
		}
	})

	t.Run("stops after success", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(func() error {
			calls++
			if calls == 1 {
				return &apperror.ConcurrentModificationError{Subject: "cash"}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("err = %v, want nil", err)
		}
		if calls != 2 {
			t.Errorf("fn called %d times, want 2", calls)
		}
	})
}
