package service

import (
	"errors"
	"testing"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/finchpos/ledger-api/pkg/apperror"
)

func (e *testEnv) createTransfer(t *testing.T, qty int) *entity.InventoryTransfer {
	t.Helper()
	transfer, err := e.transfers.CreateTransfer(e.ctx, &CreateTransferInput{
		FromBranchID: e.branch.ID,
		ToBranchID:   e.branch2.ID,
		ProductID:    e.product.ID,
		Quantity:     qty,
		ActorUserID:  e.cashier.ID,
	})
	if err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}
	return transfer
}

func TestTransferLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.receiveStock(t, env.branch.ID, env.product.ID, 10)

	transfer := env.createTransfer(t, 4)
	if transfer.Status != enum.TransferStatusPending {
		t.Fatalf("new transfer status = %s, want Pending", transfer.Status)
	}
	if transfer.TransferNumber == "" {
		t.Error("transfer has no reference number")
	}

	// creation alone moves nothing
	balance, err := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
	if err != nil {
		t.Fatalf("CurrentBalance failed: %v", err)
	}
	if balance != 10 {
		t.Errorf("source balance after create = %d, want 10", balance)
	}

	transfer, err = env.transfers.ApproveTransfer(env.ctx, transfer.ID, env.manager.ID)
	if err != nil {
		t.Fatalf("ApproveTransfer failed: %v", err)
	}
	if transfer.Status != enum.TransferStatusApproved {
		t.Errorf("status after approve = %s, want Approved", transfer.Status)
	}
	balance, _ = env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
	if balance != 6 {
		t.Errorf("source balance after approve = %d, want 6", balance)
	}
	// in transit: absent from both ledgers
	balance, _ = env.stock.CurrentBalance(env.ctx, env.branch2.ID, env.product.ID)
	if balance != 0 {
		t.Errorf("destination balance before receipt = %d, want 0", balance)
	}

	transfer, err = env.transfers.ReceiveTransfer(env.ctx, transfer.ID, env.cashier2.ID)
	if err != nil {
		t.Fatalf("ReceiveTransfer failed: %v", err)
	}
	if transfer.Status != enum.TransferStatusCompleted {
		t.Errorf("status after receive = %s, want Completed", transfer.Status)
	}
	balance, _ = env.stock.CurrentBalance(env.ctx, env.branch2.ID, env.product.ID)
	if balance != 4 {
		t.Errorf("destination balance after receive = %d, want 4", balance)
	}

	// movements carry the transfer as their reference
	history, err := env.stock.History(env.ctx, env.branch.ID, env.product.ID, &repository.LedgerFilterParams{
		Types: []int{int(enum.MovementTransferOut)},
	})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history.Items) != 1 {
		t.Fatalf("source has %d TransferOut entries, want 1", len(history.Items))
	}
	out := history.Items[0]
	if out.ReferenceType != enum.ReferenceTransfer || out.ReferenceID == nil || *out.ReferenceID != transfer.ID {
		t.Error("TransferOut entry does not reference the transfer")
	}
}

func TestCreateTransferValidation(t *testing.T) {
	env := newTestEnv(t)
	env.receiveStock(t, env.branch.ID, env.product.ID, 3)

	t.Run("insufficient stock", func(t *testing.T) {
		_, err := env.transfers.CreateTransfer(env.ctx, &CreateTransferInput{
			FromBranchID: env.branch.ID,
			ToBranchID:   env.branch2.ID,
			ProductID:    env.product.ID,
			Quantity:     5,
			ActorUserID:  env.cashier.ID,
		})
		var insufficient *apperror.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("err = %v, want InsufficientStockError", err)
		}
	})

	t.Run("same branch", func(t *testing.T) {
		_, err := env.transfers.CreateTransfer(env.ctx, &CreateTransferInput{
			FromBranchID: env.branch.ID,
			ToBranchID:   env.branch.ID,
			ProductID:    env.product.ID,
			Quantity:     1,
			ActorUserID:  env.cashier.ID,
		})
		if err == nil {
			t.Fatal("transfer between identical branches was accepted")
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := env.transfers.CreateTransfer(env.ctx, &CreateTransferInput{
			FromBranchID: env.branch.ID,
			ToBranchID:   env.branch2.ID,
			ProductID:    env.product.ID,
			Quantity:     0,
			ActorUserID:  env.cashier.ID,
		})
		if err == nil {
			t.Fatal("zero quantity was accepted")
		}
	})
}

func TestApproveTransferRequiresPrivilegedActor(t *testing.T) {
	env := newTestEnv(t)
	env.receiveStock(t, env.branch.ID, env.product.ID, 10)
	transfer := env.createTransfer(t, 4)

	_, err := env.transfers.ApproveTransfer(env.ctx, transfer.ID, env.cashier.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestReceiveTransferRequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	env.receiveStock(t, env.branch.ID, env.product.ID, 10)
	transfer := env.createTransfer(t, 4)

	_, err := env.transfers.ReceiveTransfer(env.ctx, transfer.ID, env.cashier2.ID)
	var invalid *apperror.InvalidTransferStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidTransferStateError", err)
	}
	if invalid.Operation != "receive" {
		t.Errorf("error operation = %q, want receive", invalid.Operation)
	}
}

func TestCancelTransferAfterApprovalRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	env.receiveStock(t, env.branch.ID, env.product.ID, 10)
	transfer := env.createTransfer(t, 4)

	var err error
	transfer, err = env.transfers.ApproveTransfer(env.ctx, transfer.ID, env.manager.ID)
	if err != nil {
		t.Fatalf("ApproveTransfer failed: %v", err)
	}

	transfer, err = env.transfers.CancelTransfer(env.ctx, transfer.ID, "truck broke down", env.manager.ID)
	if err != nil {
		t.Fatalf("CancelTransfer failed: %v", err)
	}
	if transfer.Status != enum.TransferStatusCancelled {
		t.Errorf("status = %s, want Cancelled", transfer.Status)
	}

	// the round trip shows in the ledger and the balance is restored
	balance, err := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
	if err != nil {
		t.Fatalf("CurrentBalance failed: %v", err)
	}
	if balance != 10 {
		t.Errorf("source balance after cancel = %d, want 10", balance)
	}

	// terminal: no further transitions
	if _, err := env.transfers.ReceiveTransfer(env.ctx, transfer.ID, env.cashier2.ID); err == nil {
		t.Fatal("receive after cancel was accepted")
	}
}

func TestCancelTransferValidation(t *testing.T) {
	env := newTestEnv(t)
	env.receiveStock(t, env.branch.ID, env.product.ID, 10)
	transfer := env.createTransfer(t, 2)

	if _, err := env.transfers.CancelTransfer(env.ctx, transfer.ID, "", env.manager.ID); err == nil {
		t.Fatal("cancel without reason was accepted")
	}

	cancelled, err := env.transfers.CancelTransfer(env.ctx, transfer.ID, "not needed", env.manager.ID)
	if err != nil {
		t.Fatalf("CancelTransfer failed: %v", err)
	}
	if cancelled.CancellationReason != "not needed" {
		t.Errorf("cancellation reason = %q, want recorded", cancelled.CancellationReason)
	}

	// pending cancel writes no compensating movement
	balance, _ := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
	if balance != 10 {
		t.Errorf("balance after pending cancel = %d, want 10", balance)
	}
}
