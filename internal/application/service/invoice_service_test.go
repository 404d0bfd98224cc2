package service

import (
	"errors"
	"testing"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

func (e *testEnv) createInvoice(t *testing.T, items ...InvoiceItemInput) *entity.PurchaseInvoice {
	t.Helper()
	invoice, err := e.invoices.CreateInvoice(e.ctx, &CreateInvoiceInput{
		BranchID:    e.branch.ID,
		SupplierID:  e.supplier.ID,
		Items:       items,
		ActorUserID: e.manager.ID,
	})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	return invoice
}

func (e *testEnv) confirmInvoice(t *testing.T, invoice *entity.PurchaseInvoice) *entity.PurchaseInvoice {
	t.Helper()
	confirmed, err := e.invoices.ConfirmInvoice(e.ctx, invoice.ID, e.manager.ID)
	if err != nil {
		t.Fatalf("ConfirmInvoice failed: %v", err)
	}
	return confirmed
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	env := newTestEnv(t)

	// default settings: 16% VAT enabled
	invoice := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 2, PurchasePrice: decimal.NewFromInt(100)},
		InvoiceItemInput{ProductID: env.product2.ID, Quantity: 5, PurchasePrice: decimal.NewFromInt(20)},
	)
	if invoice.Status != enum.InvoiceStatusDraft {
		t.Errorf("status = %s, want Draft", invoice.Status)
	}
	if invoice.InvoiceNumber == "" {
		t.Error("invoice has no reference number")
	}
	if !invoice.Subtotal.Equal(decimal.NewFromInt(300)) {
		t.Errorf("subtotal = %s, want 300", invoice.Subtotal)
	}
	if !invoice.TaxAmount.Equal(decimal.NewFromInt(48)) {
		t.Errorf("tax = %s, want 48", invoice.TaxAmount)
	}
	if !invoice.Total.Equal(decimal.NewFromInt(348)) {
		t.Errorf("total = %s, want 348", invoice.Total)
	}

	// a draft has no ledger effect
	balance, _ := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
	if balance != 0 {
		t.Errorf("stock balance after draft = %d, want 0", balance)
	}
}

func TestCreateInvoiceWithTaxDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.setSettings(t, func(s *entity.TenantSettings) { s.IsTaxEnabled = false })

	invoice := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 1, PurchasePrice: decimal.NewFromInt(100)},
	)
	if !invoice.TaxAmount.IsZero() {
		t.Errorf("tax = %s, want 0 with tax disabled", invoice.TaxAmount)
	}
	if !invoice.Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total = %s, want 100", invoice.Total)
	}
}

func TestConfirmInvoiceReceivesStock(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 6, PurchasePrice: decimal.NewFromInt(50)},
		InvoiceItemInput{ProductID: env.product2.ID, Quantity: 3, PurchasePrice: decimal.NewFromInt(10)},
	)

	confirmed := env.confirmInvoice(t, invoice)
	if confirmed.Status != enum.InvoiceStatusConfirmed {
		t.Errorf("status = %s, want Confirmed", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil {
		t.Error("ConfirmedAt is not set")
	}

	balance, _ := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
	if balance != 6 {
		t.Errorf("product balance after confirm = %d, want 6", balance)
	}
	balance, _ = env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product2.ID)
	if balance != 3 {
		t.Errorf("product2 balance after confirm = %d, want 3", balance)
	}

	// confirming twice is rejected and nothing is received again
	_, err := env.invoices.ConfirmInvoice(env.ctx, invoice.ID, env.manager.ID)
	var notEditable *apperror.InvoiceNotEditableError
	if !errors.As(err, &notEditable) {
		t.Fatalf("err = %v, want InvoiceNotEditableError", err)
	}
	balance, _ = env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
	if balance != 6 {
		t.Errorf("product balance after rejected re-confirm = %d, want 6", balance)
	}
}

func TestConfirmInvoiceWithRepeatedProductLines(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 2, PurchasePrice: decimal.NewFromInt(50)},
		InvoiceItemInput{ProductID: env.product2.ID, Quantity: 4, PurchasePrice: decimal.NewFromInt(10)},
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 5, PurchasePrice: decimal.NewFromInt(45)},
	)

	confirmed := env.confirmInvoice(t, invoice)
	if confirmed.Status != enum.InvoiceStatusConfirmed {
		t.Errorf("status = %s, want Confirmed", confirmed.Status)
	}

	// both lines for the same product chain onto one subject
	balance, _ := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
	if balance != 7 {
		t.Errorf("repeated product balance = %d, want 7", balance)
	}
	balance, _ = env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product2.ID)
	if balance != 4 {
		t.Errorf("product2 balance = %d, want 4", balance)
	}
}

func TestUpdateItemsOnlyWhileDraft(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 1, PurchasePrice: decimal.NewFromInt(100)},
	)

	updated, err := env.invoices.UpdateItems(env.ctx, invoice.ID, []InvoiceItemInput{
		{ProductID: env.product.ID, Quantity: 2, PurchasePrice: decimal.NewFromInt(100)},
		{ProductID: env.product2.ID, Quantity: 1, PurchasePrice: decimal.NewFromInt(50)},
	}, env.manager.ID)
	if err != nil {
		t.Fatalf("UpdateItems failed: %v", err)
	}
	if !updated.Subtotal.Equal(decimal.NewFromInt(250)) {
		t.Errorf("subtotal after edit = %s, want 250", updated.Subtotal)
	}
	if len(updated.Items) != 2 {
		t.Errorf("item count after edit = %d, want 2", len(updated.Items))
	}

	env.confirmInvoice(t, invoice)
	_, err = env.invoices.UpdateItems(env.ctx, invoice.ID, []InvoiceItemInput{
		{ProductID: env.product.ID, Quantity: 1, PurchasePrice: decimal.NewFromInt(1)},
	}, env.manager.ID)
	var notEditable *apperror.InvoiceNotEditableError
	if !errors.As(err, &notEditable) {
		t.Fatalf("err = %v, want InvoiceNotEditableError after confirm", err)
	}
}

func TestAddPaymentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.setSettings(t, func(s *entity.TenantSettings) { s.IsTaxEnabled = false })
	invoice := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 1, PurchasePrice: decimal.NewFromInt(300)},
	)
	env.confirmInvoice(t, invoice)

	// payments are only accepted once confirmed
	draft := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 1, PurchasePrice: decimal.NewFromInt(10)},
	)
	_, err := env.invoices.AddPayment(env.ctx, draft.ID, &AddPaymentInput{
		Amount: decimal.NewFromInt(10), Method: enum.PaymentMethodBankTransfer, ActorUserID: env.manager.ID,
	})
	var notEditable *apperror.InvoiceNotEditableError
	if !errors.As(err, &notEditable) {
		t.Fatalf("err = %v, want InvoiceNotEditableError for draft payment", err)
	}

	paid, err := env.invoices.AddPayment(env.ctx, invoice.ID, &AddPaymentInput{
		Amount: decimal.NewFromInt(100), Method: enum.PaymentMethodBankTransfer, ActorUserID: env.manager.ID,
	})
	if err != nil {
		t.Fatalf("partial payment failed: %v", err)
	}
	if paid.Status != enum.InvoiceStatusPartiallyPaid {
		t.Errorf("status after partial payment = %s, want PartiallyPaid", paid.Status)
	}
	if !paid.AmountDue().Equal(decimal.NewFromInt(200)) {
		t.Errorf("amount due = %s, want 200", paid.AmountDue())
	}

	_, err = env.invoices.AddPayment(env.ctx, invoice.ID, &AddPaymentInput{
		Amount: decimal.NewFromInt(250), Method: enum.PaymentMethodBankTransfer, ActorUserID: env.manager.ID,
	})
	if err == nil {
		t.Fatal("overpayment was accepted")
	}

	paid, err = env.invoices.AddPayment(env.ctx, invoice.ID, &AddPaymentInput{
		Amount: decimal.NewFromInt(200), Method: enum.PaymentMethodBankTransfer, ActorUserID: env.manager.ID,
	})
	if err != nil {
		t.Fatalf("final payment failed: %v", err)
	}
	if paid.Status != enum.InvoiceStatusPaid {
		t.Errorf("status after full payment = %s, want Paid", paid.Status)
	}

	// fully paid invoices accept nothing further
	_, err = env.invoices.AddPayment(env.ctx, invoice.ID, &AddPaymentInput{
		Amount: decimal.NewFromInt(1), Method: enum.PaymentMethodBankTransfer, ActorUserID: env.manager.ID,
	})
	if err == nil {
		t.Fatal("payment against a paid invoice was accepted")
	}
}

func TestAddCashPaymentDebitsRegister(t *testing.T) {
	env := newTestEnv(t)
	env.setSettings(t, func(s *entity.TenantSettings) { s.IsTaxEnabled = false })
	invoice := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 1, PurchasePrice: decimal.NewFromInt(80)},
	)
	env.confirmInvoice(t, invoice)

	_, err := env.cash.RecordMovement(env.ctx, &RecordCashMovementInput{
		BranchID:    env.branch.ID,
		Type:        enum.MovementDeposit,
		Amount:      decimal.NewFromInt(100),
		ActorUserID: env.manager.ID,
	})
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	if _, err := env.invoices.AddPayment(env.ctx, invoice.ID, &AddPaymentInput{
		Amount: decimal.NewFromInt(80), Method: enum.PaymentMethodCash, ActorUserID: env.manager.ID,
	}); err != nil {
		t.Fatalf("cash payment failed: %v", err)
	}

	balance, err := env.cash.CurrentBalance(env.ctx, env.branch.ID)
	if err != nil {
		t.Fatalf("CurrentBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("register balance after cash payment = %s, want 20", balance)
	}
}

func TestAddCashPaymentRollsBackAtomically(t *testing.T) {
	env := newTestEnv(t)
	env.setSettings(t, func(s *entity.TenantSettings) { s.IsTaxEnabled = false })
	invoice := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 1, PurchasePrice: decimal.NewFromInt(80)},
	)
	env.confirmInvoice(t, invoice)

	// register holds less than the payment; the cash leg must fail and take
	// the payment row and status change down with it
	_, err := env.invoices.AddPayment(env.ctx, invoice.ID, &AddPaymentInput{
		Amount: decimal.NewFromInt(80), Method: enum.PaymentMethodCash, ActorUserID: env.manager.ID,
	})
	var insufficient *apperror.CashInsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want CashInsufficientBalanceError", err)
	}

	reloaded, err := env.invoices.GetInvoice(env.ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	if !reloaded.AmountPaid.IsZero() {
		t.Errorf("amount paid after rollback = %s, want 0", reloaded.AmountPaid)
	}
	if reloaded.Status != enum.InvoiceStatusConfirmed {
		t.Errorf("status after rollback = %s, want Confirmed", reloaded.Status)
	}
	if len(reloaded.Payments) != 0 {
		t.Errorf("payment rows after rollback = %d, want 0", len(reloaded.Payments))
	}
}

func TestReturnItems(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.createInvoice(t,
		InvoiceItemInput{ProductID: env.product.ID, Quantity: 6, PurchasePrice: decimal.NewFromInt(50)},
	)
	env.confirmInvoice(t, invoice)
	reloaded, err := env.invoices.GetInvoice(env.ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	itemID := reloaded.Items[0].ID

	t.Run("bounded by unreturned quantity", func(t *testing.T) {
		_, err := env.invoices.ReturnItems(env.ctx, invoice.ID, []ReturnItemInput{
			{ItemID: itemID, Quantity: 7},
		}, "overage", env.manager.ID)
		if err == nil {
			t.Fatal("return above the received quantity was accepted")
		}
	})

	t.Run("partial return", func(t *testing.T) {
		returned, err := env.invoices.ReturnItems(env.ctx, invoice.ID, []ReturnItemInput{
			{ItemID: itemID, Quantity: 2},
		}, "damaged on arrival", env.manager.ID)
		if err != nil {
			t.Fatalf("ReturnItems failed: %v", err)
		}
		if returned.Status != enum.InvoiceStatusPartiallyReturned {
			t.Errorf("status = %s, want PartiallyReturned", returned.Status)
		}
		balance, _ := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
		if balance != 4 {
			t.Errorf("stock after partial return = %d, want 4", balance)
		}
	})

	t.Run("full return", func(t *testing.T) {
		returned, err := env.invoices.ReturnItems(env.ctx, invoice.ID, []ReturnItemInput{
			{ItemID: itemID, Quantity: 4},
		}, "order rejected", env.manager.ID)
		if err != nil {
			t.Fatalf("ReturnItems failed: %v", err)
		}
		if returned.Status != enum.InvoiceStatusReturned {
			t.Errorf("status = %s, want Returned", returned.Status)
		}
		balance, _ := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
		if balance != 0 {
			t.Errorf("stock after full return = %d, want 0", balance)
		}
	})
}

func TestCancelInvoice(t *testing.T) {
	t.Run("draft cancels without ledger effect", func(t *testing.T) {
		env := newTestEnv(t)
		invoice := env.createInvoice(t,
			InvoiceItemInput{ProductID: env.product.ID, Quantity: 5, PurchasePrice: decimal.NewFromInt(10)},
		)
		cancelled, err := env.invoices.CancelInvoice(env.ctx, invoice.ID, "duplicate entry", env.manager.ID)
		if err != nil {
			t.Fatalf("CancelInvoice failed: %v", err)
		}
		if cancelled.Status != enum.InvoiceStatusCancelled {
			t.Errorf("status = %s, want Cancelled", cancelled.Status)
		}
		balance, _ := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
		if balance != 0 {
			t.Errorf("stock after draft cancel = %d, want 0", balance)
		}
	})

	t.Run("confirmed cancel reverses received stock", func(t *testing.T) {
		env := newTestEnv(t)
		invoice := env.createInvoice(t,
			InvoiceItemInput{ProductID: env.product.ID, Quantity: 5, PurchasePrice: decimal.NewFromInt(10)},
		)
		env.confirmInvoice(t, invoice)

		cancelled, err := env.invoices.CancelInvoice(env.ctx, invoice.ID, "wrong supplier", env.manager.ID)
		if err != nil {
			t.Fatalf("CancelInvoice failed: %v", err)
		}
		if cancelled.Status != enum.InvoiceStatusCancelled {
			t.Errorf("status = %s, want Cancelled", cancelled.Status)
		}
		balance, _ := env.stock.CurrentBalance(env.ctx, env.branch.ID, env.product.ID)
		if balance != 0 {
			t.Errorf("stock after confirmed cancel = %d, want 0", balance)
		}
	})

	t.Run("rejected once payments applied", func(t *testing.T) {
		env := newTestEnv(t)
		env.setSettings(t, func(s *entity.TenantSettings) { s.IsTaxEnabled = false })
		invoice := env.createInvoice(t,
			InvoiceItemInput{ProductID: env.product.ID, Quantity: 5, PurchasePrice: decimal.NewFromInt(10)},
		)
		env.confirmInvoice(t, invoice)
		if _, err := env.invoices.AddPayment(env.ctx, invoice.ID, &AddPaymentInput{
			Amount: decimal.NewFromInt(10), Method: enum.PaymentMethodBankTransfer, ActorUserID: env.manager.ID,
		}); err != nil {
			t.Fatalf("payment failed: %v", err)
		}

		_, err := env.invoices.CancelInvoice(env.ctx, invoice.ID, "too late", env.manager.ID)
		var notEditable *apperror.InvoiceNotEditableError
		if !errors.As(err, &notEditable) {
			t.Fatalf("err = %v, want InvoiceNotEditableError", err)
		}
	})
}
