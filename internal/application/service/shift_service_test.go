package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (e *testEnv) openShift(t *testing.T, userID uuid.UUID, opening int64) *entity.Shift {
	t.Helper()
	shift, err := e.shifts.OpenShift(e.ctx, e.branch.ID, userID, decimal.NewFromInt(opening))
	if err != nil {
		t.Fatalf("OpenShift failed: %v", err)
	}
	return shift
}

func (e *testEnv) recordSale(t *testing.T, userID uuid.UUID, amount int64) {
	t.Helper()
	_, err := e.cash.RecordMovement(e.ctx, &RecordCashMovementInput{
		BranchID:    e.branch.ID,
		Type:        enum.MovementSale,
		Amount:      decimal.NewFromInt(amount),
		ActorUserID: userID,
	})
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}
}

func TestOpenShiftRejectsSecondOpen(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t, env.cashier.ID, 500)

	_, err := env.shifts.OpenShift(env.ctx, env.branch.ID, env.cashier.ID, decimal.NewFromInt(100))
	var already *apperror.ShiftAlreadyOpenError
	if !errors.As(err, &already) {
		t.Fatalf("err = %v, want ShiftAlreadyOpenError", err)
	}

	// a different user at the same branch is a different register trail
	if _, err := env.shifts.OpenShift(env.ctx, env.branch.ID, env.cashier2.ID, decimal.Zero); err != nil {
		t.Fatalf("open for second user failed: %v", err)
	}
}

func TestOpenShiftUniqueIndexBlocksDuplicateRow(t *testing.T) {
	env := newTestEnv(t)
	shift := env.openShift(t, env.cashier.ID, 500)

	// a writer that slips past the service check still hits the partial
	// unique index on open shifts
	dup := &entity.Shift{
		TenantID:       env.tenant.ID,
		BranchID:       env.branch.ID,
		UserID:         env.cashier.ID,
		Status:         enum.ShiftStatusOpen,
		OpeningBalance: decimal.NewFromInt(100),
		OpenedAt:       time.Now().UTC(),
	}
	if err := env.db.Create(dup).Error; err == nil {
		t.Fatal("second open shift row for the same (branch, user) was accepted")
	}

	var open int64
	err := env.db.Model(&entity.Shift{}).
		Where("branch_id = ? AND user_id = ? AND status = ?", env.branch.ID, env.cashier.ID, enum.ShiftStatusOpen).
		Count(&open).Error
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if open != 1 {
		t.Errorf("open shifts = %d, want 1", open)
	}

	// closing frees the slot for a new shift
	if _, err := env.shifts.CloseShift(env.ctx, shift.ID, decimal.NewFromInt(500), "", env.cashier.ID); err != nil {
		t.Fatalf("CloseShift failed: %v", err)
	}
	env.openShift(t, env.cashier.ID, 200)
}

func TestOpenShiftRejectsNegativeOpeningBalance(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.shifts.OpenShift(env.ctx, env.branch.ID, env.cashier.ID, decimal.NewFromInt(-1))
	if err == nil {
		t.Fatal("negative opening balance was accepted")
	}
}

func TestCloseShiftReconcilesAgainstLedger(t *testing.T) {
	env := newTestEnv(t)
	shift := env.openShift(t, env.cashier.ID, 500)
	env.recordSale(t, env.cashier.ID, 200)
	env.recordSale(t, env.cashier.ID, 150)

	closed, err := env.shifts.CloseShift(env.ctx, shift.ID, decimal.NewFromInt(800), "till short", env.cashier.ID)
	if err != nil {
		t.Fatalf("CloseShift failed: %v", err)
	}
	if closed.Status != enum.ShiftStatusClosed {
		t.Errorf("status = %s, want Closed", closed.Status)
	}
	if closed.ExpectedBalance == nil || !closed.ExpectedBalance.Equal(decimal.NewFromInt(850)) {
		t.Errorf("expected balance = %v, want 850", closed.ExpectedBalance)
	}
	if closed.Difference == nil || !closed.Difference.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("difference = %v, want -50", closed.Difference)
	}
	if closed.ClosedAt == nil {
		t.Error("ClosedAt is not set")
	}
}

func TestCloseShiftCountsSaleInJoinedScope(t *testing.T) {
	env := newTestEnv(t)
	shift := env.openShift(t, env.cashier.ID, 100)
	env.recordSale(t, env.cashier.ID, 50)

	// a sale recorded in the same coordinator scope lands on the shift
	// before the reconciliation sum runs
	var closed *entity.Shift
	err := env.tx.WithTransaction(env.ctx, func(ctx context.Context) error {
		_, err := env.cash.RecordMovement(ctx, &RecordCashMovementInput{
			BranchID:    env.branch.ID,
			Type:        enum.MovementSale,
			Amount:      decimal.NewFromInt(25),
			ActorUserID: env.cashier.ID,
		})
		if err != nil {
			return err
		}
		closed, err = env.shifts.CloseShift(ctx, shift.ID, decimal.NewFromInt(175), "", env.cashier.ID)
		return err
	})
	if err != nil {
		t.Fatalf("close in joined scope failed: %v", err)
	}

	if closed.ExpectedBalance == nil || !closed.ExpectedBalance.Equal(decimal.NewFromInt(175)) {
		t.Errorf("expected balance = %v, want 175", closed.ExpectedBalance)
	}
	if closed.Difference == nil || !closed.Difference.IsZero() {
		t.Errorf("difference = %v, want 0", closed.Difference)
	}
}

func TestCloseShiftOnlyByItsOwner(t *testing.T) {
	env := newTestEnv(t)
	shift := env.openShift(t, env.cashier.ID, 100)

	_, err := env.shifts.CloseShift(env.ctx, shift.ID, decimal.NewFromInt(100), "", env.cashier2.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestCloseShiftRejectsClosedShift(t *testing.T) {
	env := newTestEnv(t)
	shift := env.openShift(t, env.cashier.ID, 100)
	if _, err := env.shifts.CloseShift(env.ctx, shift.ID, decimal.NewFromInt(100), "", env.cashier.ID); err != nil {
		t.Fatalf("first close failed: %v", err)
	}

	_, err := env.shifts.CloseShift(env.ctx, shift.ID, decimal.NewFromInt(100), "", env.cashier.ID)
	var invalid *apperror.InvalidShiftStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidShiftStateError", err)
	}
}

func TestForceCloseRequiresPrivilegedActor(t *testing.T) {
	env := newTestEnv(t)
	shift := env.openShift(t, env.cashier.ID, 100)

	_, err := env.shifts.ForceClose(env.ctx, shift.ID, "cashier left", nil, env.cashier2.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden for non-admin actor", err)
	}

	_, err = env.shifts.ForceClose(env.ctx, shift.ID, "", nil, env.manager.ID)
	if err == nil {
		t.Fatal("force-close without reason was accepted")
	}

	closed, err := env.shifts.ForceClose(env.ctx, shift.ID, "cashier left mid-shift", nil, env.manager.ID)
	if err != nil {
		t.Fatalf("ForceClose failed: %v", err)
	}
	if closed.Status != enum.ShiftStatusForceClosed {
		t.Errorf("status = %s, want ForceClosed", closed.Status)
	}
	// no counted balance supplied: the expectation stands in for it
	if closed.ClosingBalance == nil || !closed.ClosingBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("closing balance = %v, want 100", closed.ClosingBalance)
	}
	if closed.Difference == nil || !closed.Difference.IsZero() {
		t.Errorf("difference = %v, want 0", closed.Difference)
	}
	if closed.ForceClosedByUserID == nil || *closed.ForceClosedByUserID != env.manager.ID {
		t.Error("force-close actor not recorded")
	}
}

func TestHandoverOpensContinuation(t *testing.T) {
	env := newTestEnv(t)
	shift := env.openShift(t, env.cashier.ID, 500)
	env.recordSale(t, env.cashier.ID, 300)

	continuation, err := env.shifts.Handover(env.ctx, shift.ID, env.cashier2.ID, decimal.NewFromInt(800), "lunch break", env.cashier.ID)
	if err != nil {
		t.Fatalf("Handover failed: %v", err)
	}
	if continuation.UserID != env.cashier2.ID {
		t.Errorf("continuation user = %s, want %s", continuation.UserID, env.cashier2.ID)
	}
	if !continuation.OpeningBalance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("continuation opens with %s, want the counted 800", continuation.OpeningBalance)
	}
	if continuation.HandedOverFromUserID == nil || *continuation.HandedOverFromUserID != env.cashier.ID {
		t.Error("continuation does not record who handed over")
	}

	old, err := env.shifts.GetShift(env.ctx, shift.ID)
	if err != nil {
		t.Fatalf("GetShift failed: %v", err)
	}
	if old.Status != enum.ShiftStatusClosed {
		t.Errorf("old shift status = %s, want Closed", old.Status)
	}
	if old.HandedOverToUserID == nil || *old.HandedOverToUserID != env.cashier2.ID {
		t.Error("old shift does not record the receiving user")
	}
	if old.ExpectedBalance == nil || !old.ExpectedBalance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("old shift expected balance = %v, want 800", old.ExpectedBalance)
	}

	// new cashier can now record sales against the continuation
	env.recordSale(t, env.cashier2.ID, 100)
}

func TestHandoverRejectsBusyOrSelfTarget(t *testing.T) {
	env := newTestEnv(t)
	shift := env.openShift(t, env.cashier.ID, 100)

	if _, err := env.shifts.Handover(env.ctx, shift.ID, env.cashier.ID, decimal.NewFromInt(100), "", env.cashier.ID); err == nil {
		t.Fatal("handover to self was accepted")
	}

	env.openShift(t, env.cashier2.ID, 50)
	_, err := env.shifts.Handover(env.ctx, shift.ID, env.cashier2.ID, decimal.NewFromInt(100), "", env.cashier.ID)
	var already *apperror.ShiftAlreadyOpenError
	if !errors.As(err, &already) {
		t.Fatalf("err = %v, want ShiftAlreadyOpenError for busy target", err)
	}
}

func TestListStaleShifts(t *testing.T) {
	env := newTestEnv(t)
	fresh := env.openShift(t, env.cashier.ID, 100)
	warning := env.openShift(t, env.cashier2.ID, 100)
	critical := env.openShift(t, env.manager.ID, 100)

	backdate := func(shift *entity.Shift, age time.Duration) {
		err := env.db.Model(&entity.Shift{}).Where("id = ?", shift.ID).
			Update("opened_at", time.Now().UTC().Add(-age)).Error
		if err != nil {
			t.Fatalf("failed to backdate shift: %v", err)
		}
	}
	backdate(warning, 14*time.Hour)
	backdate(critical, 30*time.Hour)

	stale, err := env.shifts.ListStaleShifts(env.ctx, 12*time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("ListStaleShifts failed: %v", err)
	}
	if len(stale) != 2 {
		t.Fatalf("stale count = %d, want 2", len(stale))
	}
	bySeverity := make(map[uuid.UUID]string, len(stale))
	for _, s := range stale {
		bySeverity[s.Shift.ID] = s.Severity
		if s.Shift.ID == fresh.ID {
			t.Error("fresh shift reported as stale")
		}
	}
	if bySeverity[warning.ID] != "warning" {
		t.Errorf("14h shift severity = %q, want warning", bySeverity[warning.ID])
	}
	if bySeverity[critical.ID] != "critical" {
		t.Errorf("30h shift severity = %q, want critical", bySeverity[critical.ID])
	}
}
