package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type txFixture struct {
	db      *gorm.DB
	ctx     context.Context
	tenant  uuid.UUID
	branch  uuid.UUID
	product uuid.UUID
	user    uuid.UUID
	seq     int64
}

func newTxFixture(t *testing.T) *txFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entity.Tenant{}, &entity.Branch{}, &entity.User{}, &entity.Product{}, &entity.StockEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	user := &entity.User{FirstName: "Tess", Email: "tess@test.local", Password: "x", Role: "admin", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	tenant := &entity.Tenant{Name: "Tx Test", Slug: "tx-test", OwnerID: user.ID, Settings: entity.DefaultTenantSettings()}
	branch := &entity.Branch{Name: "Main", IsActive: true}
	product := &entity.Product{Name: "Widget", IsActive: true}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("failed to seed tenant: %v", err)
	}
	branch.TenantID = tenant.ID
	product.TenantID = tenant.ID
	for _, rec := range []any{branch, product} {
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("failed to seed fixture: %v", err)
		}
	}

	return &txFixture{
		db:      db,
		ctx:     WithTenant(context.Background(), tenant.ID),
		tenant:  tenant.ID,
		branch:  branch.ID,
		product: product.ID,
		user:    user.ID,
	}
}

func (f *txFixture) stockEntry(before, delta int) *entity.StockEntry {
	f.seq++
	return &entity.StockEntry{
		TenantID:      f.tenant,
		BranchID:      f.branch,
		ProductID:     f.product,
		Sequence:      f.seq,
		Type:          enum.MovementAdjustment,
		Quantity:      delta,
		BalanceBefore: before,
		BalanceAfter:  before + delta,
		Reason:        "test",
		ActorUserID:   f.user,
		RecordedAt:    time.Now().UTC(),
	}
}

func (f *txFixture) countEntries(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(&entity.StockEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return count
}

func TestWithTransactionRollsBackEverything(t *testing.T) {
	f := newTxFixture(t)
	manager := NewTxManager(f.db)
	stockRepo := NewStockLedgerRepository(f.db)

	sentinel := errors.New("boom")
	err := manager.WithTransaction(f.ctx, func(ctx context.Context) error {
		if err := stockRepo.Append(ctx, f.stockEntry(0, 5)); err != nil {
			return err
		}
		if err := stockRepo.Append(ctx, f.stockEntry(5, 3)); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if count := f.countEntries(t); count != 0 {
		t.Errorf("entries after rollback = %d, want 0", count)
	}
}

func TestWithTransactionCommits(t *testing.T) {
	f := newTxFixture(t)
	manager := NewTxManager(f.db)
	stockRepo := NewStockLedgerRepository(f.db)

	err := manager.WithTransaction(f.ctx, func(ctx context.Context) error {
		return stockRepo.Append(ctx, f.stockEntry(0, 5))
	})
	if err != nil {
		t.Fatalf("WithTransaction failed: %v", err)
	}
	if count := f.countEntries(t); count != 1 {
		t.Errorf("entries after commit = %d, want 1", count)
	}
}

func TestNestedWithTransactionJoinsOuterScope(t *testing.T) {
	f := newTxFixture(t)
	manager := NewTxManager(f.db)
	stockRepo := NewStockLedgerRepository(f.db)

	sentinel := errors.New("inner failure")
	err := manager.WithTransaction(f.ctx, func(ctx context.Context) error {
		if err := stockRepo.Append(ctx, f.stockEntry(0, 5)); err != nil {
			return err
		}
		// joins the outer scope rather than opening a nested transaction
		return manager.WithTransaction(ctx, func(ctx context.Context) error {
			if err := stockRepo.Append(ctx, f.stockEntry(5, 3)); err != nil {
				return err
			}
			return sentinel
		})
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	// the inner failure unwinds the outer write too
	if count := f.countEntries(t); count != 0 {
		t.Errorf("entries after nested rollback = %d, want 0", count)
	}
}

func TestInTransactionReportsScope(t *testing.T) {
	f := newTxFixture(t)
	manager := NewTxManager(f.db)

	if manager.InTransaction(f.ctx) {
		t.Error("InTransaction reports true outside any scope")
	}
	err := manager.WithTransaction(f.ctx, func(ctx context.Context) error {
		if !manager.InTransaction(ctx) {
			t.Error("InTransaction reports false inside a scope")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTransaction failed: %v", err)
	}
}

func TestAppendDetectsStaleChainHead(t *testing.T) {
	f := newTxFixture(t)
	stockRepo := NewStockLedgerRepository(f.db)

	if err := stockRepo.Append(f.ctx, f.stockEntry(0, 5)); err != nil {
		t.Fatalf("first append failed: %v", err)
	}

	// BalanceBefore no longer matches the chain head
	err := stockRepo.Append(f.ctx, f.stockEntry(0, 3))
	var conflict *apperror.ConcurrentModificationError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConcurrentModificationError", err)
	}
	if count := f.countEntries(t); count != 1 {
		t.Errorf("entries after conflict = %d, want 1", count)
	}
}
