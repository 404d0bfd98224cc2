package service

import (
	"context"
	"testing"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/finchpos/ledger-api/internal/infrastructure/database"
	infraRepo "github.com/finchpos/ledger-api/internal/infrastructure/repository"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory database
type testEnv struct {
	db  *gorm.DB
	ctx context.Context
	tx  repository.TxManager

	tenant   *entity.Tenant
	branch   *entity.Branch
	branch2  *entity.Branch
	product  *entity.Product
	product2 *entity.Product
	supplier *entity.Supplier
	cashier  *entity.User
	cashier2 *entity.User
	manager  *entity.User

	stock     *StockLedgerService
	cash      *CashLedgerService
	shifts    *ShiftService
	transfers *TransferService
	invoices  *InvoiceService
}

func newTestDB(t *testing.T) *gorm.DB {
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
	// The in-memory database lives on a single connection
	sqlDB.SetMaxOpenConns(1)

	// Same migration path as production so schema-level constraints, the
	// open-shift unique index included, hold in tests too
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	owner := &entity.User{FirstName: "Olive", Email: "owner@test.local", Password: "x", Role: "admin", IsActive: true}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("failed to seed owner: %v", err)
	}

	settings := entity.DefaultTenantSettings()
	tenant := &entity.Tenant{Name: "Test Store", Slug: "test-store", OwnerID: owner.ID, Settings: settings}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("failed to seed tenant: %v", err)
	}

	branch := &entity.Branch{TenantID: tenant.ID, Name: "Main", IsActive: true}
	branch2 := &entity.Branch{TenantID: tenant.ID, Name: "Annex", IsActive: true}
	product := &entity.Product{TenantID: tenant.ID, Name: "Soda 500ml", IsActive: true}
	product2 := &entity.Product{TenantID: tenant.ID, Name: "Bread", IsActive: true}
	supplier := &entity.Supplier{TenantID: tenant.ID, Name: "Acme Distributors"}
	cashier := &entity.User{TenantID: tenant.ID, FirstName: "Carol", Email: "carol@test.local", Password: "x", Role: "cashier", IsActive: true}
	cashier2 := &entity.User{TenantID: tenant.ID, FirstName: "Dan", Email: "dan@test.local", Password: "x", Role: "cashier", IsActive: true}
	manager := &entity.User{TenantID: tenant.ID, FirstName: "Mia", Email: "mia@test.local", Password: "x", Role: "manager", IsActive: true}
	for _, rec := range []any{branch, branch2, product, product2, supplier, cashier, cashier2, manager} {
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("failed to seed fixture: %v", err)
		}
	}

	owner.TenantID = tenant.ID
	if err := db.Save(owner).Error; err != nil {
		t.Fatalf("failed to attach owner: %v", err)
	}

	tx := infraRepo.NewTxManager(db)
	tenantRepo := infraRepo.NewTenantRepository(db)
	branchRepo := infraRepo.NewBranchRepository(db)
	userRepo := infraRepo.NewUserRepository(db)
	productRepo := infraRepo.NewProductRepository(db)
	supplierRepo := infraRepo.NewSupplierRepository(db)
	stockRepo := infraRepo.NewStockLedgerRepository(db)
	cashRepo := infraRepo.NewCashLedgerRepository(db)
	shiftRepo := infraRepo.NewShiftRepository(db)
	transferRepo := infraRepo.NewTransferRepository(db)
	invoiceRepo := infraRepo.NewInvoiceRepository(db)
	audit := NewAuditService(infraRepo.NewAuditLogRepository(db))

	stock := NewStockLedgerService(stockRepo, tenantRepo, tx)
	cash := NewCashLedgerService(cashRepo, shiftRepo, tenantRepo, tx)

	return &testEnv{
		db:  db,
		ctx: infraRepo.WithTenant(context.Background(), tenant.ID),
		tx:  tx,

		tenant:   tenant,
		branch:   branch,
		branch2:  branch2,
		product:  product,
		product2: product2,
		supplier: supplier,
		cashier:  cashier,
		cashier2: cashier2,
		manager:  manager,

		stock:     stock,
		cash:      cash,
		shifts:    NewShiftService(shiftRepo, cashRepo, userRepo, tx, audit),
		transfers: NewTransferService(transferRepo, branchRepo, productRepo, userRepo, stock, tx, audit),
		invoices:  NewInvoiceService(invoiceRepo, supplierRepo, productRepo, tenantRepo, stock, cash, tx, audit),
	}
}

// setSettings mutates the tenant's ledger policy in place
func (e *testEnv) setSettings(t *testing.T, mutate func(*entity.TenantSettings)) {
	t.Helper()
	var tenant entity.Tenant
	if err := e.db.First(&tenant, "id = ?", e.tenant.ID).Error; err != nil {
		t.Fatalf("failed to load tenant: %v", err)
	}
	mutate(&tenant.Settings)
	if err := e.db.Save(&tenant).Error; err != nil {
		t.Fatalf("failed to save tenant settings: %v", err)
	}
}

// receiveStock seeds stock through the ledger itself
func (e *testEnv) receiveStock(t *testing.T, branchID, productID uuid.UUID, qty int) {
	t.Helper()
	_, err := e.stock.RecordMovement(e.ctx, &RecordStockMovementInput{
		BranchID:    branchID,
		ProductID:   productID,
		Type:        enum.MovementReceiving,
		Quantity:    qty,
		ActorUserID: e.manager.ID,
	})
	if err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
}
