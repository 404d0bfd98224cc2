package database

import (
	"fmt"
	"log"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/finchpos/ledger-api/internal/config"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Core entities
		&entity.Tenant{},
		&entity.Branch{},
		&entity.User{},
		&entity.Product{},
		&entity.Supplier{},

		// Ledger entities
		&entity.StockEntry{},
		&entity.CashEntry{},

		// Workflow entities
		&entity.Shift{},
		&entity.InventoryTransfer{},
		&entity.PurchaseInvoice{},
		&entity.PurchaseInvoiceItem{},
		&entity.InvoicePayment{},

		// System entities
		&entity.AuditLog{},
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Schema-level backstop for the one-open-shift-per-(branch,user) rule.
	// Partial unique indexes work on both postgres and sqlite; gorm tags
	// cannot express the WHERE clause.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_shifts_open_branch_user ON shifts (branch_id, user_id) WHERE status = 0",
	).Error; err != nil {
		return fmt.Errorf("failed to create open-shift unique index: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData creates the bootstrap tenant, branch, and admin user when
// ADMIN_EMAIL and ADMIN_PASSWORD are configured and no such user exists yet
func SeedDefaultData(db *gorm.DB) error {
	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	tenantName := viper.GetString("SEED_TENANT_NAME")
	branchName := viper.GetString("SEED_BRANCH_NAME")

	if adminEmail == "" || adminPassword == "" {
		return nil
	}
	if tenantName == "" {
		tenantName = "Default Store"
	}
	if branchName == "" {
		branchName = "Main Branch"
	}

	log.Println("Seeding default data...")

	var existing entity.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		log.Printf("Admin user already exists: %s", adminEmail)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin := entity.User{
			FirstName: "Admin",
			Email:     adminEmail,
			Password:  string(hashedPassword),
			Role:      "admin",
			IsActive:  true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		tenant := entity.Tenant{
			Name:     tenantName,
			Slug:     "default",
			OwnerID:  admin.ID,
			Settings: entity.DefaultTenantSettings(),
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return fmt.Errorf("failed to create default tenant: %w", err)
		}

		branch := entity.Branch{
			TenantID: tenant.ID,
			Name:     branchName,
			IsActive: true,
		}
		if err := tx.Create(&branch).Error; err != nil {
			return fmt.Errorf("failed to create default branch: %w", err)
		}

		admin.TenantID = tenant.ID
		admin.BranchID = &branch.ID
		if err := tx.Save(&admin).Error; err != nil {
			return fmt.Errorf("failed to attach admin to tenant: %w", err)
		}

		log.Printf("Seeded tenant %s with admin %s", tenant.Slug, adminEmail)
		return nil
	})
}
