package main

import (
	"log"
	"os"
	"time"

	"github.com/finchpos/ledger-api/internal/application/service"
	"github.com/finchpos/ledger-api/internal/config"
	"github.com/finchpos/ledger-api/internal/infrastructure/database"
	"github.com/finchpos/ledger-api/internal/infrastructure/repository"
	"github.com/finchpos/ledger-api/internal/presentation/http/handler"
	"github.com/finchpos/ledger-api/internal/presentation/http/routes"
	"github.com/finchpos/ledger-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	tenantRepo := repository.NewTenantRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	stockRepo := repository.NewStockLedgerRepository(db)
	cashRepo := repository.NewCashLedgerRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(userRepo, jwtManager)
	stockService := service.NewStockLedgerService(stockRepo, tenantRepo, txManager)
	cashService := service.NewCashLedgerService(cashRepo, shiftRepo, tenantRepo, txManager)
	shiftService := service.NewShiftService(shiftRepo, cashRepo, userRepo, txManager, auditService)
	transferService := service.NewTransferService(transferRepo, branchRepo, productRepo, userRepo, stockService, txManager, auditService)
	invoiceService := service.NewInvoiceService(invoiceRepo, supplierRepo, productRepo, tenantRepo, stockService, cashService, txManager, auditService)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		StockLedger: handler.NewStockLedgerHandler(stockService),
		CashLedger:  handler.NewCashLedgerHandler(cashService),
		Shift: handler.NewShiftHandler(
			shiftService,
			time.Duration(cfg.Ledger.ShiftWarningHours)*time.Hour,
			time.Duration(cfg.Ledger.ShiftCriticalHours)*time.Hour,
		),
		Transfer: handler.NewTransferHandler(transferService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
