package routes

import (
	"time"

	"github.com/finchpos/ledger-api/internal/config"
	domainRepo "github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/finchpos/ledger-api/internal/presentation/http/handler"
	"github.com/finchpos/ledger-api/internal/presentation/http/middleware"
	"github.com/finchpos/ledger-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth        *handler.AuthHandler
	StockLedger *handler.StockLedgerHandler
	CashLedger  *handler.CashLedgerHandler
	Shift       *handler.ShiftHandler
	Transfer    *handler.TransferHandler
	Invoice     *handler.InvoiceHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.RequireTenant())

		// Per-tenant rate limiter
		rateLimiter := middleware.NewTenantRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/profile", h.Auth.GetProfile)

	registerLedgerRoutes(protected, h, deps)
	registerShiftRoutes(protected, h)
	registerTransferRoutes(protected, h)
	registerInvoiceRoutes(protected, h, deps)
}

func registerLedgerRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	branches := protected.Group("/branches/:branch_id")
	{
		stock := branches.Group("/stock")
		{
			// Movement submission replays cached responses on a repeated
			// Idempotency-Key instead of appending twice
			stock.POST("/movements", idempotent, h.StockLedger.RecordMovement)
			stock.GET("/products/:product_id/balance", h.StockLedger.GetBalance)
			stock.GET("/products/:product_id/history", h.StockLedger.History)
		}

		cash := branches.Group("/cash")
		{
			cash.POST("/movements", idempotent, h.CashLedger.RecordMovement)
			cash.GET("/balance", h.CashLedger.GetBalance)
			cash.GET("/history", h.CashLedger.History)
		}
	}
}

func registerShiftRoutes(protected *gin.RouterGroup, h *Handlers) {
	shifts := protected.Group("/shifts")
	{
		shifts.GET("", h.Shift.List)
		shifts.POST("", h.Shift.Open)
		shifts.GET("/stale", middleware.RequireRole("admin", "manager"), h.Shift.ListStale)
		shifts.GET("/:id", h.Shift.Get)
		shifts.POST("/:id/close", h.Shift.Close)
		shifts.POST("/:id/handover", h.Shift.Handover)
		shifts.POST("/:id/force-close", middleware.RequireRole("admin", "manager"), h.Shift.ForceClose)
	}
}

func registerTransferRoutes(protected *gin.RouterGroup, h *Handlers) {
	transfers := protected.Group("/transfers")
	{
		transfers.GET("", h.Transfer.List)
		transfers.POST("", h.Transfer.Create)
		transfers.GET("/:id", h.Transfer.Get)
		transfers.POST("/:id/approve", middleware.RequireRole("admin", "manager"), h.Transfer.Approve)
		transfers.POST("/:id/receive", h.Transfer.Receive)
		transfers.POST("/:id/cancel", h.Transfer.Cancel)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id/items", h.Invoice.UpdateItems)
		invoices.POST("/:id/confirm", h.Invoice.Confirm)
		invoices.POST("/:id/payments", idempotent, h.Invoice.AddPayment)
		invoices.POST("/:id/returns", h.Invoice.ReturnItems)
		invoices.POST("/:id/cancel", h.Invoice.Cancel)
	}
}
