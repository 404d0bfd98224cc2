package request

import (
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordStockMovementRequest represents a stock movement submission.
// Quantity is a positive count except for Adjustment, where it is the
// signed delta.
type RecordStockMovementRequest struct {
	ProductID     uuid.UUID          `json:"product_id" binding:"required"`
	Type          enum.MovementType  `json:"type"`
	Quantity      int                `json:"quantity" binding:"required"`
	ReferenceType enum.ReferenceType `json:"reference_type"`
	ReferenceID   *uuid.UUID         `json:"reference_id"`
	Reason        string             `json:"reason" binding:"omitempty,max=500"`
}

// RecordCashMovementRequest represents a cash register movement submission
type RecordCashMovementRequest struct {
	Type          enum.MovementType  `json:"type"`
	Amount        decimal.Decimal    `json:"amount" binding:"required"`
	ReferenceType enum.ReferenceType `json:"reference_type"`
	ReferenceID   *uuid.UUID         `json:"reference_id"`
	Reason        string             `json:"reason" binding:"omitempty,max=500"`
}

// LedgerHistoryRequest represents ledger history filter parameters
type LedgerHistoryRequest struct {
	Types     []int  `form:"types"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
