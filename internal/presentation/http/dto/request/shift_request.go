package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenShiftRequest represents a shift open submission
type OpenShiftRequest struct {
	BranchID       uuid.UUID       `json:"branch_id" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// CloseShiftRequest represents a shift close submission
type CloseShiftRequest struct {
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Notes          string          `json:"notes" binding:"omitempty,max=500"`
}

// ForceCloseShiftRequest represents an administrative force close
type ForceCloseShiftRequest struct {
	Reason        string           `json:"reason" binding:"required,max=500"`
	ActualBalance *decimal.Decimal `json:"actual_balance"`
}

// HandoverShiftRequest represents a register handover to another cashier
type HandoverShiftRequest struct {
	ToUserID       uuid.UUID       `json:"to_user_id" binding:"required"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Notes          string          `json:"notes" binding:"omitempty,max=500"`
}

// ShiftFilterRequest represents shift list filter parameters
type ShiftFilterRequest struct {
	BranchID string `form:"branch_id"`
	UserID   string `form:"user_id"`
	Status   *int   `form:"status"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}
