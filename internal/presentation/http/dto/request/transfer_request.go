package request

import "github.com/google/uuid"

// CreateTransferRequest represents a transfer creation submission
type CreateTransferRequest struct {
	FromBranchID uuid.UUID `json:"from_branch_id" binding:"required"`
	ToBranchID   uuid.UUID `json:"to_branch_id" binding:"required"`
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
	Reason       string    `json:"reason" binding:"omitempty,max=500"`
}

// CancelTransferRequest represents a transfer cancellation
type CancelTransferRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// TransferFilterRequest represents transfer list filter parameters
type TransferFilterRequest struct {
	FromBranchID string `form:"from_branch_id"`
	ToBranchID   string `form:"to_branch_id"`
	ProductID    string `form:"product_id"`
	Status       *int   `form:"status"`
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
}
