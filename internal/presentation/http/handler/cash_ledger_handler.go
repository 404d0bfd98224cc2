package handler

import (
	"github.com/finchpos/ledger-api/internal/application/service"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/finchpos/ledger-api/internal/presentation/http/dto/request"
	"github.com/finchpos/ledger-api/internal/presentation/http/dto/response"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/gin-gonic/gin"
)

// CashLedgerHandler handles cash ledger HTTP requests
type CashLedgerHandler struct {
	cashService *service.CashLedgerService
}

// NewCashLedgerHandler creates a new cash ledger handler
func NewCashLedgerHandler(cashService *service.CashLedgerService) *CashLedgerHandler {
	return &CashLedgerHandler{cashService: cashService}
}

// RecordMovement handles recording one cash register movement at a branch
func (h *CashLedgerHandler) RecordMovement(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	branchID, ok := parseUUIDParam(c, "branch_id")
	if !ok {
		response.BadRequest(c, "Invalid branch ID")
		return
	}

	var req request.RecordCashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	entry, err := h.cashService.RecordMovement(c.Request.Context(), &service.RecordCashMovementInput{
		BranchID:      branchID,
		Type:          req.Type,
		Amount:        req.Amount,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Reason:        req.Reason,
		ActorUserID:   *userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cash movement recorded", entry)
}

// GetBalance returns the current register balance of a branch
func (h *CashLedgerHandler) GetBalance(c *gin.Context) {
	branchID, ok := parseUUIDParam(c, "branch_id")
	if !ok {
		response.BadRequest(c, "Invalid branch ID")
		return
	}

	balance, err := h.cashService.CurrentBalance(c.Request.Context(), branchID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Balance retrieved successfully", gin.H{
		"branch_id": branchID,
		"balance":   balance,
	})
}

// History returns the register movement history of a branch
func (h *CashLedgerHandler) History(c *gin.Context) {
	branchID, ok := parseUUIDParam(c, "branch_id")
	if !ok {
		response.BadRequest(c, "Invalid branch ID")
		return
	}

	var filter request.LedgerHistoryRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.LedgerFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Types:     filter.Types,
		StartDate: parseDate(filter.StartDate),
		EndDate:   parseDate(filter.EndDate),
	}

	result, err := h.cashService.History(c.Request.Context(), branchID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "History retrieved successfully", result)
}
