package handler

import (
	"github.com/finchpos/ledger-api/internal/application/service"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/finchpos/ledger-api/internal/presentation/http/dto/request"
	"github.com/finchpos/ledger-api/internal/presentation/http/dto/response"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/gin-gonic/gin"
)

// StockLedgerHandler handles stock ledger HTTP requests
type StockLedgerHandler struct {
	stockService *service.StockLedgerService
}

// NewStockLedgerHandler creates a new stock ledger handler
func NewStockLedgerHandler(stockService *service.StockLedgerService) *StockLedgerHandler {
	return &StockLedgerHandler{stockService: stockService}
}

// RecordMovement handles recording one stock movement at a branch
func (h *StockLedgerHandler) RecordMovement(c *gin.Context) {
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

	var req request.RecordStockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	entry, err := h.stockService.RecordMovement(c.Request.Context(), &service.RecordStockMovementInput{
		BranchID:      branchID,
		ProductID:     req.ProductID,
		Type:          req.Type,
		Quantity:      req.Quantity,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Reason:        req.Reason,
		ActorUserID:   *userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Stock movement recorded", entry)
}

// GetBalance returns the current quantity of a product at a branch
func (h *StockLedgerHandler) GetBalance(c *gin.Context) {
	branchID, ok := parseUUIDParam(c, "branch_id")
	if !ok {
		response.BadRequest(c, "Invalid branch ID")
		return
	}
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	balance, err := h.stockService.CurrentBalance(c.Request.Context(), branchID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Balance retrieved successfully", gin.H{
		"branch_id":  branchID,
		"product_id": productID,
		"balance":    balance,
	})
}

// History returns the movement history of a product at a branch
func (h *StockLedgerHandler) History(c *gin.Context) {
	branchID, ok := parseUUIDParam(c, "branch_id")
	if !ok {
		response.BadRequest(c, "Invalid branch ID")
		return
	}
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
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

	result, err := h.stockService.History(c.Request.Context(), branchID, productID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "History retrieved successfully", result)
}
