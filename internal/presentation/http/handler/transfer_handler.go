package handler

import (
	"github.com/finchpos/ledger-api/internal/application/service"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/finchpos/ledger-api/internal/presentation/http/dto/request"
	"github.com/finchpos/ledger-api/internal/presentation/http/dto/response"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransferHandler handles inventory transfer HTTP requests
type TransferHandler struct {
	transferService *service.TransferService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transferService *service.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// Create handles creating a pending transfer
func (h *TransferHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	transfer, err := h.transferService.CreateTransfer(c.Request.Context(), &service.CreateTransferInput{
		FromBranchID: req.FromBranchID,
		ToBranchID:   req.ToBranchID,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		ActorUserID:  *userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Transfer created", transfer)
}

// Approve handles approving a pending transfer
func (h *TransferHandler) Approve(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transferService.ApproveTransfer(c.Request.Context(), transferID, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transfer approved", transfer)
}

// Receive handles receiving an approved transfer at the destination
func (h *TransferHandler) Receive(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transferService.ReceiveTransfer(c.Request.Context(), transferID, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transfer received", transfer)
}

// Cancel handles cancelling a pending or approved transfer
func (h *TransferHandler) Cancel(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid transfer ID")
		return
	}

	var req request.CancelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	transfer, err := h.transferService.CancelTransfer(c.Request.Context(), transferID, req.Reason, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transfer cancelled", transfer)
}

// Get retrieves a transfer by ID
func (h *TransferHandler) Get(c *gin.Context) {
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transferService.GetTransfer(c.Request.Context(), transferID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transfer retrieved successfully", transfer)
}

// List handles listing transfers
func (h *TransferHandler) List(c *gin.Context) {
	var filter request.TransferFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.TransferFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Status: filter.Status,
	}
	if filter.FromBranchID != "" {
		if id, err := uuid.Parse(filter.FromBranchID); err == nil {
			params.FromBranchID = &id
		}
	}
	if filter.ToBranchID != "" {
		if id, err := uuid.Parse(filter.ToBranchID); err == nil {
			params.ToBranchID = &id
		}
	}
	if filter.ProductID != "" {
		if id, err := uuid.Parse(filter.ProductID); err == nil {
			params.ProductID = &id
		}
	}

	result, err := h.transferService.ListTransfers(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Transfers retrieved successfully", result)
}
