package handler

import (
	"time"

	"github.com/finchpos/ledger-api/internal/application/service"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/finchpos/ledger-api/internal/presentation/http/dto/request"
	"github.com/finchpos/ledger-api/internal/presentation/http/dto/response"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShiftHandler handles shift lifecycle HTTP requests
type ShiftHandler struct {
	shiftService  *service.ShiftService
	warningAfter  time.Duration
	criticalAfter time.Duration
}

// NewShiftHandler creates a new shift handler
func NewShiftHandler(shiftService *service.ShiftService, warningAfter, criticalAfter time.Duration) *ShiftHandler {
	return &ShiftHandler{
		shiftService:  shiftService,
		warningAfter:  warningAfter,
		criticalAfter: criticalAfter,
	}
}

// Open handles opening a shift
func (h *ShiftHandler) Open(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	shift, err := h.shiftService.OpenShift(c.Request.Context(), req.BranchID, *userID, req.OpeningBalance)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Shift opened", shift)
}

// Close handles closing the acting user's shift
func (h *ShiftHandler) Close(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	shiftID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	var req request.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	shift, err := h.shiftService.CloseShift(c.Request.Context(), shiftID, req.ClosingBalance, req.Notes, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift closed", shift)
}

// ForceClose handles an administrative force close of a stale shift
func (h *ShiftHandler) ForceClose(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	shiftID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	var req request.ForceCloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	shift, err := h.shiftService.ForceClose(c.Request.Context(), shiftID, req.Reason, req.ActualBalance, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift force-closed", shift)
}

// Handover handles passing the register to another cashier
func (h *ShiftHandler) Handover(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	shiftID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	var req request.HandoverShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	continuation, err := h.shiftService.Handover(c.Request.Context(), shiftID, req.ToUserID, req.CurrentBalance, req.Notes, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift handed over", continuation)
}

// Get retrieves a shift by ID
func (h *ShiftHandler) Get(c *gin.Context) {
	shiftID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	shift, err := h.shiftService.GetShift(c.Request.Context(), shiftID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift retrieved successfully", shift)
}

// List handles listing shifts
func (h *ShiftHandler) List(c *gin.Context) {
	var filter request.ShiftFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ShiftFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Status: filter.Status,
	}
	if filter.BranchID != "" {
		if id, err := uuid.Parse(filter.BranchID); err == nil {
			params.BranchID = &id
		}
	}
	if filter.UserID != "" {
		if id, err := uuid.Parse(filter.UserID); err == nil {
			params.UserID = &id
		}
	}

	result, err := h.shiftService.ListShifts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Shifts retrieved successfully", result)
}

// ListStale returns open shifts past the staleness thresholds
func (h *ShiftHandler) ListStale(c *gin.Context) {
	stale, err := h.shiftService.ListStaleShifts(c.Request.Context(), h.warningAfter, h.criticalAfter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stale shifts retrieved successfully", stale)
}
