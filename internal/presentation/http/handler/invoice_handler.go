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

// InvoiceHandler handles purchase invoice HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles creating a draft invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	input := &service.CreateInvoiceInput{
		BranchID:    req.BranchID,
		SupplierID:  req.SupplierID,
		Items:       toItemInputs(req.Items),
		ActorUserID: *userID,
	}
	if req.InvoiceDate != "" {
		date, err := time.Parse("2006-01-02", req.InvoiceDate)
		if err != nil {
			response.BadRequest(c, "Invalid invoice date, expected yyyy-mm-dd")
			return
		}
		input.InvoiceDate = date
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created", invoice)
}

// UpdateItems handles replacing a draft invoice's line items
func (h *InvoiceHandler) UpdateItems(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.UpdateInvoiceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	invoice, err := h.invoiceService.UpdateItems(c.Request.Context(), invoiceID, toItemInputs(req.Items), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice items updated", invoice)
}

// Confirm handles confirming a draft invoice and receiving its stock
func (h *InvoiceHandler) Confirm(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.ConfirmInvoice(c.Request.Context(), invoiceID, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice confirmed", invoice)
}

// AddPayment handles applying a payment to an invoice
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.AddInvoicePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	input := &service.AddPaymentInput{
		Amount:          req.Amount,
		Method:          req.Method,
		ReferenceNumber: req.ReferenceNumber,
		ActorUserID:     *userID,
	}
	if req.PaymentDate != "" {
		date, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			response.BadRequest(c, "Invalid payment date, expected yyyy-mm-dd")
			return
		}
		input.PaymentDate = date
	}

	invoice, err := h.invoiceService.AddPayment(c.Request.Context(), invoiceID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded", invoice)
}

// ReturnItems handles returning goods on an invoice to the supplier
func (h *InvoiceHandler) ReturnItems(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.ReturnInvoiceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	returns := make([]service.ReturnItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		returns = append(returns, service.ReturnItemInput{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
		})
	}

	invoice, err := h.invoiceService.ReturnItems(c.Request.Context(), invoiceID, returns, req.Reason, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Items returned", invoice)
}

// Cancel handles voiding an invoice
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), invoiceID, req.Reason, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice cancelled", invoice)
}

// Get retrieves an invoice with its items and payments
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// List handles listing invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Status:    filter.Status,
		StartDate: parseDate(filter.StartDate),
		EndDate:   parseDate(filter.EndDate),
	}
	if filter.SupplierID != "" {
		if id, err := uuid.Parse(filter.SupplierID); err == nil {
			params.SupplierID = &id
		}
	}
	if filter.BranchID != "" {
		if id, err := uuid.Parse(filter.BranchID); err == nil {
			params.BranchID = &id
		}
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

func toItemInputs(items []request.InvoiceItemRequest) []service.InvoiceItemInput {
	inputs := make([]service.InvoiceItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, service.InvoiceItemInput{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			PurchasePrice: item.PurchasePrice,
		})
	}
	return inputs
}
