package handler

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
	"github.com/rakapradana/receipt-expense-service/internal/model"
	"github.com/rakapradana/receipt-expense-service/internal/ocr"
	"github.com/rakapradana/receipt-expense-service/internal/parser"
	"github.com/rakapradana/receipt-expense-service/internal/repository"
	"github.com/rakapradana/receipt-expense-service/internal/service"
)

// ReceiptHandler handles HTTP requests for receipt-related operations
type ReceiptHandler struct {
	receiptService service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// ScanReceipt handles the POST /receipts/scan endpoint
// @Summary Scan a receipt image
// @Description Upload and process a receipt image to extract structured expense data
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param receiptImage formData file true "Receipt image file"
// @Success 201 {object} model.ReceiptResponse "Successfully scanned receipt"
// @Failure 400 {object} model.ErrorResponse "Invalid upload"
// @Failure 422 {object} model.ErrorResponse "Could not read this receipt"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/scan [post]
func (h *ReceiptHandler) ScanReceipt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	file, header, err := getFormFile(c, "receiptImage")
	if err != nil {
		respondBadRequest(c, err.Error(), newErrorDetail("receiptImage", "Receipt image is required"))
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		respondInternalServerError(c, ErrFileProcessing)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = ocr.MimeTypeForFilename(header.Filename)
	}

	upload := domain.UploadedImage{
		Content:  fileBytes,
		MimeType: mimeType,
		Filename: header.Filename,
		Size:     header.Size,
	}

	receipt, err := h.receiptService.Ingest(c.Request.Context(), upload, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUpload):
			respondBadRequest(c, fmt.Sprintf("Invalid upload: %v", err))
		case errors.Is(err, parser.ErrUnparsableReceipt):
			respondUnprocessableEntity(c, ErrUnreadableReceipt)
		case errors.Is(err, ocr.ErrExtractionFailed):
			respondInternalServerError(c, ErrFileProcessing)
		default:
			respondInternalServerError(c, fmt.Sprintf("Failed to scan receipt: %v", err))
		}
		return
	}

	respondCreated(c, formatReceiptResponse(receipt))
}

// CreateReceipt handles the POST /receipts endpoint
// @Summary Create a new receipt
// @Description Create a new receipt with manual data entry
// @Tags receipts
// @Accept json
// @Produce json
// @Param receipt body domain.Receipt true "Receipt data"
// @Success 201 {object} model.ReceiptResponse "Receipt created successfully"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts [post]
func (h *ReceiptHandler) CreateReceipt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	var input domain.Receipt
	if err := bindJSON(c, &input); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	input.UserID = userID

	if validationErrors := validateReceiptInput(&input); len(validationErrors) > 0 {
		respondBadRequest(c, ErrInvalidInput, validationErrors...)
		return
	}

	receipt, err := h.receiptService.CreateReceipt(c.Request.Context(), &input)
	if err != nil {
		respondInternalServerError(c, fmt.Sprintf("Failed to create receipt: %v", err))
		return
	}

	respondCreated(c, formatReceiptResponse(receipt))
}

// GetReceipts handles the GET /receipts endpoint
// @Summary List receipts
// @Description Get a paginated list of the caller's receipts with optional filters
// @Tags receipts
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param startDate query string false "Start date filter (YYYY-MM-DD)"
// @Param endDate query string false "End date filter (YYYY-MM-DD)"
// @Param merchant query string false "Merchant name filter"
// @Success 200 {object} model.ReceiptsListResponse "List of receipts"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts [get]
func (h *ReceiptHandler) GetReceipts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	filter, err := parseReceiptFilter(c, userID)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("query", err.Error()))
		return
	}

	paginatedReceipts, err := h.receiptService.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		respondInternalServerError(c, fmt.Sprintf("Failed to retrieve receipts: %v", err))
		return
	}

	respondOK(c, model.ReceiptsListResponse{
		Data: formatReceiptsResponse(paginatedReceipts.Data),
		Pagination: model.PaginationResponse{
			TotalItems:  paginatedReceipts.Pagination.TotalItems,
			TotalPages:  paginatedReceipts.Pagination.TotalPages,
			CurrentPage: paginatedReceipts.Pagination.CurrentPage,
			Limit:       paginatedReceipts.Pagination.Limit,
		},
	})
}

// GetReceiptByID handles the GET /receipts/{receiptId} endpoint
// @Summary Get a receipt by ID
// @Description Retrieve a specific receipt owned by the caller
// @Tags receipts
// @Accept json
// @Produce json
// @Param receiptId path string true "Receipt ID"
// @Success 200 {object} model.ReceiptResponse "Receipt details"
// @Failure 404 {object} model.ErrorResponse "Receipt not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{receiptId} [get]
func (h *ReceiptHandler) GetReceiptByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	receiptID, err := getPathParam(c, "receiptId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	receipt, err := h.receiptService.GetReceiptByID(c.Request.Context(), userID, receiptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNotFound(c, fmt.Sprintf("Receipt not found: %s", receiptID))
		} else {
			respondInternalServerError(c, fmt.Sprintf("Failed to retrieve receipt: %v", err))
		}
		return
	}

	respondOK(c, formatReceiptResponse(receipt))
}

// UpdateReceipt handles the PUT /receipts/{receiptId} endpoint
// @Summary Update a receipt
// @Description Update an existing receipt owned by the caller
// @Tags receipts
// @Accept json
// @Produce json
// @Param receiptId path string true "Receipt ID"
// @Param receipt body domain.Receipt true "Updated receipt data"
// @Success 200 {object} model.ReceiptResponse "Receipt updated successfully"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 404 {object} model.ErrorResponse "Receipt not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{receiptId} [put]
func (h *ReceiptHandler) UpdateReceipt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	receiptID, err := getPathParam(c, "receiptId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var input domain.Receipt
	if err := bindJSON(c, &input); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	if validationErrors := validateReceiptInput(&input); len(validationErrors) > 0 {
		respondBadRequest(c, ErrInvalidInput, validationErrors...)
		return
	}

	input.ID = receiptID

	updatedReceipt, err := h.receiptService.UpdateReceipt(c.Request.Context(), userID, &input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNotFound(c, fmt.Sprintf("Receipt not found: %s", receiptID))
		} else {
			respondInternalServerError(c, fmt.Sprintf("Failed to update receipt: %v", err))
		}
		return
	}

	respondOK(c, formatReceiptResponse(updatedReceipt))
}

// DeleteReceipt handles the DELETE /receipts/{receiptId} endpoint
// @Summary Delete a receipt
// @Description Delete a receipt owned by the caller
// @Tags receipts
// @Accept json
// @Produce json
// @Param receiptId path string true "Receipt ID"
// @Success 204 "Receipt deleted successfully"
// @Failure 404 {object} model.ErrorResponse "Receipt not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{receiptId} [delete]
func (h *ReceiptHandler) DeleteReceipt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	receiptID, err := getPathParam(c, "receiptId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	err = h.receiptService.DeleteReceipt(c.Request.Context(), userID, receiptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNotFound(c, fmt.Sprintf("Receipt not found: %s", receiptID))
		} else {
			respondInternalServerError(c, fmt.Sprintf("Failed to delete receipt: %v", err))
		}
		return
	}

	respondNoContent(c)
}

// validateReceiptInput validates required fields of a manually entered receipt.
// A total of zero is valid (a fully refunded receipt); only a missing or
// negative total is rejected.
func validateReceiptInput(receipt *domain.Receipt) []model.ErrorDetail {
	var details []model.ErrorDetail

	if receipt.Merchant == "" {
		details = append(details, newErrorDetail("merchant", "Merchant is required"))
	}

	if receipt.Date.IsZero() {
		details = append(details, newErrorDetail("date", "Date is required"))
	}

	if receipt.Total == nil {
		details = append(details, newErrorDetail("total", "Total is required"))
	} else if *receipt.Total < 0 {
		details = append(details, newErrorDetail("total", "Total cannot be negative"))
	}

	for i, item := range receipt.Items {
		if item.Name == "" {
			details = append(details, newErrorDetail(
				fmt.Sprintf("items[%d].name", i),
				"Item name is required",
			))
		}
		if item.Quantity <= 0 {
			details = append(details, newErrorDetail(
				fmt.Sprintf("items[%d].qty", i),
				"Item quantity must be greater than zero",
			))
		}
		if item.Price < 0 {
			details = append(details, newErrorDetail(
				fmt.Sprintf("items[%d].price", i),
				"Item price cannot be negative",
			))
		}
	}

	return details
}

// RegisterRoutes registers the API routes for the receipt handler
func (h *ReceiptHandler) RegisterRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/v1")

	receipts := api.Group("/receipts", authMiddleware)
	{
		receipts.POST("/scan", h.ScanReceipt)
		receipts.POST("", h.CreateReceipt)
		receipts.GET("", h.GetReceipts)
		receipts.GET("/:receiptId", h.GetReceiptByID)
		receipts.PUT("/:receiptId", h.UpdateReceipt)
		receipts.DELETE("/:receiptId", h.DeleteReceipt)
	}
}
