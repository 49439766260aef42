package handler

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
	"github.com/rakapradana/receipt-expense-service/internal/model"
)

// currentUserID retrieves the authenticated user ID placed in the context
// by the auth middleware
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// getPathParam retrieves a path parameter and validates it's not empty
func getPathParam(c *gin.Context, paramName string) (string, error) {
	value := c.Param(paramName)
	if value == "" {
		return "", fmt.Errorf("%s is required", paramName)
	}
	return value, nil
}

// getFormFile retrieves a file from multipart form data
func getFormFile(c *gin.Context, fieldName string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(fieldName)
	if err != nil {
		return nil, nil, fmt.Errorf("no %s provided", fieldName)
	}
	return file, header, nil
}

// bindJSON binds a JSON request body to a struct
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return fmt.Errorf("invalid JSON format: %v", err)
	}
	return nil
}

// parseReceiptFilter extracts filtering parameters from the request
func parseReceiptFilter(c *gin.Context, userID string) (domain.ReceiptFilter, error) {
	filter := domain.ReceiptFilter{UserID: userID}

	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return filter, fmt.Errorf("invalid page number")
	}
	filter.Page = page

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		return filter, fmt.Errorf("invalid limit")
	}
	if limit > 100 {
		limit = 100
	}
	filter.Limit = limit

	if startDateStr := c.Query("startDate"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return filter, fmt.Errorf("invalid startDate format (use YYYY-MM-DD)")
		}
		filter.StartDate = &startDate
	}

	if endDateStr := c.Query("endDate"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return filter, fmt.Errorf("invalid endDate format (use YYYY-MM-DD)")
		}
		filter.EndDate = &endDate
	}

	filter.Merchant = c.Query("merchant")

	return filter, nil
}

// parseDateRange extracts optional date range parameters from the request
func parseDateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time

	if startDateStr := c.Query("startDate"); startDateStr != "" {
		t, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid startDate format (use YYYY-MM-DD)")
		}
		startDate = &t
	}

	if endDateStr := c.Query("endDate"); endDateStr != "" {
		t, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid endDate format (use YYYY-MM-DD)")
		}
		endDate = &t
	}

	return startDate, endDate, nil
}

// formatMoney formats an optional monetary value; absent values render empty
func formatMoney(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

// formatDate formats a date, rendering unknown dates as empty
func formatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format("2006-01-02")
}

// formatReceiptResponse formats a receipt for response
func formatReceiptResponse(receipt *domain.Receipt) model.ReceiptResponse {
	items := make([]model.ReceiptItemResponse, len(receipt.Items))
	for i, item := range receipt.Items {
		items[i] = model.ReceiptItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Qty:      item.Quantity,
			Price:    fmt.Sprintf("%.2f", item.Price),
			Category: item.Category,
		}
	}

	return model.ReceiptResponse{
		ID:         receipt.ID,
		Merchant:   receipt.Merchant,
		Date:       formatDate(receipt.Date),
		Total:      formatMoney(receipt.Total),
		Tax:        formatMoney(receipt.Tax),
		Subtotal:   formatMoney(receipt.Subtotal),
		Items:      items,
		Category:   receipt.Category,
		Confidence: string(receipt.Confidence),
		Provenance: string(receipt.Provenance),
		ImageURL:   receipt.ImageURL,
		Notes:      receipt.Notes,
		CreatedAt:  receipt.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  receipt.UpdatedAt.Format(time.RFC3339),
	}
}

// formatReceiptsResponse formats a slice of receipts for response
func formatReceiptsResponse(receipts []domain.Receipt) []model.ReceiptResponse {
	formatted := make([]model.ReceiptResponse, len(receipts))
	for i := range receipts {
		formatted[i] = formatReceiptResponse(&receipts[i])
	}
	return formatted
}
