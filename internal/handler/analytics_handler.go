package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/rakapradana/receipt-expense-service/internal/service"
)

var validPeriods = map[string]bool{
	"weekly":  true,
	"monthly": true,
	"yearly":  true,
}

// AnalyticsHandler handles HTTP requests for spending analytics
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetSummary handles the GET /analytics endpoint
// @Summary Get spending analytics
// @Description Get spending summary and per-period breakdown for the caller's receipts
// @Tags analytics
// @Accept json
// @Produce json
// @Param period query string false "Aggregation period (weekly, monthly, yearly)" default(monthly)
// @Param startDate query string false "Start date filter (YYYY-MM-DD)"
// @Param endDate query string false "End date filter (YYYY-MM-DD)"
// @Success 200 {object} service.AnalyticsSummary "Spending summary"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/analytics [get]
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	period := c.DefaultQuery("period", "monthly")
	if !validPeriods[period] {
		respondBadRequest(c, ErrInvalidQueryParams,
			newErrorDetail("period", "period must be one of: weekly, monthly, yearly"))
		return
	}

	startDate, endDate, err := parseDateRange(c)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("query", err.Error()))
		return
	}

	summary, err := h.analyticsService.GetSummary(c.Request.Context(), userID, period, startDate, endDate)
	if err != nil {
		respondInternalServerError(c, fmt.Sprintf("Failed to compute analytics: %v", err))
		return
	}

	respondOK(c, summary)
}

// RegisterRoutes registers the API routes for the analytics handler
func (h *AnalyticsHandler) RegisterRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/v1")
	api.GET("/analytics", authMiddleware, h.GetSummary)
}
