package service

import (
	"context"
	"time"

	"github.com/rakapradana/receipt-expense-service/internal/analytics"
	"github.com/rakapradana/receipt-expense-service/internal/repository"
)

// AnalyticsSummary is the result of an analytics query: overall statistics
// plus a per-period breakdown
type AnalyticsSummary struct {
	analytics.Summary
	Period   string                   `json:"period"`
	ByPeriod []analytics.PeriodAmount `json:"byPeriod"`
}

// AnalyticsService computes spending statistics over a user's receipts
type AnalyticsService interface {
	GetSummary(ctx context.Context, userID, periodType string, startDate, endDate *time.Time) (*AnalyticsSummary, error)
}

// AnalyticsServiceImpl implements AnalyticsService. The aggregation itself
// is pure; this layer only fetches the owner's receipts.
type AnalyticsServiceImpl struct {
	repository repository.ReceiptRepository
	now        func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(repo repository.ReceiptRepository) *AnalyticsServiceImpl {
	return &AnalyticsServiceImpl{
		repository: repo,
		now:        time.Now,
	}
}

// GetSummary fetches the user's receipts and aggregates them
func (s *AnalyticsServiceImpl) GetSummary(ctx context.Context, userID, periodType string, startDate, endDate *time.Time) (*AnalyticsSummary, error) {
	receipts, err := s.repository.GetReceiptsByOwner(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "fetch_receipts_for_analytics",
			Err: err,
		}
	}

	current := currentPeriod(s.now(), periodType)
	summary := analytics.Summarize(receipts, current)

	return &AnalyticsSummary{
		Summary:  summary,
		Period:   periodType,
		ByPeriod: analytics.GroupByPeriod(receipts, periodType),
	}, nil
}

// currentPeriod returns the bounds of the period containing now
func currentPeriod(now time.Time, periodType string) *analytics.Period {
	var start time.Time
	switch periodType {
	case "weekly":
		// Walk back to Monday
		offset := (int(now.Weekday()) + 6) % 7
		start = time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
	case "yearly":
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default: // monthly
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	return &analytics.Period{Start: &start, End: &now}
}
