package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
)

func moneyValue(v float64) *float64 {
	return &v
}

func TestGetSummarySpentThisMonth(t *testing.T) {
	repo := newMockReceiptRepository()
	repo.receipts["r-1"] = &domain.Receipt{
		ID: "r-1", UserID: "owner", Total: moneyValue(10),
		Date: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	}
	repo.receipts["r-2"] = &domain.Receipt{
		ID: "r-2", UserID: "owner", Total: moneyValue(25),
		Date: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
	}
	repo.receipts["r-3"] = &domain.Receipt{
		ID: "r-3", UserID: "other-user", Total: moneyValue(99),
		Date: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	}

	svc := NewAnalyticsService(repo)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}

	summary, err := svc.GetSummary(context.Background(), "owner", "monthly", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ReceiptCount)
	assert.InDelta(t, 35, summary.TotalSpent, 0.001)
	assert.InDelta(t, 10, summary.SpentThisPeriod, 0.001)
	assert.Equal(t, "monthly", summary.Period)

	require.Len(t, summary.ByPeriod, 2)
	assert.Equal(t, "2024-05", summary.ByPeriod[0].Period)
	assert.Equal(t, "2024-06", summary.ByPeriod[1].Period)
}

func TestGetSummaryEmpty(t *testing.T) {
	repo := newMockReceiptRepository()
	svc := NewAnalyticsService(repo)

	summary, err := svc.GetSummary(context.Background(), "owner", "monthly", nil, nil)
	require.NoError(t, err)

	assert.Zero(t, summary.ReceiptCount)
	assert.Zero(t, summary.TotalSpent)
	assert.Empty(t, summary.ByPeriod)
}

func TestCurrentPeriodWeeklyStartsOnMonday(t *testing.T) {
	// 2024-06-13 is a Thursday; the containing week starts Monday 2024-06-10
	now := time.Date(2024, 6, 13, 15, 0, 0, 0, time.UTC)
	period := currentPeriod(now, "weekly")

	require.NotNil(t, period.Start)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), *period.Start)
	require.NotNil(t, period.End)
	assert.Equal(t, now, *period.End)
}

func TestCurrentPeriodYearly(t *testing.T) {
	now := time.Date(2024, 6, 13, 15, 0, 0, 0, time.UTC)
	period := currentPeriod(now, "yearly")

	require.NotNil(t, period.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *period.Start)
}
