package analytics

import (
	"sort"
	"time"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
)

// Period bounds the "spent this period" figure in a summary. Nil bounds are
// open-ended.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// Summary holds derived statistics over a set of receipts
type Summary struct {
	TotalSpent        float64        `json:"totalSpent"`
	ReceiptCount      int            `json:"receiptCount"`
	AveragePerReceipt float64        `json:"averagePerReceipt"`
	SpentThisPeriod   float64        `json:"spentThisPeriod"`
	Highest           float64        `json:"highest"`
	CountByCategory   map[string]int `json:"countByCategory"`
}

// PeriodAmount represents spending grouped into one time bucket
type PeriodAmount struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// Summarize computes derived statistics over an already-fetched collection
// of receipts. It performs no I/O and never fails; an empty input yields a
// zeroed summary with an empty category breakdown.
//
// A receipt with an absent total contributes 0 to the sums. It is excluded
// from the average's denominator only when every monetary field is absent;
// a receipt with total 0 (e.g. fully refunded) legitimately counts.
func Summarize(receipts []domain.Receipt, period *Period) Summary {
	summary := Summary{
		CountByCategory: map[string]int{},
	}

	denominator := 0
	for _, receipt := range receipts {
		summary.ReceiptCount++

		total := 0.0
		if receipt.Total != nil {
			total = *receipt.Total
		}
		summary.TotalSpent += total

		if receipt.Total != nil || receipt.Tax != nil || receipt.Subtotal != nil {
			denominator++
		}

		if total > summary.Highest {
			summary.Highest = total
		}

		category := receipt.Category
		if category == "" {
			category = "Uncategorized"
		}
		summary.CountByCategory[category]++

		if inPeriod(receipt.Date, period) {
			summary.SpentThisPeriod += total
		}
	}

	if denominator > 0 {
		summary.AveragePerReceipt = summary.TotalSpent / float64(denominator)
	}

	return summary
}

// GroupByPeriod buckets receipt spending by week, month or year. Bucket keys
// are returned in ascending order.
func GroupByPeriod(receipts []domain.Receipt, periodType string) []PeriodAmount {
	buckets := map[string]*PeriodAmount{}

	for _, receipt := range receipts {
		if receipt.Date.IsZero() {
			continue
		}

		total := 0.0
		if receipt.Total != nil {
			total = *receipt.Total
		}

		key := periodKey(receipt.Date, periodType)
		if _, ok := buckets[key]; !ok {
			buckets[key] = &PeriodAmount{Period: key}
		}
		buckets[key].Amount += total
		buckets[key].Count++
	}

	result := make([]PeriodAmount, 0, len(buckets))
	for _, bucket := range buckets {
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Period < result[j].Period
	})

	return result
}

// periodKey returns the grouping key for a date
func periodKey(date time.Time, periodType string) string {
	switch periodType {
	case "weekly":
		year, week := date.ISOWeek()
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, (week-1)*7).Format("2006-01-02")
	case "yearly":
		return date.Format("2006")
	default: // monthly
		return date.Format("2006-01")
	}
}

// inPeriod reports whether a date falls within the period bounds
func inPeriod(date time.Time, period *Period) bool {
	if period == nil {
		return true
	}
	if date.IsZero() {
		return false
	}
	if period.Start != nil && date.Before(*period.Start) {
		return false
	}
	if period.End != nil && date.After(*period.End) {
		return false
	}
	return true
}
