package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
)

const sampleReceiptText = `GROCERY STORE
123 Main St
Date: 2024-01-15

Milk          $3.99
Bread         $2.49
Eggs          $4.99
Cheese        $5.99

Total Tax         $0.83
TOTAL            $18.29`

func TestParseSampleReceipt(t *testing.T) {
	parser := NewLineParser()

	receipt, err := parser.Parse(sampleReceiptText)
	require.NoError(t, err)

	assert.Equal(t, "GROCERY STORE", receipt.Merchant)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), receipt.Date)

	require.NotNil(t, receipt.Total)
	assert.InDelta(t, 18.29, *receipt.Total, 0.001)

	require.NotNil(t, receipt.Tax)
	assert.InDelta(t, 0.83, *receipt.Tax, 0.001)

	require.Len(t, receipt.Items, 4)
	assert.Equal(t, "Milk", receipt.Items[0].Description)
	assert.Equal(t, 1, receipt.Items[0].Quantity)
	assert.InDelta(t, 3.99, receipt.Items[0].UnitPrice, 0.001)
	assert.Equal(t, "Cheese", receipt.Items[3].Description)

	assert.Equal(t, domain.ConfidenceHigh, receipt.Confidence)
}

func TestParseLabeledTotal(t *testing.T) {
	parser := NewLineParser()

	receipt, err := parser.Parse("TOTAL $18.29")
	require.NoError(t, err)
	require.NotNil(t, receipt.Total)
	assert.InDelta(t, 18.29, *receipt.Total, 0.001)
}

func TestParseLastTotalWins(t *testing.T) {
	parser := NewLineParser()

	text := "Running total $5.00\nMore stuff $2.00\nTOTAL $7.00"
	receipt, err := parser.Parse(text)
	require.NoError(t, err)
	require.NotNil(t, receipt.Total)
	assert.InDelta(t, 7.00, *receipt.Total, 0.001)
}

func TestParseSubtotalAndTax(t *testing.T) {
	parser := NewLineParser()

	text := "CAFE\nSubtotal $10.00\nSales Tax $0.80\nTotal $10.80"
	receipt, err := parser.Parse(text)
	require.NoError(t, err)

	require.NotNil(t, receipt.Subtotal)
	assert.InDelta(t, 10.00, *receipt.Subtotal, 0.001)
	require.NotNil(t, receipt.Tax)
	assert.InDelta(t, 0.80, *receipt.Tax, 0.001)
	require.NotNil(t, receipt.Total)
	assert.InDelta(t, 10.80, *receipt.Total, 0.001)
}

func TestParseNoMoneyTokens(t *testing.T) {
	parser := NewLineParser()

	_, err := parser.Parse("just some words\nnothing numeric here")
	assert.ErrorIs(t, err, ErrUnparsableReceipt)
}

func TestParseEmptyText(t *testing.T) {
	parser := NewLineParser()

	_, err := parser.Parse("")
	assert.ErrorIs(t, err, ErrUnparsableReceipt)
}

func TestParseUnlabeledTotalFallsBackToLastMoney(t *testing.T) {
	parser := NewLineParser()

	text := "CORNER SHOP\nCoffee $2.50\nMuffin $3.25"
	receipt, err := parser.Parse(text)
	require.NoError(t, err)

	require.NotNil(t, receipt.Total)
	assert.InDelta(t, 3.25, *receipt.Total, 0.001)
	assert.Len(t, receipt.Items, 2)
}

func TestParseDateFormats(t *testing.T) {
	parser := NewLineParser()

	tests := []struct {
		name string
		line string
		want time.Time
	}{
		{"iso", "Date: 2024-03-07", time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)},
		{"iso slash", "2024/03/07", time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)},
		{"us slash", "03/07/2024", time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)},
		{"month name", "Mar 7, 2024", time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)},
		{"full month name", "March 7 2024", time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, err := parser.Parse("SHOP\n" + tt.line + "\nTotal $1.00")
			require.NoError(t, err)
			assert.Equal(t, tt.want, receipt.Date)
			assert.Equal(t, domain.ConfidenceHigh, receipt.Confidence)
		})
	}
}

func TestParseLowConfidenceWithoutDate(t *testing.T) {
	parser := NewLineParser()

	receipt, err := parser.Parse("SHOP\nTotal $5.00")
	require.NoError(t, err)
	assert.True(t, receipt.Date.IsZero())
	assert.Equal(t, domain.ConfidenceLow, receipt.Confidence)
}

func TestParseMerchantSkipsMoneyAndDateLines(t *testing.T) {
	parser := NewLineParser()

	text := "2024-01-15\n$4.20\nTHE BAKERY\nTotal $4.20"
	receipt, err := parser.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "THE BAKERY", receipt.Merchant)
}

func TestParseIsIdempotent(t *testing.T) {
	parser := NewLineParser()

	first, err := parser.Parse(sampleReceiptText)
	require.NoError(t, err)
	second, err := parser.Parse(sampleReceiptText)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseMoneyWithThousandsSeparator(t *testing.T) {
	parser := NewLineParser()

	receipt, err := parser.Parse("ELECTRONICS\nTotal $1,234.56")
	require.NoError(t, err)
	require.NotNil(t, receipt.Total)
	assert.InDelta(t, 1234.56, *receipt.Total, 0.001)
}
