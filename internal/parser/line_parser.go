package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
)

// moneyPattern matches currency-like tokens: a currency symbol followed by a
// number, or a bare number with a two-digit decimal part
var moneyPattern = regexp.MustCompile(`[$€£]\s*\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\d{1,3}(?:,\d{3})*\.\d{2}\b`)

// datePatterns are tried in order on each line; the first match in the text wins
var datePatterns = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{
		re:      regexp.MustCompile(`\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`),
		layouts: []string{"2006-1-2", "2006/1/2"},
	},
	{
		re:      regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{4}\b`),
		layouts: []string{"1/2/2006", "1-2-2006"},
	},
	{
		re:      regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
		layouts: []string{"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006"},
	},
}

// LineParser is the heuristic, line-oriented receipt parser. It is a pure
// function of its input: parsing the same text twice yields structurally
// equal results.
type LineParser struct{}

// NewLineParser creates the default heuristic parser
func NewLineParser() *LineParser {
	return &LineParser{}
}

// Parse scans the text line by line for labeled amounts, item lines, a
// merchant name and a date. It fails with ErrUnparsableReceipt only when no
// money-like value usable as a total appears anywhere.
func (p *LineParser) Parse(text string) (*domain.ParsedReceipt, error) {
	receipt := &domain.ParsedReceipt{
		Items: []domain.ParsedItem{},
	}

	var lastMoney *float64

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		// Merchant: first non-empty line that is neither a money line nor a date
		if receipt.Merchant == "" && !moneyPattern.MatchString(line) && !looksLikeDate(line) {
			receipt.Merchant = line
		}

		// Date: first date-like token anywhere wins
		if receipt.Date.IsZero() {
			if d, ok := findDate(line); ok {
				receipt.Date = d
			}
		}

		tokens := moneyPattern.FindAllString(line, -1)
		if len(tokens) == 0 {
			continue
		}

		// The last money token on a line is taken as the line's value
		// (running amounts may precede it)
		value, ok := parseMoney(tokens[len(tokens)-1])
		if !ok {
			continue
		}
		lastMoney = &value

		label := strings.ToLower(line)
		switch {
		case strings.Contains(label, "subtotal"):
			receipt.Subtotal = ptr(value)
		case strings.Contains(label, "tax"):
			receipt.Tax = ptr(value)
		case strings.Contains(label, "total"):
			// Running totals appear before the final total in receipt
			// layouts, so the last occurrence wins.
			receipt.Total = ptr(value)
		default:
			// Item line: leading description, trailing money value. Quantity
			// is not reliably present in free-form OCR text; default to 1.
			desc := strings.TrimSpace(line[:strings.Index(line, tokens[0])])
			desc = strings.TrimRight(desc, " .:-")
			if desc != "" && !looksLikeDate(desc) {
				receipt.Items = append(receipt.Items, domain.ParsedItem{
					Description: desc,
					Quantity:    1,
					UnitPrice:   value,
				})
			}
		}
	}

	// No labeled total: fall back to the last money-like value seen. Only
	// when no such value exists at all is the text unparsable.
	if receipt.Total == nil {
		if lastMoney == nil {
			return nil, ErrUnparsableReceipt
		}
		receipt.Total = lastMoney
	}

	if receipt.Merchant != "" && !receipt.Date.IsZero() {
		receipt.Confidence = domain.ConfidenceHigh
	} else {
		receipt.Confidence = domain.ConfidenceLow
	}

	return receipt, nil
}

// parseMoney converts a money token to a float value
func parseMoney(token string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(token)
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// findDate looks for a date-like token in a line
func findDate(line string) (time.Time, bool) {
	for _, pattern := range datePatterns {
		match := pattern.re.FindString(line)
		if match == "" {
			continue
		}
		normalized := strings.Join(strings.Fields(match), " ")
		for _, layout := range pattern.layouts {
			if d, err := time.Parse(layout, normalized); err == nil {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// looksLikeDate reports whether the line is dominated by a date token
func looksLikeDate(line string) bool {
	for _, pattern := range datePatterns {
		if pattern.re.MatchString(line) {
			return true
		}
	}
	return false
}

func ptr(v float64) *float64 {
	return &v
}
