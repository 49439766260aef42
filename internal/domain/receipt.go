package domain

import (
	"time"
)

// Confidence indicates how much of the receipt the parser could recover.
// It is "low" when a required field (merchant or date) had to be defaulted.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// ParsedItem represents a single line item recovered from receipt text
type ParsedItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// ParsedReceipt is the structured candidate produced by the parser.
// Monetary fields are pointers because "not found on the receipt" and
// "found with value zero" are different outcomes. A successful parse
// always carries a non-nil Total.
type ParsedReceipt struct {
	Merchant   string       `json:"merchant"`
	Date       time.Time    `json:"date"` // zero value means no date was found
	Items      []ParsedItem `json:"items"`
	Subtotal   *float64     `json:"subtotal"`
	Tax        *float64     `json:"tax"`
	Total      *float64     `json:"total"`
	Category   string       `json:"category"`
	Confidence Confidence   `json:"confidence"`
}

// ReceiptItem represents an item on a stored receipt
type ReceiptItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"qty"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

// Receipt represents a scanned receipt owned by a user
type Receipt struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	Merchant   string        `json:"merchant"`
	Date       time.Time     `json:"date"`
	Total      *float64      `json:"total"`
	Tax        *float64      `json:"tax,omitempty"`
	Subtotal   *float64      `json:"subtotal,omitempty"`
	Items      []ReceiptItem `json:"items"`
	Category   string        `json:"category,omitempty"`
	Confidence Confidence    `json:"confidence"`
	Provenance Provider      `json:"provenance"`
	ImageURL   string        `json:"image_url,omitempty"`
	RawText    string        `json:"raw_text,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ReceiptFilter represents filters for querying receipts
type ReceiptFilter struct {
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	Merchant  string
	Page      int
	Limit     int
}

// Pagination represents pagination metadata
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// PaginatedReceipts represents a paginated list of receipts
type PaginatedReceipts struct {
	Data       []Receipt  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
