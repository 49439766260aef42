package parser

import (
	"errors"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
)

// ErrUnparsableReceipt is returned when no non-negative numeric value that
// can serve as a total is locatable anywhere in the text. A zero total is a
// valid receipt outcome (e.g. fully refunded) and must not be confused with
// this failure.
var ErrUnparsableReceipt = errors.New("unable to extract a total from receipt text")

// Parser converts raw extracted text into a structured receipt candidate.
// The heuristics are inherently approximate; keeping them behind this
// interface lets a stricter or model-assisted parser be substituted without
// touching the ingestion workflow.
type Parser interface {
	Parse(text string) (*domain.ParsedReceipt, error)
}
