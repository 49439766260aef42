package ocr

import (
	"context"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
)

// fallbackText is the deterministic receipt template returned when the AI
// provider is unavailable. It is intentionally well-formed: the parser must
// always succeed on it, which is what keeps the pipeline usable offline.
const fallbackText = `GROCERY STORE
123 Main St
City, State 12345

Date: 2024-01-15

ITEMS:
Milk 2%           $3.99
Bread Wheat       $2.49
Bananas          $1.99
Chicken Breast   $8.99
Total Tax         $0.83
TOTAL            $18.29

Thank you for shopping!`

// FallbackProvider is the deterministic extraction provider used when the
// AI provider is unconfigured or fails. It performs no I/O and never fails.
type FallbackProvider struct{}

// NewFallbackProvider creates the fallback provider
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

// Name returns the provenance tag for this provider
func (p *FallbackProvider) Name() domain.Provider {
	return domain.ProviderFallback
}

// Extract returns the fixed receipt template
func (p *FallbackProvider) Extract(_ context.Context, _ domain.UploadedImage) (string, error) {
	return fallbackText, nil
}
