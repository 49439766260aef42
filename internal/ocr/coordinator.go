package ocr

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
)

// Coordinator owns provider selection and the degrade-on-failure policy.
// Availability of the pipeline must not depend on third-party AI uptime:
// any failure of the AI provider is absorbed here and only observable
// through the provenance tag on the result and logged diagnostics.
type Coordinator struct {
	ai       Provider // nil when never configured
	fallback Provider
	timeout  time.Duration
}

// NewCoordinator creates a coordinator. ai may be nil, in which case every
// extraction goes straight to the fallback provider.
func NewCoordinator(ai Provider, fallback Provider, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Coordinator{
		ai:       ai,
		fallback: fallback,
		timeout:  timeout,
	}
}

// ExtractText turns an uploaded image into raw receipt text. It never fails
// for a well-formed image unless the fallback provider itself breaks, in
// which case ErrExtractionFailed is returned.
func (c *Coordinator) ExtractText(ctx context.Context, image domain.UploadedImage) (domain.ExtractionResult, error) {
	if c.ai != nil {
		// Bound the AI call; an unbounded hang is worse than degraded output
		aiCtx, cancel := context.WithTimeout(ctx, c.timeout)
		text, err := c.ai.Extract(aiCtx, image)
		cancel()
		if err == nil {
			return domain.ExtractionResult{Text: text, Provider: c.ai.Name()}, nil
		}
		log.Printf("AI extraction failed, falling back to %s provider: %v", c.fallback.Name(), err)
	}

	text, err := c.fallback.Extract(ctx, image)
	if err != nil {
		// The fallback must not fail; treat this as a defect
		return domain.ExtractionResult{}, fmt.Errorf("%w: fallback provider: %v", ErrExtractionFailed, err)
	}

	return domain.ExtractionResult{Text: text, Provider: c.fallback.Name()}, nil
}
