package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
	"github.com/rakapradana/receipt-expense-service/internal/imageutil"
)

// receiptScanPrompt is the fixed instruction sent with every receipt image
const receiptScanPrompt = `Analyze this receipt image and extract all the text content. Please provide:
1. Store name and address
2. Date and time
3. All items with prices
4. Subtotal, tax, and total amounts
5. Payment method if visible

Please format the output as structured text that clearly shows all the information from the receipt.`

// GeminiProvider implements Provider using Google Gemini
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider creates a new Gemini-backed extraction provider.
// It returns ErrProviderUnavailable when no API key is configured; the
// caller is expected to detect this once at startup and route extraction
// to the fallback provider for the process lifetime.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, ErrProviderUnavailable
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Name returns the provenance tag for this provider
func (p *GeminiProvider) Name() domain.Provider {
	return domain.ProviderAI
}

// Extract sends the image and the scan prompt to Gemini and returns the
// model's text response trimmed of surrounding whitespace. An empty
// response after trimming is a valid empty result, not an error.
func (p *GeminiProvider) Extract(ctx context.Context, image domain.UploadedImage) (string, error) {
	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = MimeTypeForFilename(image.Filename)
	}

	// Downscale large photos before shipping them to the model
	imageData, err := imageutil.Downscale(image.Content, nil)
	if err != nil {
		// Not all accepted formats decode locally (gif, webp); send as-is
		imageData = image.Content
	}

	parts := []genai.Part{
		genai.Text(receiptScanPrompt),
		genai.ImageData(imageFormat(mimeType), imageData),
	}

	resp, err := p.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &ExtractionError{Op: "generate_content", Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &ExtractionError{Op: "read_candidates", Err: fmt.Errorf("no response from gemini")}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	return strings.TrimSpace(text.String()), nil
}

// Close closes the underlying Gemini client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}
