package ocr

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
)

// Common errors
var (
	// ErrProviderUnavailable is returned at construction time when a provider
	// cannot be used at all (e.g. missing credentials). It is never surfaced
	// per-request; the coordinator simply routes around the provider.
	ErrProviderUnavailable = errors.New("extraction provider unavailable")

	// ErrExtractionFailed means the fallback provider itself failed. That is a
	// contract violation and the only error ExtractText can return.
	ErrExtractionFailed = errors.New("extraction failed")
)

// ExtractionError represents a transient fault from an extraction provider
type ExtractionError struct {
	Op  string // Operation that caused the error
	Err error  // Original error
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return "extraction error: " + e.Op
	}
	return "extraction error: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Provider is one strategy for turning a receipt image into raw text.
// The set of implementations is deliberately closed: the Gemini-backed
// provider and the deterministic fallback. Adding a third strategy should
// be an explicit, reviewed change.
type Provider interface {
	// Name returns the provenance tag recorded on extraction results
	Name() domain.Provider

	// Extract turns an uploaded image into raw receipt text. An empty string
	// is a valid result (an unreadable but well-formed response).
	Extract(ctx context.Context, image domain.UploadedImage) (string, error)
}

// mimeTypes maps file extensions to image MIME types
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MimeTypeForFilename derives the image MIME type from a file extension.
// Unrecognized extensions default to image/jpeg.
func MimeTypeForFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "image/jpeg"
}

// imageFormat converts a MIME type to the bare format suffix expected by
// the genai SDK (e.g. "image/png" -> "png")
func imageFormat(mimeType string) string {
	return strings.TrimPrefix(mimeType, "image/")
}
