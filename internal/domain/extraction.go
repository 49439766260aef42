package domain

// Provider identifies which extraction strategy produced a result
type Provider string

const (
	ProviderAI       Provider = "ai"
	ProviderFallback Provider = "fallback"
)

// UploadedImage is the transient value handed to the extraction pipeline.
// It is consumed once and never persisted.
type UploadedImage struct {
	Content  []byte
	MimeType string
	Filename string
	Size     int64
}

// ExtractionResult carries the raw text recovered from an image together
// with the provenance of the provider that produced it
type ExtractionResult struct {
	Text     string
	Provider Provider
}
