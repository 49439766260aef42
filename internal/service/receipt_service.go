package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
	"github.com/rakapradana/receipt-expense-service/internal/ocr"
	"github.com/rakapradana/receipt-expense-service/internal/parser"
	"github.com/rakapradana/receipt-expense-service/internal/repository"
)

// ErrInvalidUpload is returned when an upload violates the accepted image
// type or size constraints. It is raised before any extraction work.
var ErrInvalidUpload = errors.New("invalid upload")

// ReceiptServiceError represents an error in the receipt service
type ReceiptServiceError struct {
	Op  string
	Err error
}

func (e *ReceiptServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap returns the underlying error
func (e *ReceiptServiceError) Unwrap() error {
	return e.Err
}

// TextExtractor turns an uploaded image into raw receipt text. Satisfied by
// ocr.Coordinator.
type TextExtractor interface {
	ExtractText(ctx context.Context, image domain.UploadedImage) (domain.ExtractionResult, error)
}

// ImageUploader stores the original receipt image and returns a reference
// URL. Satisfied by storage.S3Uploader.
type ImageUploader interface {
	UploadImage(imageData []byte, filename, contentType string) (string, error)
}

// ReceiptService defines the interface for receipt-related business logic
type ReceiptService interface {
	// Ingest runs the full pipeline: validate the upload, extract text,
	// parse it, promote the result to an owned receipt and persist it.
	Ingest(ctx context.Context, upload domain.UploadedImage, userID string) (*domain.Receipt, error)

	// CRUD operations
	CreateReceipt(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error)
	GetReceiptByID(ctx context.Context, userID, receiptID string) (*domain.Receipt, error)
	UpdateReceipt(ctx context.Context, userID string, receipt *domain.Receipt) (*domain.Receipt, error)
	DeleteReceipt(ctx context.Context, userID, receiptID string) error
	ListReceipts(ctx context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error)
}

// ReceiptServiceImpl implements the ReceiptService interface
type ReceiptServiceImpl struct {
	repository         repository.ReceiptRepository
	extractor          TextExtractor
	parser             parser.Parser
	uploader           ImageUploader // nil when image storage is not configured
	maxUploadSizeBytes int64
	acceptedImageTypes map[string]bool
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(repo repository.ReceiptRepository, extractor TextExtractor, receiptParser parser.Parser, uploader ImageUploader, maxUploadSizeBytes int64, acceptedImageTypes []string) ReceiptService {
	accepted := make(map[string]bool, len(acceptedImageTypes))
	for _, t := range acceptedImageTypes {
		accepted[strings.ToLower(t)] = true
	}

	return &ReceiptServiceImpl{
		repository:         repo,
		extractor:          extractor,
		parser:             receiptParser,
		uploader:           uploader,
		maxUploadSizeBytes: maxUploadSizeBytes,
		acceptedImageTypes: accepted,
	}
}

// Ingest processes an uploaded receipt image end to end
func (s *ReceiptServiceImpl) Ingest(ctx context.Context, upload domain.UploadedImage, userID string) (*domain.Receipt, error) {
	// Validate upload constraints before any extraction work
	if err := s.validateUpload(upload); err != nil {
		return nil, err
	}

	// Extract raw text; provider failures are absorbed by the coordinator
	extraction, err := s.extractor.ExtractText(ctx, upload)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "extract_text",
			Err: err,
		}
	}

	// Parse the raw text into a structured candidate
	parsed, err := s.parser.Parse(extraction.Text)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "parse_receipt",
			Err: err,
		}
	}

	// Do not persist on a cancelled request
	if err := ctx.Err(); err != nil {
		return nil, &ReceiptServiceError{
			Op:  "check_cancellation",
			Err: err,
		}
	}

	receipt := s.promote(parsed, extraction, userID)

	// Store the original image when storage is configured; the image
	// reference is optional and must not block ingestion
	if s.uploader != nil {
		filename := fmt.Sprintf("receipt_%s%s", receipt.ID, fileExt(upload.Filename))
		imageURL, uploadErr := s.uploader.UploadImage(upload.Content, filename, upload.MimeType)
		if uploadErr != nil {
			log.Printf("Failed to store receipt image %s: %v", filename, uploadErr)
		} else {
			receipt.ImageURL = imageURL
		}
	}

	storedReceipt, err := s.repository.CreateReceipt(ctx, receipt)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "store_receipt",
			Err: err,
		}
	}

	return storedReceipt, nil
}

// validateUpload enforces the accepted image set and the size ceiling
func (s *ReceiptServiceImpl) validateUpload(upload domain.UploadedImage) error {
	mimeType := strings.ToLower(upload.MimeType)
	if mimeType == "" {
		mimeType = ocr.MimeTypeForFilename(upload.Filename)
	}

	if !s.acceptedImageTypes[mimeType] {
		return &ReceiptServiceError{
			Op:  "validate_upload",
			Err: fmt.Errorf("%w: unsupported image type %q", ErrInvalidUpload, upload.MimeType),
		}
	}

	if upload.Size > s.maxUploadSizeBytes {
		return &ReceiptServiceError{
			Op:  "validate_upload",
			Err: fmt.Errorf("%w: file size %d exceeds limit of %d bytes", ErrInvalidUpload, upload.Size, s.maxUploadSizeBytes),
		}
	}

	return nil
}

// promote turns a parsed candidate into an owned, identified receipt.
// This is the only place identity, ownership and timestamps are assigned.
func (s *ReceiptServiceImpl) promote(parsed *domain.ParsedReceipt, extraction domain.ExtractionResult, userID string) *domain.Receipt {
	now := time.Now()

	receipt := &domain.Receipt{
		ID:         uuid.NewString(),
		UserID:     userID,
		Merchant:   parsed.Merchant,
		Date:       parsed.Date,
		Total:      parsed.Total,
		Tax:        parsed.Tax,
		Subtotal:   parsed.Subtotal,
		Items:      make([]domain.ReceiptItem, 0, len(parsed.Items)),
		Category:   parsed.Category,
		Confidence: parsed.Confidence,
		Provenance: extraction.Provider,
		RawText:    extraction.Text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	for _, item := range parsed.Items {
		receipt.Items = append(receipt.Items, domain.ReceiptItem{
			Name:     item.Description,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
			Category: inferCategory(item.Description),
		})
	}

	// The parser leaves classification to the workflow
	if receipt.Category == "" {
		receipt.Category = inferCategory(parsed.Merchant)
	}

	return receipt
}

// inferCategory maps descriptions to categories using keywords
func inferCategory(description string) string {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "grocery") || strings.Contains(desc, "market") || strings.Contains(desc, "supermarket"):
		return "Groceries"
	case strings.Contains(desc, "taxi") || strings.Contains(desc, "uber") || strings.Contains(desc, "grab"):
		return "Transport"
	case strings.Contains(desc, "flight") || strings.Contains(desc, "airfare"):
		return "Travel"
	case strings.Contains(desc, "hotel") || strings.Contains(desc, "inn"):
		return "Accommodation"
	case strings.Contains(desc, "meal") || strings.Contains(desc, "food") || strings.Contains(desc, "restaurant") || strings.Contains(desc, "cafe"):
		return "Food"
	case strings.Contains(desc, "pharmacy") || strings.Contains(desc, "drug"):
		return "Health"
	case strings.Contains(desc, "office") || strings.Contains(desc, "stationery"):
		return "Office Supplies"
	default:
		return "Other"
	}
}

// CreateReceipt saves a manually entered receipt
func (s *ReceiptServiceImpl) CreateReceipt(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	now := time.Now()
	receipt.ID = uuid.NewString()
	receipt.CreatedAt = now
	receipt.UpdatedAt = now
	if receipt.Confidence == "" {
		receipt.Confidence = domain.ConfidenceHigh
	}

	storedReceipt, err := s.repository.CreateReceipt(ctx, receipt)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "create_receipt",
			Err: err,
		}
	}

	return storedReceipt, nil
}

// GetReceiptByID retrieves a receipt, enforcing ownership
func (s *ReceiptServiceImpl) GetReceiptByID(ctx context.Context, userID, receiptID string) (*domain.Receipt, error) {
	receipt, err := s.repository.GetReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "get_receipt",
			Err: err,
		}
	}
	if receipt.UserID != userID {
		// Do not reveal the existence of another user's receipt
		return nil, &ReceiptServiceError{
			Op:  "get_receipt",
			Err: fmt.Errorf("receipt %s: %w", receiptID, repository.ErrNotFound),
		}
	}
	return receipt, nil
}

// UpdateReceipt updates an existing receipt, enforcing ownership
func (s *ReceiptServiceImpl) UpdateReceipt(ctx context.Context, userID string, receipt *domain.Receipt) (*domain.Receipt, error) {
	existing, err := s.GetReceiptByID(ctx, userID, receipt.ID)
	if err != nil {
		return nil, err
	}

	// Immutable fields survive the update
	receipt.UserID = existing.UserID
	receipt.Provenance = existing.Provenance
	receipt.RawText = existing.RawText
	receipt.ImageURL = existing.ImageURL
	receipt.CreatedAt = existing.CreatedAt
	receipt.UpdatedAt = time.Now()
	if receipt.Confidence == "" {
		receipt.Confidence = existing.Confidence
	}

	updatedReceipt, err := s.repository.UpdateReceipt(ctx, receipt)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "update_receipt",
			Err: err,
		}
	}

	return updatedReceipt, nil
}

// DeleteReceipt deletes a receipt, enforcing ownership
func (s *ReceiptServiceImpl) DeleteReceipt(ctx context.Context, userID, receiptID string) error {
	if _, err := s.GetReceiptByID(ctx, userID, receiptID); err != nil {
		return err
	}

	if err := s.repository.DeleteReceipt(ctx, receiptID); err != nil {
		return &ReceiptServiceError{
			Op:  "delete_receipt",
			Err: err,
		}
	}
	return nil
}

// ListReceipts retrieves an owner-scoped, paginated list of receipts
func (s *ReceiptServiceImpl) ListReceipts(ctx context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error) {
	receipts, err := s.repository.ListReceipts(ctx, filter)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "list_receipts",
			Err: err,
		}
	}
	return receipts, nil
}

// fileExt returns a sanitized file extension for stored images
func fileExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
