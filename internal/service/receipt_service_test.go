package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
	"github.com/rakapradana/receipt-expense-service/internal/ocr"
	"github.com/rakapradana/receipt-expense-service/internal/parser"
	"github.com/rakapradana/receipt-expense-service/internal/repository"
)

// mockReceiptRepository records calls and serves canned receipts
type mockReceiptRepository struct {
	receipts    map[string]*domain.Receipt
	createCalls int
	deleteCalls int
}

func newMockReceiptRepository() *mockReceiptRepository {
	return &mockReceiptRepository{receipts: map[string]*domain.Receipt{}}
}

func (m *mockReceiptRepository) CreateReceipt(_ context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	m.createCalls++
	m.receipts[receipt.ID] = receipt
	return receipt, nil
}

func (m *mockReceiptRepository) GetReceiptByID(_ context.Context, receiptID string) (*domain.Receipt, error) {
	receipt, ok := m.receipts[receiptID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return receipt, nil
}

func (m *mockReceiptRepository) UpdateReceipt(_ context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	if _, ok := m.receipts[receipt.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	m.receipts[receipt.ID] = receipt
	return receipt, nil
}

func (m *mockReceiptRepository) DeleteReceipt(_ context.Context, receiptID string) error {
	m.deleteCalls++
	if _, ok := m.receipts[receiptID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.receipts, receiptID)
	return nil
}

func (m *mockReceiptRepository) ListReceipts(_ context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error) {
	var matched []domain.Receipt
	for _, receipt := range m.receipts {
		if receipt.UserID == filter.UserID {
			matched = append(matched, *receipt)
		}
	}
	return &domain.PaginatedReceipts{
		Data: matched,
		Pagination: domain.Pagination{
			TotalItems:  len(matched),
			TotalPages:  1,
			CurrentPage: filter.Page,
			Limit:       filter.Limit,
		},
	}, nil
}

func (m *mockReceiptRepository) GetReceiptsByOwner(_ context.Context, userID string, _, _ *time.Time) ([]domain.Receipt, error) {
	var matched []domain.Receipt
	for _, receipt := range m.receipts {
		if receipt.UserID == userID {
			matched = append(matched, *receipt)
		}
	}
	return matched, nil
}

// stubExtractor returns a fixed extraction result and counts calls
type stubExtractor struct {
	result domain.ExtractionResult
	err    error
	calls  int
}

func (s *stubExtractor) ExtractText(_ context.Context, _ domain.UploadedImage) (domain.ExtractionResult, error) {
	s.calls++
	return s.result, s.err
}

// stubUploader records uploads
type stubUploader struct {
	url   string
	err   error
	calls int
}

func (s *stubUploader) UploadImage(_ []byte, filename, _ string) (string, error) {
	s.calls++
	return s.url, s.err
}

const fallbackReceiptText = `GROCERY STORE
123 Main St

Date: 2024-01-15

Milk 2%           $3.99
Bread Wheat       $2.49
Total Tax         $0.83
TOTAL            $18.29`

func validUpload() domain.UploadedImage {
	return domain.UploadedImage{
		Content:  make([]byte, 2048),
		MimeType: "image/jpeg",
		Filename: "receipt.jpg",
		Size:     2048,
	}
}

func newTestService(repo repository.ReceiptRepository, extractor TextExtractor, uploader ImageUploader) ReceiptService {
	return NewReceiptService(
		repo,
		extractor,
		parser.NewLineParser(),
		uploader,
		10*1024*1024,
		[]string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	)
}

func TestIngestFallbackPipeline(t *testing.T) {
	repo := newMockReceiptRepository()
	extractor := &stubExtractor{
		result: domain.ExtractionResult{Text: fallbackReceiptText, Provider: domain.ProviderFallback},
	}
	svc := newTestService(repo, extractor, nil)

	receipt, err := svc.Ingest(context.Background(), validUpload(), "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, "user-1", receipt.UserID)
	assert.Equal(t, "GROCERY STORE", receipt.Merchant)
	assert.Equal(t, domain.ProviderFallback, receipt.Provenance)
	assert.Equal(t, domain.ConfidenceHigh, receipt.Confidence)
	assert.Equal(t, fallbackReceiptText, receipt.RawText)

	require.NotNil(t, receipt.Total)
	assert.InDelta(t, 18.29, *receipt.Total, 0.001)
	require.NotNil(t, receipt.Tax)
	assert.InDelta(t, 0.83, *receipt.Tax, 0.001)

	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "Milk 2%", receipt.Items[0].Name)

	assert.Equal(t, "Groceries", receipt.Category)
	assert.Equal(t, 1, repo.createCalls)
	assert.False(t, receipt.CreatedAt.IsZero())
}

// timingOutProvider simulates an AI provider that hangs until its context
// deadline fires
type timingOutProvider struct{}

func (p *timingOutProvider) Name() domain.Provider {
	return domain.ProviderAI
}

func (p *timingOutProvider) Extract(ctx context.Context, _ domain.UploadedImage) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestIngestEndToEndAITimeout(t *testing.T) {
	repo := newMockReceiptRepository()
	coordinator := ocr.NewCoordinator(&timingOutProvider{}, ocr.NewFallbackProvider(), 10*time.Millisecond)
	svc := newTestService(repo, coordinator, nil)

	receipt, err := svc.Ingest(context.Background(), validUpload(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderFallback, receipt.Provenance)
	assert.Equal(t, "GROCERY STORE", receipt.Merchant)
	assert.Equal(t, domain.ConfidenceHigh, receipt.Confidence)
	require.NotNil(t, receipt.Total)
	assert.InDelta(t, 18.29, *receipt.Total, 0.001)
	assert.Equal(t, 1, repo.createCalls)
}

func TestIngestRejectsOversizedUpload(t *testing.T) {
	repo := newMockReceiptRepository()
	extractor := &stubExtractor{}
	svc := newTestService(repo, extractor, nil)

	upload := validUpload()
	upload.Size = 15 * 1024 * 1024

	_, err := svc.Ingest(context.Background(), upload, "user-1")
	assert.ErrorIs(t, err, ErrInvalidUpload)
	assert.Equal(t, 0, extractor.calls, "extraction must not run for an invalid upload")
	assert.Equal(t, 0, repo.createCalls)
}

func TestIngestRejectsUnsupportedImageType(t *testing.T) {
	repo := newMockReceiptRepository()
	extractor := &stubExtractor{}
	svc := newTestService(repo, extractor, nil)

	upload := validUpload()
	upload.MimeType = "application/pdf"
	upload.Filename = "receipt.pdf"

	_, err := svc.Ingest(context.Background(), upload, "user-1")
	assert.ErrorIs(t, err, ErrInvalidUpload)
	assert.Equal(t, 0, extractor.calls)
}

func TestIngestUnparsableTextIsNotPersisted(t *testing.T) {
	repo := newMockReceiptRepository()
	extractor := &stubExtractor{
		result: domain.ExtractionResult{Text: "no numbers in this text", Provider: domain.ProviderAI},
	}
	svc := newTestService(repo, extractor, nil)

	_, err := svc.Ingest(context.Background(), validUpload(), "user-1")
	assert.ErrorIs(t, err, parser.ErrUnparsableReceipt)
	assert.Equal(t, 0, repo.createCalls)
}

func TestIngestSurfacesExtractionFailure(t *testing.T) {
	repo := newMockReceiptRepository()
	extractor := &stubExtractor{err: ocr.ErrExtractionFailed}
	svc := newTestService(repo, extractor, nil)

	_, err := svc.Ingest(context.Background(), validUpload(), "user-1")
	assert.ErrorIs(t, err, ocr.ErrExtractionFailed)
	assert.Equal(t, 0, repo.createCalls)
}

func TestIngestCancelledContextIsNotPersisted(t *testing.T) {
	repo := newMockReceiptRepository()
	extractor := &stubExtractor{
		result: domain.ExtractionResult{Text: fallbackReceiptText, Provider: domain.ProviderFallback},
	}
	svc := newTestService(repo, extractor, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Ingest(ctx, validUpload(), "user-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, repo.createCalls)
}

func TestIngestStoresImageWhenUploaderConfigured(t *testing.T) {
	repo := newMockReceiptRepository()
	extractor := &stubExtractor{
		result: domain.ExtractionResult{Text: fallbackReceiptText, Provider: domain.ProviderAI},
	}
	uploader := &stubUploader{url: "https://storage.example/receipts/receipt_abc.jpg"}
	svc := newTestService(repo, extractor, uploader)

	receipt, err := svc.Ingest(context.Background(), validUpload(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, uploader.calls)
	assert.Equal(t, uploader.url, receipt.ImageURL)
}

func TestIngestContinuesWhenImageUploadFails(t *testing.T) {
	repo := newMockReceiptRepository()
	extractor := &stubExtractor{
		result: domain.ExtractionResult{Text: fallbackReceiptText, Provider: domain.ProviderAI},
	}
	uploader := &stubUploader{err: errors.New("bucket unavailable")}
	svc := newTestService(repo, extractor, uploader)

	receipt, err := svc.Ingest(context.Background(), validUpload(), "user-1")
	require.NoError(t, err)

	assert.Empty(t, receipt.ImageURL)
	assert.Equal(t, 1, repo.createCalls)
}

func TestGetReceiptEnforcesOwnership(t *testing.T) {
	repo := newMockReceiptRepository()
	repo.receipts["r-1"] = &domain.Receipt{ID: "r-1", UserID: "owner"}
	svc := newTestService(repo, &stubExtractor{}, nil)

	_, err := svc.GetReceiptByID(context.Background(), "intruder", "r-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	receipt, err := svc.GetReceiptByID(context.Background(), "owner", "r-1")
	require.NoError(t, err)
	assert.Equal(t, "r-1", receipt.ID)
}

func TestUpdateReceiptPreservesImmutableFields(t *testing.T) {
	repo := newMockReceiptRepository()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.receipts["r-1"] = &domain.Receipt{
		ID:         "r-1",
		UserID:     "owner",
		Merchant:   "OLD NAME",
		Provenance: domain.ProviderAI,
		RawText:    "raw",
		ImageURL:   "https://storage.example/r-1.jpg",
		CreatedAt:  created,
	}
	svc := newTestService(repo, &stubExtractor{}, nil)

	total := 9.99
	updated, err := svc.UpdateReceipt(context.Background(), "owner", &domain.Receipt{
		ID:       "r-1",
		UserID:   "someone-else",
		Merchant: "NEW NAME",
		Total:    &total,
	})
	require.NoError(t, err)

	assert.Equal(t, "NEW NAME", updated.Merchant)
	assert.Equal(t, "owner", updated.UserID)
	assert.Equal(t, domain.ProviderAI, updated.Provenance)
	assert.Equal(t, "raw", updated.RawText)
	assert.Equal(t, "https://storage.example/r-1.jpg", updated.ImageURL)
	assert.Equal(t, created, updated.CreatedAt)
}

func TestDeleteReceiptEnforcesOwnership(t *testing.T) {
	repo := newMockReceiptRepository()
	repo.receipts["r-1"] = &domain.Receipt{ID: "r-1", UserID: "owner"}
	svc := newTestService(repo, &stubExtractor{}, nil)

	err := svc.DeleteReceipt(context.Background(), "intruder", "r-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0, repo.deleteCalls)

	err = svc.DeleteReceipt(context.Background(), "owner", "r-1")
	require.NoError(t, err)
	assert.Empty(t, repo.receipts)
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"GROCERY STORE", "Groceries"},
		{"Uber trip downtown", "Transport"},
		{"Grand Hotel", "Accommodation"},
		{"Corner Cafe", "Food"},
		{"City Pharmacy", "Health"},
		{"Something else entirely", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, inferCategory(tt.description))
		})
	}
}
