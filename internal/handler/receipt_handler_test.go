package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
	"github.com/rakapradana/receipt-expense-service/internal/model"
	"github.com/rakapradana/receipt-expense-service/internal/parser"
	"github.com/rakapradana/receipt-expense-service/internal/repository"
	"github.com/rakapradana/receipt-expense-service/internal/service"
)

// stubReceiptService returns canned results for handler tests
type stubReceiptService struct {
	ingestReceipt *domain.Receipt
	ingestErr     error
	getReceipt    *domain.Receipt
	getErr        error
	deleteErr     error
}

func (s *stubReceiptService) Ingest(_ context.Context, _ domain.UploadedImage, _ string) (*domain.Receipt, error) {
	return s.ingestReceipt, s.ingestErr
}

func (s *stubReceiptService) CreateReceipt(_ context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	return receipt, nil
}

func (s *stubReceiptService) GetReceiptByID(_ context.Context, _, _ string) (*domain.Receipt, error) {
	return s.getReceipt, s.getErr
}

func (s *stubReceiptService) UpdateReceipt(_ context.Context, _ string, receipt *domain.Receipt) (*domain.Receipt, error) {
	return receipt, nil
}

func (s *stubReceiptService) DeleteReceipt(_ context.Context, _, _ string) error {
	return s.deleteErr
}

func (s *stubReceiptService) ListReceipts(_ context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error) {
	return &domain.PaginatedReceipts{
		Data: []domain.Receipt{},
		Pagination: domain.Pagination{
			CurrentPage: filter.Page,
			Limit:       filter.Limit,
		},
	}, nil
}

// testAuth stands in for the JWT middleware and injects a fixed identity
func testAuth(c *gin.Context) {
	c.Set("userID", "user-1")
	c.Next()
}

func newTestRouter(svc service.ReceiptService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewReceiptHandler(svc).RegisterRoutes(router, testAuth)
	return router
}

func multipartUpload(t *testing.T, fieldName string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, "receipt.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestScanReceiptSuccess(t *testing.T) {
	total := 18.29
	stub := &stubReceiptService{
		ingestReceipt: &domain.Receipt{
			ID:         "r-1",
			UserID:     "user-1",
			Merchant:   "GROCERY STORE",
			Total:      &total,
			Confidence: domain.ConfidenceHigh,
			Provenance: domain.ProviderFallback,
		},
	}
	router := newTestRouter(stub)

	body, contentType := multipartUpload(t, "receiptImage")
	req := httptest.NewRequest(http.MethodPost, "/v1/receipts/scan", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var resp model.ReceiptResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "r-1", resp.ID)
	assert.Equal(t, "GROCERY STORE", resp.Merchant)
	assert.Equal(t, "18.29", resp.Total)
	assert.Equal(t, "fallback", resp.Provenance)
}

func TestScanReceiptMissingFile(t *testing.T) {
	router := newTestRouter(&stubReceiptService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/receipts/scan", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestScanReceiptErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid upload", fmt.Errorf("%w: too large", service.ErrInvalidUpload), http.StatusBadRequest},
		{"unparsable", fmt.Errorf("parse: %w", parser.ErrUnparsableReceipt), http.StatusUnprocessableEntity},
		{"unexpected", fmt.Errorf("database down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubReceiptService{ingestErr: tt.err})

			body, contentType := multipartUpload(t, "receiptImage")
			req := httptest.NewRequest(http.MethodPost, "/v1/receipts/scan", body)
			req.Header.Set("Content-Type", contentType)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestGetReceiptByIDNotFound(t *testing.T) {
	router := newTestRouter(&stubReceiptService{getErr: repository.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts/nope", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDeleteReceiptNoContent(t *testing.T) {
	router := newTestRouter(&stubReceiptService{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/receipts/r-1", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestCreateReceiptValidation(t *testing.T) {
	router := newTestRouter(&stubReceiptService{})

	payload := `{"merchant": "", "items": []}`
	req := httptest.NewRequest(http.MethodPost, "/v1/receipts", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Details)
}

func TestGetReceiptsInvalidPage(t *testing.T) {
	router := newTestRouter(&stubReceiptService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts?page=0", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
