package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rakapradana/receipt-expense-service/internal/domain"
)

// PostgresReceiptRepository implements ReceiptRepository using PostgreSQL
type PostgresReceiptRepository struct {
	db *pgxpool.Pool
}

// NewPostgresReceiptRepository creates a new PostgreSQL receipt repository
func NewPostgresReceiptRepository(db *pgxpool.Pool) *PostgresReceiptRepository {
	return &PostgresReceiptRepository{
		db: db,
	}
}

// CreateReceipt saves a new receipt and its items in a single transaction.
// The receipt arrives with identity, owner and timestamps already assigned
// by the ingestion workflow; nothing is visible until the commit.
func (r *PostgresReceiptRepository) CreateReceipt(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback if not committed

	_, err = tx.Exec(ctx, `
		INSERT INTO receipts (id, user_id, merchant, date, total, tax, subtotal, category,
			confidence, provenance, image_url, raw_text, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, receipt.ID, receipt.UserID, receipt.Merchant, nullableDate(receipt.Date), receipt.Total,
		receipt.Tax, receipt.Subtotal, receipt.Category, receipt.Confidence, receipt.Provenance,
		receipt.ImageURL, receipt.RawText, receipt.Notes, receipt.CreatedAt, receipt.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO receipt_items (id, receipt_id, name, qty, price, category, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, receipt.ID, item.Name, item.Quantity, item.Price, item.Category, i)
		if err != nil {
			return nil, fmt.Errorf("failed to insert receipt item: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return receipt, nil
}

// GetReceiptByID retrieves a receipt by its ID
func (r *PostgresReceiptRepository) GetReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	var receipt domain.Receipt
	var date *time.Time
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, merchant, date, total, tax, subtotal, category,
			confidence, provenance, image_url, raw_text, notes, created_at, updated_at
		FROM receipts
		WHERE id = $1
	`, receiptID).Scan(
		&receipt.ID, &receipt.UserID, &receipt.Merchant, &date, &receipt.Total, &receipt.Tax,
		&receipt.Subtotal, &receipt.Category, &receipt.Confidence, &receipt.Provenance,
		&receipt.ImageURL, &receipt.RawText, &receipt.Notes, &receipt.CreatedAt, &receipt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("receipt %s: %w", receiptID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if date != nil {
		receipt.Date = *date
	}

	items, err := r.getItems(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	receipt.Items = items

	return &receipt, nil
}

// UpdateReceipt updates an existing receipt and replaces its items
func (r *PostgresReceiptRepository) UpdateReceipt(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback if not committed

	tag, err := tx.Exec(ctx, `
		UPDATE receipts
		SET merchant = $1, date = $2, total = $3, tax = $4, subtotal = $5,
			category = $6, notes = $7, updated_at = $8
		WHERE id = $9
	`, receipt.Merchant, nullableDate(receipt.Date), receipt.Total, receipt.Tax,
		receipt.Subtotal, receipt.Category, receipt.Notes, receipt.UpdatedAt, receipt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("receipt %s: %w", receipt.ID, ErrNotFound)
	}

	// Replace items wholesale; item identity is not stable across edits
	_, err = tx.Exec(ctx, `DELETE FROM receipt_items WHERE receipt_id = $1`, receipt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete receipt items: %w", err)
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO receipt_items (id, receipt_id, name, qty, price, category, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, receipt.ID, item.Name, item.Quantity, item.Price, item.Category, i)
		if err != nil {
			return nil, fmt.Errorf("failed to insert receipt item: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return receipt, nil
}

// DeleteReceipt deletes a receipt and its items
func (r *PostgresReceiptRepository) DeleteReceipt(ctx context.Context, receiptID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, receiptID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("receipt %s: %w", receiptID, ErrNotFound)
	}
	return nil
}

// ListReceipts retrieves an owner-scoped, paginated list of receipts
func (r *PostgresReceiptRepository) ListReceipts(ctx context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}
	argCount := 2

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}
	if filter.Merchant != "" {
		conditions = append(conditions, fmt.Sprintf("merchant ILIKE $%d", argCount))
		args = append(args, "%"+filter.Merchant+"%")
		argCount++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var totalItems int
	err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM receipts %s`, whereClause), args...).Scan(&totalItems)
	if err != nil {
		return nil, fmt.Errorf("failed to count receipts: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT id, user_id, merchant, date, total, tax, subtotal, category,
			confidence, provenance, image_url, raw_text, notes, created_at, updated_at
		FROM receipts
		%s
		ORDER BY date DESC NULLS LAST, created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount, argCount+1), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	receipts, err := scanReceipts(rows)
	if err != nil {
		return nil, err
	}

	// Attach items per receipt
	for i := range receipts {
		items, err := r.getItems(ctx, receipts[i].ID)
		if err != nil {
			return nil, err
		}
		receipts[i].Items = items
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(filter.Limit)))

	return &domain.PaginatedReceipts{
		Data: receipts,
		Pagination: domain.Pagination{
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			CurrentPage: filter.Page,
			Limit:       filter.Limit,
		},
	}, nil
}

// GetReceiptsByOwner retrieves all receipts for a user within an optional
// date range, items included. Used by the analytics aggregation.
func (r *PostgresReceiptRepository) GetReceiptsByOwner(ctx context.Context, userID string, startDate, endDate *time.Time) ([]domain.Receipt, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argCount := 2

	if startDate != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argCount))
		args = append(args, *startDate)
		argCount++
	}
	if endDate != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argCount))
		args = append(args, *endDate)
		argCount++
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT id, user_id, merchant, date, total, tax, subtotal, category,
			confidence, provenance, image_url, raw_text, notes, created_at, updated_at
		FROM receipts
		WHERE %s
		ORDER BY date ASC NULLS LAST
	`, strings.Join(conditions, " AND ")), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	receipts, err := scanReceipts(rows)
	if err != nil {
		return nil, err
	}

	for i := range receipts {
		items, err := r.getItems(ctx, receipts[i].ID)
		if err != nil {
			return nil, err
		}
		receipts[i].Items = items
	}

	return receipts, nil
}

// getItems loads the items of a receipt in appearance order
func (r *PostgresReceiptRepository) getItems(ctx context.Context, receiptID string) ([]domain.ReceiptItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, qty, price, category
		FROM receipt_items
		WHERE receipt_id = $1
		ORDER BY position
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt items: %w", err)
	}
	defer rows.Close()

	items := []domain.ReceiptItem{}
	for rows.Next() {
		var item domain.ReceiptItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.Price, &item.Category); err != nil {
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipt items: %w", err)
	}

	return items, nil
}

// scanReceipts reads receipt rows into domain values
func scanReceipts(rows pgx.Rows) ([]domain.Receipt, error) {
	receipts := []domain.Receipt{}
	for rows.Next() {
		var receipt domain.Receipt
		var date *time.Time
		if err := rows.Scan(
			&receipt.ID, &receipt.UserID, &receipt.Merchant, &date, &receipt.Total, &receipt.Tax,
			&receipt.Subtotal, &receipt.Category, &receipt.Confidence, &receipt.Provenance,
			&receipt.ImageURL, &receipt.RawText, &receipt.Notes, &receipt.CreatedAt, &receipt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		if date != nil {
			receipt.Date = *date
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}
	return receipts, nil
}

// nullableDate stores zero dates as NULL
func nullableDate(date time.Time) *time.Time {
	if date.IsZero() {
		return nil
	}
	return &date
}
