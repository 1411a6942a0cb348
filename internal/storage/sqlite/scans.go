package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitvault/internal/models"
	"github.com/mmynk/splitvault/internal/storage"
)

// CreateReceiptScan persists a parsed receipt and its line items.
func (s *SQLiteStore) CreateReceiptScan(ctx context.Context, scan *models.ReceiptScan) error {
	// Generate ID if not set
	if scan.ID == "" {
		scan.ID = uuid.New().String()
	}
	if scan.CreatedAt == 0 {
		scan.CreatedAt = s.now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r := scan.Receipt
	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipt_scans (id, image_ref, content_hash, merchant, title, tax, service_fee, total_amount, raw_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, nullString(scan.ImageRef), scan.ContentHash, nullString(r.Merchant), r.Title,
		r.Tax, r.ServiceFee, r.TotalAmount, r.RawText, scan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt scan: %w", classify(err))
	}

	for i, li := range r.LineItems {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO scan_line_items (scan_id, position, description, price, is_extra_charge)
			 VALUES (?, ?, ?, ?, ?)`,
			scan.ID, i, li.Description, li.Price, li.IsExtraCharge,
		)
		if err != nil {
			return fmt.Errorf("failed to insert scan line item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceiptScan retrieves a scan by ID.
func (s *SQLiteStore) GetReceiptScan(ctx context.Context, id string) (*models.ReceiptScan, error) {
	return s.getReceiptScan(ctx, "id", id)
}

// GetReceiptScanByHash retrieves a scan by the hash of its raw text.
func (s *SQLiteStore) GetReceiptScanByHash(ctx context.Context, hash string) (*models.ReceiptScan, error) {
	return s.getReceiptScan(ctx, "content_hash", hash)
}

// getReceiptScan looks a scan up by a unique column. column is never user input.
func (s *SQLiteStore) getReceiptScan(ctx context.Context, column, value string) (*models.ReceiptScan, error) {
	scan := &models.ReceiptScan{}
	var imageRef, merchant sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, image_ref, content_hash, merchant, title, tax, service_fee, total_amount, raw_text, created_at
		 FROM receipt_scans WHERE `+column+` = ?`,
		value,
	).Scan(&scan.ID, &imageRef, &scan.ContentHash, &merchant, &scan.Receipt.Title,
		&scan.Receipt.Tax, &scan.Receipt.ServiceFee, &scan.Receipt.TotalAmount,
		&scan.Receipt.RawText, &scan.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt scan %s: %w", value, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt scan: %w", err)
	}
	scan.ImageRef = imageRef.String
	scan.Receipt.Merchant = merchant.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT description, price, is_extra_charge FROM scan_line_items
		 WHERE scan_id = ? ORDER BY position`,
		scan.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan line items: %w", err)
	}
	defer rows.Close()

	scan.Receipt.LineItems = []models.ParsedLineItem{}
	for rows.Next() {
		var li models.ParsedLineItem
		if err := rows.Scan(&li.Description, &li.Price, &li.IsExtraCharge); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		scan.Receipt.LineItems = append(scan.Receipt.LineItems, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan line items: %w", err)
	}

	return scan, nil
}
