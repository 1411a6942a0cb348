// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/splitvault/internal/models"
	"github.com/mmynk/splitvault/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys and the busy timeout are per connection, so they go in
	// the DSN rather than a one-off PRAGMA.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSplitBill persists a new bill to the database.
func (s *SQLiteStore) CreateSplitBill(ctx context.Context, bill *models.SplitBill) error {
	if bill.CreatedAt == 0 {
		bill.CreatedAt = s.now().Unix()
	}
	if bill.Title == "" {
		bill.Title = generateTitle(models.ParticipantNames(bill.Participants), s.now())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO split_bills (title, merchant, currency, tax_percent, service_fee_percent, paid_by, receipt_scan_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.Title, nullString(bill.Merchant), bill.Currency, bill.TaxPercent, bill.ServiceFeePercent,
		nullString(bill.PaidBy), nullString(bill.ReceiptScanID), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split bill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get split bill id: %w", err)
	}
	bill.ID = id

	if err := insertChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateSplitBill replaces the stored bill with the given one.
func (s *SQLiteStore) UpdateSplitBill(ctx context.Context, bill *models.SplitBill) error {
	if bill.Title == "" {
		bill.Title = generateTitle(models.ParticipantNames(bill.Participants), s.now())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE split_bills
		 SET title = ?, merchant = ?, currency = ?, tax_percent = ?, service_fee_percent = ?, paid_by = ?, receipt_scan_id = ?
		 WHERE id = ?`,
		bill.Title, nullString(bill.Merchant), bill.Currency, bill.TaxPercent, bill.ServiceFeePercent,
		nullString(bill.PaidBy), nullString(bill.ReceiptScanID), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update split bill: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	} else if n == 0 {
		return fmt.Errorf("split bill %d: %w", bill.ID, storage.ErrNotFound)
	}

	// Assignments go with their items via ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, "DELETE FROM split_items WHERE split_bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to delete split items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM split_participants WHERE split_bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to delete split participants: %w", err)
	}

	if err := insertChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteSplitBill removes a bill, its items, assignments and participants.
func (s *SQLiteStore) DeleteSplitBill(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM split_bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete split bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("split bill %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// insertChildren writes participants, items and assignments and fills in
// their IDs.
func insertChildren(ctx context.Context, tx *sql.Tx, bill *models.SplitBill) error {
	for i := range bill.Participants {
		p := &bill.Participants[i]
		res, err := tx.ExecContext(ctx,
			`INSERT INTO split_participants (split_bill_id, position, name, share_amount, note)
			 VALUES (?, ?, ?, ?, ?)`,
			bill.ID, i, p.Name, p.ShareAmount, nullString(p.Note),
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant %q: %w", p.Name, classify(err))
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get participant id: %w", err)
		}
		p.SplitBillID = bill.ID
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		res, err := tx.ExecContext(ctx,
			"INSERT INTO split_items (split_bill_id, position, description, price) VALUES (?, ?, ?, ?)",
			bill.ID, i, item.Description, item.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get item id: %w", err)
		}
		item.SplitBillID = bill.ID

		for _, participant := range item.AssignedParticipants() {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, participant, quantity) VALUES (?, ?, ?)",
				item.ID, participant, item.AssignedQuantities[participant],
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}
	return nil
}

// GetSplitBill retrieves a bill by ID, including all items and participants.
func (s *SQLiteStore) GetSplitBill(ctx context.Context, id int64) (*models.SplitBill, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, merchant, currency, tax_percent, service_fee_percent, paid_by, receipt_scan_id, created_at
		 FROM split_bills WHERE id = ?`,
		id,
	)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split bill %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split bill: %w", err)
	}

	if err := s.loadChildren(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListSplitBills returns every bill with its items and participants, newest first.
func (s *SQLiteStore) ListSplitBills(ctx context.Context) ([]*models.SplitBill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, merchant, currency, tax_percent, service_fee_percent, paid_by, receipt_scan_id, created_at
		 FROM split_bills ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list split bills: %w", err)
	}

	bills := []*models.SplitBill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan split bill: %w", err)
		}
		bills = append(bills, bill)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split bills: %w", err)
	}

	for _, bill := range bills {
		if err := s.loadChildren(ctx, bill); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*models.SplitBill, error) {
	var bill models.SplitBill
	var merchant, paidBy, receiptScanID sql.NullString
	err := row.Scan(&bill.ID, &bill.Title, &merchant, &bill.Currency, &bill.TaxPercent,
		&bill.ServiceFeePercent, &paidBy, &receiptScanID, &bill.CreatedAt)
	if err != nil {
		return nil, err
	}
	bill.Merchant = merchant.String
	bill.PaidBy = paidBy.String
	bill.ReceiptScanID = receiptScanID.String
	return &bill, nil
}

func (s *SQLiteStore) loadChildren(ctx context.Context, bill *models.SplitBill) error {
	// Get participants
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, share_amount, note FROM split_participants
		 WHERE split_bill_id = ? ORDER BY position`,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	bill.Participants = []models.SplitParticipant{}
	for rows.Next() {
		p := models.SplitParticipant{SplitBillID: bill.ID}
		var note sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.ShareAmount, &note); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Note = note.String
		bill.Participants = append(bill.Participants, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	// Get items
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, description, price FROM split_items WHERE split_bill_id = ? ORDER BY position",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	bill.Items = []models.SplitItem{}
	index := make(map[int64]int)
	for itemRows.Next() {
		item := models.SplitItem{SplitBillID: bill.ID, AssignedQuantities: map[string]int{}}
		if err := itemRows.Scan(&item.ID, &item.Description, &item.Price); err != nil {
			itemRows.Close()
			return fmt.Errorf("failed to scan item: %w", err)
		}
		index[item.ID] = len(bill.Items)
		bill.Items = append(bill.Items, item)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}

	// Get assignments for all items of the bill at once
	assignRows, err := s.db.QueryContext(ctx,
		`SELECT a.item_id, a.participant, a.quantity
		 FROM item_assignments a JOIN split_items i ON i.id = a.item_id
		 WHERE i.split_bill_id = ?`,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var (
			itemID      int64
			participant string
			quantity    int
		)
		if err := assignRows.Scan(&itemID, &participant, &quantity); err != nil {
			return fmt.Errorf("failed to scan assignment: %w", err)
		}
		if i, ok := index[itemID]; ok {
			bill.Items[i].Assign(participant, quantity)
		}
	}
	if err := assignRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return nil
}

// generateTitle creates an auto-generated title from participants.
func generateTitle(participants []string, now time.Time) string {
	if len(participants) == 0 {
		return fmt.Sprintf("Bill - %s", now.Format("Jan 2, 2006"))
	}
	if len(participants) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(participants, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(participants[:2], ", "),
		len(participants)-2,
	)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// classify maps uniqueness violations to storage.ErrConflict.
func classify(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %v", storage.ErrConflict, err)
	case sqlite3.SQLITE_CONSTRAINT:
		// Primary code only when extended result codes are off.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %v", storage.ErrConflict, err)
		}
	}
	return err
}
