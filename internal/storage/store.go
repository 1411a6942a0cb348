// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitvault/internal/models"
)

var (
	// ErrNotFound is returned when a bill or receipt scan does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint,
	// such as two participants with the same name on one bill.
	ErrConflict = errors.New("conflict")
)

// Store defines the interface for split bill and receipt scan storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateSplitBill persists a new bill with its items and participants.
	// The store assigns IDs and fills in CreatedAt and a default Title.
	CreateSplitBill(ctx context.Context, bill *models.SplitBill) error

	// GetSplitBill retrieves a bill by its ID.
	// Returns ErrNotFound if the bill does not exist.
	GetSplitBill(ctx context.Context, id int64) (*models.SplitBill, error)

	// UpdateSplitBill replaces a bill's fields, items and participants.
	// Items and participants get new IDs. Returns ErrNotFound if the bill
	// does not exist.
	UpdateSplitBill(ctx context.Context, bill *models.SplitBill) error

	// DeleteSplitBill removes a bill and everything it owns.
	// Returns ErrNotFound if the bill does not exist.
	DeleteSplitBill(ctx context.Context, id int64) error

	// ListSplitBills returns all bills, newest first.
	ListSplitBills(ctx context.Context) ([]*models.SplitBill, error)

	// CreateReceiptScan persists a parsed receipt. The store assigns a UUID
	// and CreatedAt when they are unset.
	CreateReceiptScan(ctx context.Context, scan *models.ReceiptScan) error

	// GetReceiptScan retrieves a scan by its ID.
	// Returns ErrNotFound if the scan does not exist.
	GetReceiptScan(ctx context.Context, id string) (*models.ReceiptScan, error)

	// GetReceiptScanByHash retrieves the scan whose raw text has the given
	// content hash. Returns ErrNotFound if there is none.
	GetReceiptScanByHash(ctx context.Context, hash string) (*models.ReceiptScan, error)

	// Close releases any resources held by the store.
	Close() error
}
