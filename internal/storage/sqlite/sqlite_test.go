package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitvault/internal/models"
	"github.com/mmynk/splitvault/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dinner() *models.SplitBill {
	return &models.SplitBill{
		Title:             "Test Dinner",
		Merchant:          "Warung Sederhana",
		Currency:          "IDR",
		TaxPercent:        dec("10"),
		ServiceFeePercent: dec("5"),
		PaidBy:            "Charlie",
		Participants: []models.SplitParticipant{
			{Name: "Charlie", ShareAmount: dec("115000"), Note: "paid by card"},
			{Name: "Diana", ShareAmount: dec("57500")},
		},
		Items: []models.SplitItem{
			{Description: "Nasi Goreng", Price: dec("100000"), AssignedQuantities: map[string]int{"Charlie": 1}},
			{Description: "Es Teh", Price: dec("25000"), AssignedQuantities: map[string]int{"Diana": 2}},
			{Description: "Kerupuk", Price: dec("2500.50"), AssignedQuantities: map[string]int{}},
		},
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateSplitBill assigns IDs", func(t *testing.T) {
		bill := dinner()
		if err := store.CreateSplitBill(ctx, bill); err != nil {
			t.Fatalf("CreateSplitBill failed: %v", err)
		}

		if bill.ID == 0 {
			t.Error("Expected bill ID to be assigned")
		}
		if bill.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		for _, p := range bill.Participants {
			if p.ID == 0 || p.SplitBillID != bill.ID {
				t.Errorf("participant %s: ID=%d SplitBillID=%d", p.Name, p.ID, p.SplitBillID)
			}
		}
		for _, item := range bill.Items {
			if item.ID == 0 || item.SplitBillID != bill.ID {
				t.Errorf("item %s: ID=%d SplitBillID=%d", item.Description, item.ID, item.SplitBillID)
			}
		}
	})

	t.Run("GetSplitBill retrieves complete bill", func(t *testing.T) {
		original := dinner()
		if err := store.CreateSplitBill(ctx, original); err != nil {
			t.Fatalf("CreateSplitBill failed: %v", err)
		}

		retrieved, err := store.GetSplitBill(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetSplitBill failed: %v", err)
		}

		if diff := cmp.Diff(original, retrieved); diff != "" {
			t.Errorf("GetSplitBill() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GetSplitBill returns ErrNotFound for nonexistent bill", func(t *testing.T) {
		_, err := store.GetSplitBill(ctx, 999999)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetSplitBill() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("CreateSplitBill rejects duplicate participant names", func(t *testing.T) {
		bill := &models.SplitBill{
			Currency: "USD",
			Participants: []models.SplitParticipant{
				{Name: "Eve"},
				{Name: "Eve"},
			},
		}
		err := store.CreateSplitBill(ctx, bill)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("CreateSplitBill() error = %v, want ErrConflict", err)
		}
	})

	t.Run("UpdateSplitBill replaces items and participants", func(t *testing.T) {
		bill := dinner()
		if err := store.CreateSplitBill(ctx, bill); err != nil {
			t.Fatalf("CreateSplitBill failed: %v", err)
		}

		bill.Title = "Renamed"
		bill.PaidBy = ""
		bill.Items = bill.Items[:1]
		bill.Items[0].Assign("Diana", 1)
		bill.Participants = append(bill.Participants, models.SplitParticipant{Name: "Frank"})
		if err := store.UpdateSplitBill(ctx, bill); err != nil {
			t.Fatalf("UpdateSplitBill failed: %v", err)
		}

		retrieved, err := store.GetSplitBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetSplitBill failed: %v", err)
		}
		if diff := cmp.Diff(bill, retrieved); diff != "" {
			t.Errorf("GetSplitBill() after update mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("UpdateSplitBill returns ErrNotFound for nonexistent bill", func(t *testing.T) {
		bill := dinner()
		bill.ID = 999999
		if err := store.UpdateSplitBill(ctx, bill); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateSplitBill() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteSplitBill removes bill", func(t *testing.T) {
		bill := dinner()
		if err := store.CreateSplitBill(ctx, bill); err != nil {
			t.Fatalf("CreateSplitBill failed: %v", err)
		}

		if err := store.DeleteSplitBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteSplitBill failed: %v", err)
		}
		if _, err := store.GetSplitBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetSplitBill() after delete error = %v, want ErrNotFound", err)
		}
		if err := store.DeleteSplitBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second DeleteSplitBill() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Auto-generated title format", func(t *testing.T) {
		tests := []struct {
			participants []string
			want         string
		}{
			{[]string{"Alice", "Bob"}, "Split with Alice, Bob"},
			{[]string{"Alice", "Bob", "Charlie"}, "Split with Alice, Bob, Charlie"},
			{[]string{"Alice", "Bob", "Charlie", "Diana"}, "Split with Alice, Bob and 2 others"},
		}
		for _, tt := range tests {
			bill := &models.SplitBill{Currency: "USD"}
			for _, name := range tt.participants {
				bill.Participants = append(bill.Participants, models.SplitParticipant{Name: name})
			}
			if err := store.CreateSplitBill(ctx, bill); err != nil {
				t.Fatalf("CreateSplitBill failed: %v", err)
			}
			if bill.Title != tt.want {
				t.Errorf("title = %q, want %q", bill.Title, tt.want)
			}
		}
	})
}

func TestListSplitBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bills, err := store.ListSplitBills(ctx)
	if err != nil {
		t.Fatalf("ListSplitBills failed: %v", err)
	}
	if len(bills) != 0 {
		t.Fatalf("ListSplitBills() on empty store = %d bills, want 0", len(bills))
	}

	older := dinner()
	older.Title = "Older"
	older.CreatedAt = 1000
	newer := dinner()
	newer.Title = "Newer"
	newer.CreatedAt = 2000
	for _, b := range []*models.SplitBill{older, newer} {
		if err := store.CreateSplitBill(ctx, b); err != nil {
			t.Fatalf("CreateSplitBill failed: %v", err)
		}
	}

	bills, err = store.ListSplitBills(ctx)
	if err != nil {
		t.Fatalf("ListSplitBills failed: %v", err)
	}
	if diff := cmp.Diff([]*models.SplitBill{newer, older}, bills); diff != "" {
		t.Errorf("ListSplitBills() mismatch (-want +got):\n%s", diff)
	}
}

func TestReceiptScans(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	scan := &models.ReceiptScan{
		ImageRef:    "content://media/42",
		ContentHash: "abc123",
		Receipt: models.ParsedReceipt{
			Merchant: "Kopi Kenangan",
			Title:    "Kopi Kenangan Receipt",
			LineItems: []models.ParsedLineItem{
				{Description: "Kopi Susu", Price: dec("25000")},
				{Description: "Delivery Fee", Price: dec("10000"), IsExtraCharge: true},
			},
			Tax:         dec("3500"),
			ServiceFee:  dec("0"),
			TotalAmount: dec("38500"),
			RawText:     "Kopi Kenangan\nKopi Susu 25.000\nDelivery Fee 10.000\nTax 3.500\nTotal 38.500",
		},
	}

	if err := store.CreateReceiptScan(ctx, scan); err != nil {
		t.Fatalf("CreateReceiptScan failed: %v", err)
	}
	if scan.ID == "" {
		t.Fatal("Expected scan ID to be generated")
	}

	byID, err := store.GetReceiptScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("GetReceiptScan failed: %v", err)
	}
	if diff := cmp.Diff(scan, byID); diff != "" {
		t.Errorf("GetReceiptScan() mismatch (-want +got):\n%s", diff)
	}

	byHash, err := store.GetReceiptScanByHash(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetReceiptScanByHash failed: %v", err)
	}
	if byHash.ID != scan.ID {
		t.Errorf("GetReceiptScanByHash() ID = %s, want %s", byHash.ID, scan.ID)
	}

	if _, err := store.GetReceiptScan(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetReceiptScan() error = %v, want ErrNotFound", err)
	}

	dup := &models.ReceiptScan{ContentHash: "abc123", Receipt: models.ParsedReceipt{Title: "Receipt"}}
	if err := store.CreateReceiptScan(ctx, dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("CreateReceiptScan() with duplicate hash error = %v, want ErrConflict", err)
	}

	t.Run("bill keeps scan reference", func(t *testing.T) {
		bill := dinner()
		bill.ReceiptScanID = scan.ID
		if err := store.CreateSplitBill(ctx, bill); err != nil {
			t.Fatalf("CreateSplitBill failed: %v", err)
		}
		got, err := store.GetSplitBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetSplitBill failed: %v", err)
		}
		if got.ReceiptScanID != scan.ID {
			t.Errorf("ReceiptScanID = %q, want %q", got.ReceiptScanID, scan.ID)
		}
	})
}

func TestGenerateTitle(t *testing.T) {
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		participants []string
		want         string
	}{
		{[]string{}, "Bill - Mar 5, 2024"},
		{[]string{"Alice"}, "Split with Alice"},
		{[]string{"Alice", "Bob"}, "Split with Alice, Bob"},
		{[]string{"Alice", "Bob", "Charlie"}, "Split with Alice, Bob, Charlie"},
		{[]string{"Alice", "Bob", "Charlie", "Diana"}, "Split with Alice, Bob and 2 others"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.participants, ","), func(t *testing.T) {
			got := generateTitle(tt.participants, now)
			if got != tt.want {
				t.Errorf("generateTitle(%v) = %q, want %q", tt.participants, got, tt.want)
			}
		})
	}
}
