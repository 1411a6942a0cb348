package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitvault/internal/metrics"
	"github.com/mmynk/splitvault/internal/middleware"
	"github.com/mmynk/splitvault/internal/rpc"
	"github.com/mmynk/splitvault/internal/storage/sqlite"
)

const kopiReceipt = "Kopi Kenangan\nKopi Susu 25.000\nRoti Bakar 15.000\nTotal 40.000"

// setupTestServer creates a test server backed by a temporary SQLite database
func setupTestServer(t *testing.T, opts ...Option) (rpc.SplitServiceClient, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	reg := metrics.NewRegistry()
	interceptors := connect.WithInterceptors(middleware.MetricsInterceptor(reg), middleware.LoggingInterceptor())
	svc := NewSplitService(store, append([]Option{WithMetrics(reg)}, opts...)...)
	path, handler := rpc.NewSplitServiceHandler(svc, interceptors)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	client := rpc.NewSplitServiceClient(http.DefaultClient, server.URL)

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}
	return client, cleanup
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func wantCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestParseReceipt(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := client.ParseReceipt(context.Background(), connect.NewRequest(&rpc.ParseReceiptRequest{
		RawText: kopiReceipt,
	}))
	if err != nil {
		t.Fatalf("ParseReceipt failed: %v", err)
	}

	if resp.Msg.ScanID == "" {
		t.Error("expected scan ID")
	}
	if resp.Msg.Duplicate {
		t.Error("first scan should not be a duplicate")
	}
	want := rpc.Receipt{
		Merchant: "Kopi Kenangan",
		Title:    "Kopi Kenangan Receipt",
		LineItems: []rpc.LineItem{
			{Description: "Kopi Susu", Price: dec("25000")},
			{Description: "Roti Bakar", Price: dec("15000")},
		},
		Tax:         dec("0"),
		ServiceFee:  dec("0"),
		TotalAmount: dec("40000"),
		RawText:     kopiReceipt,
	}
	if diff := cmp.Diff(want, resp.Msg.Receipt); diff != "" {
		t.Errorf("receipt mismatch (-want +got):\n%s", diff)
	}

	// Same text with Windows line endings is the same receipt
	again, err := client.ParseReceipt(context.Background(), connect.NewRequest(&rpc.ParseReceiptRequest{
		RawText: "Kopi Kenangan\r\nKopi Susu 25.000\r\nRoti Bakar 15.000\r\nTotal 40.000\r\n",
	}))
	if err != nil {
		t.Fatalf("second ParseReceipt failed: %v", err)
	}
	if !again.Msg.Duplicate {
		t.Error("expected second scan to be reported as duplicate")
	}
	if again.Msg.ScanID != resp.Msg.ScanID {
		t.Errorf("expected scan ID %s, got %s", resp.Msg.ScanID, again.Msg.ScanID)
	}
}

func TestParseReceipt_Errors(t *testing.T) {
	failing := RecognizerFunc(func(ctx context.Context, imageRef string) (string, error) {
		return "", errors.New("camera roll unavailable")
	})

	tests := []struct {
		name     string
		opts     []Option
		req      *rpc.ParseReceiptRequest
		wantCode connect.Code
		wantMsg  string
	}{
		{
			name:     "nothing to parse",
			req:      &rpc.ParseReceiptRequest{RawText: "   "},
			wantCode: connect.CodeInvalidArgument,
		},
		{
			name:     "image without recognizer",
			req:      &rpc.ParseReceiptRequest{ImageRef: "content://media/1"},
			wantCode: connect.CodeFailedPrecondition,
		},
		{
			name:     "recognizer failure",
			opts:     []Option{WithRecognizer(failing)},
			req:      &rpc.ParseReceiptRequest{ImageRef: "content://media/1"},
			wantCode: connect.CodeUnavailable,
			wantMsg:  "processing failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, cleanup := setupTestServer(t, tt.opts...)
			defer cleanup()

			_, err := client.ParseReceipt(context.Background(), connect.NewRequest(tt.req))
			wantCode(t, err, tt.wantCode)

			var connectErr *connect.Error
			if tt.wantMsg != "" && errors.As(err, &connectErr) && connectErr.Message() != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, connectErr.Message())
			}
		})
	}
}

func TestParseReceipt_WithRecognizer(t *testing.T) {
	var gotRef string
	recognizer := RecognizerFunc(func(ctx context.Context, imageRef string) (string, error) {
		gotRef = imageRef
		return kopiReceipt, nil
	})
	client, cleanup := setupTestServer(t, WithRecognizer(recognizer))
	defer cleanup()

	resp, err := client.ParseReceipt(context.Background(), connect.NewRequest(&rpc.ParseReceiptRequest{
		ImageRef: "content://media/7",
	}))
	if err != nil {
		t.Fatalf("ParseReceipt failed: %v", err)
	}

	if gotRef != "content://media/7" {
		t.Errorf("recognizer got image ref %q", gotRef)
	}
	if len(resp.Msg.Receipt.LineItems) != 2 {
		t.Errorf("expected 2 line items, got %d", len(resp.Msg.Receipt.LineItems))
	}
}

func TestValidateAssignments(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := client.ValidateAssignments(context.Background(), connect.NewRequest(&rpc.ValidateAssignmentsRequest{
		Items: []rpc.Item{
			{Description: "Pizza", Price: dec("20"), Quantities: map[string]int{"Alice": 1}},
			{Description: "Salad", Price: dec("10")},
			{Description: "Soda", Price: dec("3"), Quantities: map[string]int{"Bob": 0}},
		},
	}))
	if err != nil {
		t.Fatalf("ValidateAssignments failed: %v", err)
	}

	want := &rpc.ValidateAssignmentsResponse{
		Valid: false,
		Errors: []string{
			"item 2 (Salad) is not assigned to any participant",
			"item 3 (Soda) is not assigned to any participant",
		},
	}
	if diff := cmp.Diff(want, resp.Msg); diff != "" {
		t.Errorf("ValidateAssignments mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateAssignments_NegativeQuantity(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	_, err := client.ValidateAssignments(context.Background(), connect.NewRequest(&rpc.ValidateAssignmentsRequest{
		Items: []rpc.Item{{Description: "Pizza", Price: dec("20"), Quantities: map[string]int{"Alice": -1}}},
	}))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestCalculateShares_WithItems(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := client.CalculateShares(context.Background(), connect.NewRequest(&rpc.CalculateSharesRequest{
		Items: []rpc.Item{
			{Description: "Nasi Goreng", Price: dec("100000"), Quantities: map[string]int{"A": 1}},
			{Description: "Es Teh", Price: dec("50000"), Quantities: map[string]int{"B": 1}},
		},
		Participants:      []rpc.Participant{{Name: "A"}, {Name: "B"}},
		TaxPercent:        dec("10"),
		ServiceFeePercent: dec("5"),
		Currency:          "IDR",
	}))
	if err != nil {
		t.Fatalf("CalculateShares failed: %v", err)
	}

	want := []rpc.Participant{
		{Name: "A", ShareAmount: dec("115000"), FormattedShare: "Rp 115.000"},
		{Name: "B", ShareAmount: dec("57500"), FormattedShare: "Rp 57.500"},
	}
	if diff := cmp.Diff(want, resp.Msg.Participants); diff != "" {
		t.Errorf("participants mismatch (-want +got):\n%s", diff)
	}
	if len(resp.Msg.ValidationErrors) != 0 {
		t.Errorf("unexpected validation errors: %v", resp.Msg.ValidationErrors)
	}

	a := resp.Msg.Breakdown[0]
	if !a.Subtotal.Equal(dec("100000")) || !a.Tax.Equal(dec("10000")) || !a.ServiceFee.Equal(dec("5000")) {
		t.Errorf("unexpected breakdown for A: %+v", a)
	}
}

func TestCalculateShares_EqualSplit(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := client.CalculateShares(context.Background(), connect.NewRequest(&rpc.CalculateSharesRequest{
		Items: []rpc.Item{
			{Description: "Nasi Goreng", Price: dec("100000")},
			{Description: "Es Teh", Price: dec("50000")},
		},
		Participants:      []rpc.Participant{{Name: "A"}, {Name: "B"}},
		TaxPercent:        dec("10"),
		ServiceFeePercent: dec("5"),
	}))
	if err != nil {
		t.Fatalf("CalculateShares failed: %v", err)
	}

	for i, p := range resp.Msg.Participants {
		if !p.ShareAmount.Equal(dec("86250")) {
			t.Errorf("%s: expected share 86250, got %s", p.Name, p.ShareAmount)
		}
		if !resp.Msg.Breakdown[i].EqualSplit {
			t.Errorf("%s: expected equal split", p.Name)
		}
	}
	if len(resp.Msg.ValidationErrors) != 2 {
		t.Errorf("expected 2 validation errors, got %v", resp.Msg.ValidationErrors)
	}
}

func TestCalculateShares_NoParticipants(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := client.CalculateShares(context.Background(), connect.NewRequest(&rpc.CalculateSharesRequest{
		Items: []rpc.Item{{Description: "Pizza", Price: dec("20")}},
	}))
	if err != nil {
		t.Fatalf("CalculateShares failed: %v", err)
	}
	if len(resp.Msg.Participants) != 0 {
		t.Errorf("expected no participants, got %v", resp.Msg.Participants)
	}
}

func TestCalculateShares_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  *rpc.CalculateSharesRequest
	}{
		{
			name: "unknown participant",
			req: &rpc.CalculateSharesRequest{
				Items:        []rpc.Item{{Description: "Pizza", Price: dec("20"), Quantities: map[string]int{"Mallory": 1}}},
				Participants: []rpc.Participant{{Name: "Alice"}},
			},
		},
		{
			name: "duplicate participant",
			req: &rpc.CalculateSharesRequest{
				Participants: []rpc.Participant{{Name: "Alice"}, {Name: "Alice"}},
			},
		},
		{
			name: "negative price",
			req: &rpc.CalculateSharesRequest{
				Items:        []rpc.Item{{Description: "Refund", Price: dec("-5"), Quantities: map[string]int{"Alice": 1}}},
				Participants: []rpc.Participant{{Name: "Alice"}},
			},
		},
		{
			name: "negative tax",
			req: &rpc.CalculateSharesRequest{
				Participants: []rpc.Participant{{Name: "Alice"}},
				TaxPercent:   dec("-1"),
			},
		},
		{
			name: "unknown currency",
			req: &rpc.CalculateSharesRequest{
				Participants: []rpc.Participant{{Name: "Alice"}},
				Currency:     "XYZ",
			},
		},
	}

	client, cleanup := setupTestServer(t)
	defer cleanup()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CalculateShares(context.Background(), connect.NewRequest(tt.req))
			wantCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestCalculateTotal(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := client.CalculateTotal(context.Background(), connect.NewRequest(&rpc.CalculateTotalRequest{
		Items: []rpc.Item{
			{Description: "Burger", Price: dec("12.50"), Quantities: map[string]int{"Alice": 2}},
			{Description: "Fries", Price: dec("4.25"), Quantities: map[string]int{"Bob": 1}},
		},
		TaxAmount:        dec("2.33"),
		ServiceFeeAmount: dec("3"),
		Currency:         "usd",
	}))
	if err != nil {
		t.Fatalf("CalculateTotal failed: %v", err)
	}

	if !resp.Msg.Total.Equal(dec("34.58")) {
		t.Errorf("expected total 34.58, got %s", resp.Msg.Total)
	}
	if resp.Msg.Formatted != "$34.58" {
		t.Errorf("expected formatted $34.58, got %s", resp.Msg.Formatted)
	}
}
