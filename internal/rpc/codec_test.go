package rpc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestCodec(t *testing.T) {
	codec := Codec{}
	if codec.Name() != "json" {
		t.Errorf("Name() = %q, want json", codec.Name())
	}

	t.Run("money is a decimal string on the wire", func(t *testing.T) {
		b, err := codec.Marshal(&LineItem{Description: "Es Teh", Price: decimal.RequireFromString("5000.50")})
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		want := `{"description":"Es Teh","price":"5000.5"}`
		if string(b) != want {
			t.Errorf("Marshal() = %s, want %s", b, want)
		}
	})

	t.Run("money accepts numbers and strings", func(t *testing.T) {
		var req CalculateSharesRequest
		err := codec.Unmarshal([]byte(`{
			"items": [{"description": "Nasi", "price": 100000, "quantities": {"A": 1}}],
			"participants": [{"name": "A"}],
			"taxPercent": "10",
			"serviceFeePercent": 5.5
		}`), &req)
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		want := CalculateSharesRequest{
			Items:             []Item{{Description: "Nasi", Price: decimal.NewFromInt(100000), Quantities: map[string]int{"A": 1}}},
			Participants:      []Participant{{Name: "A"}},
			TaxPercent:        decimal.NewFromInt(10),
			ServiceFeePercent: decimal.RequireFromString("5.5"),
		}
		if diff := cmp.Diff(want, req); diff != "" {
			t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		var req ListSplitBillsRequest
		if err := codec.Unmarshal(nil, &req); err != nil {
			t.Errorf("Unmarshal(nil) error = %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		var req GetSplitBillRequest
		if err := codec.Unmarshal([]byte(`{"id": "seven"}`), &req); err == nil {
			t.Error("Unmarshal() expected error for string id")
		}
	})
}
