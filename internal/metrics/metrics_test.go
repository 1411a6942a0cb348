package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	r.ReceiptsParsed.Inc()
	r.PriceRuleHits.WithLabelValues("two-decimal").Add(3)
	r.RPCRequests.WithLabelValues("/splitvault.v1.SplitService/ParseReceipt", "ok").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		"splitvault_receipts_parsed_total 1",
		`splitvault_receipt_price_rule_hits_total{rule="two-decimal"} 3`,
		`splitvault_rpc_requests_total{code="ok",procedure="/splitvault.v1.SplitService/ParseReceipt"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistry_HelpText(t *testing.T) {
	r := NewRegistry()
	r.RPCRequests.WithLabelValues("/p", "ok").Inc()
	r.RPCLatencySec.WithLabelValues("/p").Observe(0.1)
	r.PriceRuleHits.WithLabelValues("two-decimal").Inc()

	families, err := r.reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	var seen int
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "splitvault_") {
			continue
		}
		seen++
		if mf.GetHelp() == "" {
			t.Errorf("%s has no help text", mf.GetName())
		}
	}
	if seen != 9 {
		t.Errorf("expected 9 splitvault metrics, got %d", seen)
	}
}
