// Package metrics exposes Prometheus counters for the RPC surface, the
// receipt parser and the share calculator.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private Prometheus registry and the collectors the
// service, parser and interceptors update.
type Registry struct {
	reg *prometheus.Registry

	RPCRequests   *prometheus.CounterVec   // labels: procedure, code
	RPCLatencySec *prometheus.HistogramVec // labels: procedure

	ReceiptsParsed    prometheus.Counter
	ReceiptDuplicates prometheus.Counter
	ParseFallbacks    prometheus.Counter
	PriceRuleHits     *prometheus.CounterVec // labels: rule
	LineItemsPerScan  prometheus.Histogram

	SharesCalculated prometheus.Counter
	EqualSplits      prometheus.Counter
}

// NewRegistry creates a Registry with Go and process collectors registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	rpcRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitvault_rpc_requests_total",
		Help: "RPC calls by procedure and result code.",
	}, []string{"procedure", "code"})
	rpcLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splitvault_rpc_latency_seconds",
		Help:    "RPC latency by procedure.",
		Buckets: prometheus.DefBuckets,
	}, []string{"procedure"})

	parsed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitvault_receipts_parsed_total",
		Help: "Receipts parsed into new scans.",
	})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitvault_receipt_duplicates_total",
		Help: "ParseReceipt calls answered with an existing scan.",
	})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitvault_receipt_fallback_parses_total",
		Help: "Receipts whose items came from the fallback pass.",
	})
	ruleHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitvault_receipt_price_rule_hits_total",
		Help: "Line items by the price rule that matched them.",
	}, []string{"rule"})
	lineItems := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "splitvault_receipt_line_items",
		Help:    "Line items found per parsed receipt.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	shares := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitvault_shares_calculated_total",
		Help: "Share calculations run.",
	})
	equalSplits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitvault_equal_splits_total",
		Help: "Share calculations that fell back to an equal split.",
	})

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		rpcRequests, rpcLatency, parsed, duplicates, fallbacks, ruleHits, lineItems, shares, equalSplits,
	)
	return &Registry{
		reg:               r,
		RPCRequests:       rpcRequests,
		RPCLatencySec:     rpcLatency,
		ReceiptsParsed:    parsed,
		ReceiptDuplicates: duplicates,
		ParseFallbacks:    fallbacks,
		PriceRuleHits:     ruleHits,
		LineItemsPerScan:  lineItems,
		SharesCalculated:  shares,
		EqualSplits:       equalSplits,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
