package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/splitvault/internal/calculator"
	"github.com/mmynk/splitvault/internal/metrics"
	"github.com/mmynk/splitvault/internal/models"
	"github.com/mmynk/splitvault/internal/money"
	"github.com/mmynk/splitvault/internal/receipt"
	"github.com/mmynk/splitvault/internal/rpc"
	"github.com/mmynk/splitvault/internal/storage"
)

// SplitService implements the Connect SplitService
type SplitService struct {
	rpc.UnimplementedSplitServiceHandler
	store           storage.Store
	parser          *receipt.Parser
	recognizer      Recognizer
	metrics         *metrics.Registry
	defaultCurrency money.Currency
}

// Option configures a SplitService.
type Option func(*SplitService)

// WithRecognizer enables ParseReceipt requests that carry only an image reference.
func WithRecognizer(r Recognizer) Option {
	return func(s *SplitService) { s.recognizer = r }
}

// WithMetrics records parser and calculator metrics in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *SplitService) { s.metrics = reg }
}

// WithDefaultCurrency sets the currency used when a request names none.
func WithDefaultCurrency(c money.Currency) Option {
	return func(s *SplitService) { s.defaultCurrency = c }
}

// NewSplitService creates a new SplitService with the given storage backend.
func NewSplitService(store storage.Store, opts ...Option) *SplitService {
	s := &SplitService{
		store:           store,
		parser:          receipt.NewParser(),
		metrics:         metrics.NewRegistry(),
		defaultCurrency: money.IDR,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// contentHash identifies receipt text independent of line endings.
func contentHash(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	sum := blake2b.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// ParseReceipt parses receipt text, recognizing it from the image first when
// only an image reference is given, and stores the result as a receipt scan.
func (s *SplitService) ParseReceipt(ctx context.Context, req *connect.Request[rpc.ParseReceiptRequest]) (*connect.Response[rpc.ParseReceiptResponse], error) {
	text := req.Msg.RawText
	if strings.TrimSpace(text) == "" {
		if req.Msg.ImageRef == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("raw_text or image_ref required"))
		}
		if s.recognizer == nil {
			return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("no text recognizer configured; send raw_text"))
		}

		recognized, err := s.recognizer.Recognize(ctx, req.Msg.ImageRef)
		if err != nil {
			slog.Error("ParseReceipt: recognition failed", "image_ref", req.Msg.ImageRef, "error", err)
			return nil, connect.NewError(connect.CodeUnavailable, errors.New("processing failed"))
		}
		text = recognized
	}

	hash := contentHash(text)
	existing, err := s.store.GetReceiptScanByHash(ctx, hash)
	if err == nil {
		s.metrics.ReceiptDuplicates.Inc()
		slog.Info("ParseReceipt: returning existing scan", "scan_id", existing.ID)
		return scanResponse(existing, true), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, storeError("ParseReceipt", err)
	}

	parsed, stats := s.parser.ParseWithStats(text)
	s.observeParse(parsed, stats)

	scan := &models.ReceiptScan{
		ImageRef:    req.Msg.ImageRef,
		ContentHash: hash,
		Receipt:     parsed,
	}
	if err := s.store.CreateReceiptScan(ctx, scan); err != nil {
		// Lost a race with an identical scan.
		if errors.Is(err, storage.ErrConflict) {
			if existing, gerr := s.store.GetReceiptScanByHash(ctx, hash); gerr == nil {
				return scanResponse(existing, true), nil
			}
		}
		return nil, storeError("ParseReceipt", err)
	}

	slog.Info("Receipt parsed",
		"scan_id", scan.ID,
		"merchant", parsed.Merchant,
		"line_items", len(parsed.LineItems),
		"total", parsed.TotalAmount,
	)
	return scanResponse(scan, false), nil
}

func scanResponse(scan *models.ReceiptScan, duplicate bool) *connect.Response[rpc.ParseReceiptResponse] {
	return connect.NewResponse(&rpc.ParseReceiptResponse{
		ScanID:    scan.ID,
		Receipt:   receiptToWire(scan.Receipt),
		Duplicate: duplicate,
	})
}

func (s *SplitService) observeParse(parsed models.ParsedReceipt, stats receipt.Stats) {
	slog.Debug("Parse stats",
		"lines", stats.Lines,
		"price_rules", stats.PriceRules,
		"fallback", stats.FallbackUsed,
		"total_from_keyword", stats.TotalFromKeyword,
	)
	s.metrics.ReceiptsParsed.Inc()
	s.metrics.LineItemsPerScan.Observe(float64(len(parsed.LineItems)))
	if stats.FallbackUsed {
		s.metrics.ParseFallbacks.Inc()
	}
	for rule, n := range stats.PriceRules {
		s.metrics.PriceRuleHits.WithLabelValues(rule).Add(float64(n))
	}
}

// ValidateAssignments reports items that nobody is assigned to.
func (s *SplitService) ValidateAssignments(ctx context.Context, req *connect.Request[rpc.ValidateAssignmentsRequest]) (*connect.Response[rpc.ValidateAssignmentsResponse], error) {
	items, err := itemsFromWire(req.Msg.Items)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	errs := calculator.ValidateAssignments(items)
	return connect.NewResponse(&rpc.ValidateAssignmentsResponse{
		Valid:  len(errs) == 0,
		Errors: errs,
	}), nil
}

// CalculateShares computes each participant's share without storing anything.
func (s *SplitService) CalculateShares(ctx context.Context, req *connect.Request[rpc.CalculateSharesRequest]) (*connect.Response[rpc.CalculateSharesResponse], error) {
	items, err := itemsFromWire(req.Msg.Items)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	participants := participantsFromWire(req.Msg.Participants)
	cur, err := s.currency(req.Msg.Currency)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	tax := money.PercentFromDecimal(req.Msg.TaxPercent)
	fee := money.PercentFromDecimal(req.Msg.ServiceFeePercent)
	if err := validateSplit(items, participants, tax, fee); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	breakdown := s.calculate(items, participants, tax, fee)
	for i := range participants {
		participants[i].ShareAmount = breakdown[i].Total
	}

	return connect.NewResponse(&rpc.CalculateSharesResponse{
		Participants:     participantsToWire(participants, cur),
		Breakdown:        breakdownToWire(breakdown),
		ValidationErrors: calculator.ValidateAssignments(items),
	}), nil
}

// calculate runs the share calculator and records it.
func (s *SplitService) calculate(items []models.SplitItem, participants []models.SplitParticipant, tax, fee money.Percentage) []calculator.PersonSplit {
	breakdown := calculator.CalculateBreakdown(items, participants, tax, fee)
	s.metrics.SharesCalculated.Inc()
	if len(breakdown) > 0 && breakdown[0].EqualSplit {
		s.metrics.EqualSplits.Inc()
	}
	for _, split := range breakdown {
		slog.Debug("Person split",
			"person", split.Participant,
			"subtotal", split.Subtotal,
			"tax", split.Tax,
			"service_fee", split.ServiceFee,
			"total", split.Total,
			"items_count", len(split.Items),
		)
	}
	return breakdown
}

// CalculateTotal adds absolute tax and service fee amounts to the assigned
// item value.
func (s *SplitService) CalculateTotal(ctx context.Context, req *connect.Request[rpc.CalculateTotalRequest]) (*connect.Response[rpc.CalculateTotalResponse], error) {
	items, err := itemsFromWire(req.Msg.Items)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	cur, err := s.currency(req.Msg.Currency)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if req.Msg.TaxAmount.IsNegative() || req.Msg.ServiceFeeAmount.IsNegative() {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("tax and service fee amounts must not be negative"))
	}

	total := calculator.CalculateTotalAmount(items,
		money.NewAmount(req.Msg.TaxAmount),
		money.NewAmount(req.Msg.ServiceFeeAmount),
	)
	return connect.NewResponse(&rpc.CalculateTotalResponse{
		Total:     total,
		Formatted: cur.Format(total),
	}), nil
}

// currency resolves a request currency code, falling back to the default.
func (s *SplitService) currency(code string) (money.Currency, error) {
	if strings.TrimSpace(code) == "" {
		return s.defaultCurrency, nil
	}
	return money.LookupCurrency(code)
}

// validateSplit checks the inputs the calculator assumes: unique non-empty
// participant names, non-negative prices and rates, and assignments only to
// known participants.
func validateSplit(items []models.SplitItem, participants []models.SplitParticipant, tax, fee money.Percentage) error {
	names := make(map[string]bool, len(participants))
	for i, p := range participants {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("participant %d has no name", i+1)
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate participant %q", p.Name)
		}
		names[p.Name] = true
	}

	for i, item := range items {
		if item.Price.IsNegative() {
			return fmt.Errorf("item %d (%s): price must not be negative", i+1, item.Description)
		}
		for _, name := range item.AssignedParticipants() {
			if !names[name] {
				return fmt.Errorf("item %d (%s) is assigned to unknown participant %q", i+1, item.Description, name)
			}
		}
	}

	if tax.Decimal().IsNegative() {
		return errors.New("tax percent must not be negative")
	}
	if fee.Decimal().IsNegative() {
		return errors.New("service fee percent must not be negative")
	}
	return nil
}

// storeError logs a storage failure and maps it to a Connect code.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.Warn(op+" failed", "error", err)
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		slog.Warn(op+" failed", "error", err)
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}
