package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitvault/internal/calculator"
	"github.com/mmynk/splitvault/internal/models"
	"github.com/mmynk/splitvault/internal/money"
	"github.com/mmynk/splitvault/internal/rpc"
	"github.com/mmynk/splitvault/internal/storage"
)

// maxTitleItems is how many item descriptions go into a generated title.
const maxTitleItems = 3

// validatePayer checks that the payer, if set, is one of the participants.
func validatePayer(paidBy string, participants []models.SplitParticipant) error {
	if paidBy == "" {
		return nil // Optional field
	}
	for _, p := range participants {
		if p.Name == paidBy {
			return nil
		}
	}
	return fmt.Errorf("paid_by '%s' must be one of the participants", paidBy)
}

// itemsTitle builds "Pizza, Beer, Salad - Alice, Bob" from the first items.
// It returns "" when there are no items, leaving the store to title the bill
// after its participants.
func itemsTitle(items []models.SplitItem, participants []models.SplitParticipant) string {
	var descs []string
	for _, item := range items {
		if len(descs) == maxTitleItems {
			break
		}
		if d := strings.TrimSpace(item.Description); d != "" {
			descs = append(descs, d)
		}
	}
	if len(descs) == 0 {
		return ""
	}
	title := strings.Join(descs, ", ")
	if len(participants) > 0 {
		title += " - " + strings.Join(models.ParticipantNames(participants), ", ")
	}
	return title
}

// prepareBill fills in defaults from the linked receipt scan, validates the
// bill, and writes calculated shares into its participants. It returns
// the resolved currency and non-fatal assignment messages.
func (s *SplitService) prepareBill(ctx context.Context, bill *models.SplitBill) (money.Currency, []string, error) {
	if bill.ReceiptScanID != "" {
		scan, err := s.store.GetReceiptScan(ctx, bill.ReceiptScanID)
		if errors.Is(err, storage.ErrNotFound) {
			return money.Currency{}, nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("receipt scan %s does not exist", bill.ReceiptScanID))
		}
		if err != nil {
			return money.Currency{}, nil, storeError("GetReceiptScan", err)
		}
		if len(bill.Items) == 0 {
			bill.Items = scan.Receipt.SplitItems()
		}
		if bill.Merchant == "" {
			bill.Merchant = scan.Receipt.Merchant
		}
		if bill.Title == "" && scan.Receipt.HasMerchant() {
			bill.Title = scan.Receipt.Title
		}
	}

	cur, err := s.currency(bill.Currency)
	if err != nil {
		return money.Currency{}, nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	bill.Currency = cur.Code

	if len(bill.Participants) == 0 {
		return money.Currency{}, nil, connect.NewError(connect.CodeInvalidArgument, errors.New("at least one participant required"))
	}
	tax := money.PercentFromDecimal(bill.TaxPercent)
	fee := money.PercentFromDecimal(bill.ServiceFeePercent)
	if err := validateSplit(bill.Items, bill.Participants, tax, fee); err != nil {
		return money.Currency{}, nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := validatePayer(bill.PaidBy, bill.Participants); err != nil {
		return money.Currency{}, nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if bill.Title == "" {
		bill.Title = itemsTitle(bill.Items, bill.Participants)
	}

	breakdown := s.calculate(bill.Items, bill.Participants, tax, fee)
	for i := range bill.Participants {
		bill.Participants[i].ShareAmount = breakdown[i].Total
	}
	return cur, calculator.ValidateAssignments(bill.Items), nil
}

// CreateSplitBill calculates shares and persists a new bill.
func (s *SplitService) CreateSplitBill(ctx context.Context, req *connect.Request[rpc.CreateSplitBillRequest]) (*connect.Response[rpc.CreateSplitBillResponse], error) {
	bill, err := billFromWire(req.Msg.Bill)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	bill.ID = 0

	cur, validation, err := s.prepareBill(ctx, bill)
	if err != nil {
		slog.Error("CreateSplitBill validation failed", "error", err)
		return nil, err
	}

	// Save to storage (generates IDs and CreatedAt)
	if err := s.store.CreateSplitBill(ctx, bill); err != nil {
		return nil, storeError("CreateSplitBill", err)
	}
	slog.Info("Split bill created", "bill_id", bill.ID, "participants", len(bill.Participants), "items", len(bill.Items))

	return connect.NewResponse(&rpc.CreateSplitBillResponse{
		Bill:             billToWire(bill, cur),
		ValidationErrors: validation,
	}), nil
}

// GetSplitBill retrieves a bill with its stored shares and a fresh breakdown.
func (s *SplitService) GetSplitBill(ctx context.Context, req *connect.Request[rpc.GetSplitBillRequest]) (*connect.Response[rpc.GetSplitBillResponse], error) {
	bill, err := s.store.GetSplitBill(ctx, req.Msg.ID)
	if err != nil {
		return nil, storeError("GetSplitBill", err)
	}

	cur, err := s.currency(bill.Currency)
	if err != nil {
		slog.Warn("GetSplitBill: stored currency unknown, using default", "bill_id", bill.ID, "currency", bill.Currency)
		cur = s.defaultCurrency
	}
	breakdown := calculator.CalculateBreakdown(bill.Items, bill.Participants,
		money.PercentFromDecimal(bill.TaxPercent),
		money.PercentFromDecimal(bill.ServiceFeePercent),
	)

	return connect.NewResponse(&rpc.GetSplitBillResponse{
		Bill:      billToWire(bill, cur),
		Breakdown: breakdownToWire(breakdown),
	}), nil
}

// UpdateSplitBill recalculates shares and replaces a stored bill.
func (s *SplitService) UpdateSplitBill(ctx context.Context, req *connect.Request[rpc.UpdateSplitBillRequest]) (*connect.Response[rpc.UpdateSplitBillResponse], error) {
	if req.Msg.Bill.ID <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("bill id required"))
	}

	// First, get the existing bill so the creation time survives
	existing, err := s.store.GetSplitBill(ctx, req.Msg.Bill.ID)
	if err != nil {
		return nil, storeError("UpdateSplitBill", err)
	}

	bill, err := billFromWire(req.Msg.Bill)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	bill.CreatedAt = existing.CreatedAt

	cur, validation, err := s.prepareBill(ctx, bill)
	if err != nil {
		slog.Error("UpdateSplitBill validation failed", "bill_id", bill.ID, "error", err)
		return nil, err
	}

	if err := s.store.UpdateSplitBill(ctx, bill); err != nil {
		return nil, storeError("UpdateSplitBill", err)
	}

	return connect.NewResponse(&rpc.UpdateSplitBillResponse{
		Bill:             billToWire(bill, cur),
		ValidationErrors: validation,
	}), nil
}

// DeleteSplitBill deletes a bill.
func (s *SplitService) DeleteSplitBill(ctx context.Context, req *connect.Request[rpc.DeleteSplitBillRequest]) (*connect.Response[rpc.DeleteSplitBillResponse], error) {
	if req.Msg.ID <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("bill id required"))
	}

	if err := s.store.DeleteSplitBill(ctx, req.Msg.ID); err != nil {
		return nil, storeError("DeleteSplitBill", err)
	}

	return connect.NewResponse(&rpc.DeleteSplitBillResponse{}), nil
}

// ListSplitBills returns summaries of all bills, newest first.
func (s *SplitService) ListSplitBills(ctx context.Context, req *connect.Request[rpc.ListSplitBillsRequest]) (*connect.Response[rpc.ListSplitBillsResponse], error) {
	bills, err := s.store.ListSplitBills(ctx)
	if err != nil {
		return nil, storeError("ListSplitBills", err)
	}

	// Convert to bill summaries
	summaries := make([]rpc.BillSummary, len(bills))
	for i, bill := range bills {
		summaries[i] = billSummary(bill)
	}

	return connect.NewResponse(&rpc.ListSplitBillsResponse{
		Bills: summaries,
	}), nil
}

// SettleUp nets out who owes whom across bills that have a payer.
func (s *SplitService) SettleUp(ctx context.Context, req *connect.Request[rpc.SettleUpRequest]) (*connect.Response[rpc.SettleUpResponse], error) {
	var bills []*models.SplitBill
	if len(req.Msg.BillIDs) == 0 {
		all, err := s.store.ListSplitBills(ctx)
		if err != nil {
			return nil, storeError("SettleUp", err)
		}
		bills = all
	} else {
		for _, id := range req.Msg.BillIDs {
			bill, err := s.store.GetSplitBill(ctx, id)
			if err != nil {
				return nil, storeError("SettleUp", err)
			}
			bills = append(bills, bill)
		}
	}

	cur := s.defaultCurrency
	var (
		forBalance []calculator.BillForBalance
		skipped    []int64
	)
	for i, bill := range bills {
		if i == 0 {
			c, err := s.currency(bill.Currency)
			if err != nil {
				return nil, connect.NewError(connect.CodeFailedPrecondition, err)
			}
			cur = c
		} else if bill.Currency != cur.Code {
			return nil, connect.NewError(connect.CodeFailedPrecondition,
				fmt.Errorf("bills use different currencies: %s and %s", cur.Code, bill.Currency))
		}

		if bill.PaidBy == "" {
			skipped = append(skipped, bill.ID)
			continue
		}
		forBalance = append(forBalance, calculator.BillForBalance{
			PaidBy: bill.PaidBy,
			Shares: bill.Participants,
		})
	}

	balances, debts := calculator.CalculateBalances(forBalance)

	resp := &rpc.SettleUpResponse{
		Currency:     cur.Code,
		Balances:     make([]rpc.MemberBalance, len(balances)),
		Debts:        make([]rpc.Debt, len(debts)),
		SkippedBills: skipped,
	}
	for i, b := range balances {
		resp.Balances[i] = rpc.MemberBalance{
			Name:       b.MemberName,
			NetBalance: b.NetBalance,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
		}
	}
	for i, d := range debts {
		resp.Debts[i] = rpc.Debt{
			From:      d.From,
			To:        d.To,
			Amount:    d.Amount,
			Formatted: cur.Format(d.Amount),
		}
	}
	slog.Info("Settled up", "bills", len(forBalance), "skipped", len(skipped), "debts", len(debts))

	return connect.NewResponse(resp), nil
}
