package rpc

import "github.com/shopspring/decimal"

// Money fields are decimal strings on the wire ("115000.00") and accept
// either strings or JSON numbers on input.

type LineItem struct {
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	IsExtraCharge bool            `json:"isExtraCharge,omitempty"`
}

type Receipt struct {
	Merchant    string          `json:"merchant,omitempty"`
	Title       string          `json:"title"`
	LineItems   []LineItem      `json:"lineItems"`
	Tax         decimal.Decimal `json:"tax"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	RawText     string          `json:"rawText"`
}

// ParseReceiptRequest carries either OCR text or an image reference to
// recognize. RawText wins when both are set.
type ParseReceiptRequest struct {
	ImageRef string `json:"imageRef,omitempty"`
	RawText  string `json:"rawText,omitempty"`
}

type ParseReceiptResponse struct {
	ScanID  string  `json:"scanId"`
	Receipt Receipt `json:"receipt"`

	// Duplicate is set when identical text was scanned before and the
	// earlier scan was returned.
	Duplicate bool `json:"duplicate,omitempty"`
}

// Item is a priced item with per-participant unit quantities.
type Item struct {
	ID          int64           `json:"id,omitempty"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantities  map[string]int  `json:"quantities,omitempty"`
}

type Participant struct {
	ID             int64           `json:"id,omitempty"`
	Name           string          `json:"name"`
	ShareAmount    decimal.Decimal `json:"shareAmount"`
	FormattedShare string          `json:"formattedShare,omitempty"`
	Note           string          `json:"note,omitempty"`
}

type ValidateAssignmentsRequest struct {
	Items []Item `json:"items"`
}

type ValidateAssignmentsResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

type CalculateSharesRequest struct {
	Items             []Item          `json:"items"`
	Participants      []Participant   `json:"participants"`
	TaxPercent        decimal.Decimal `json:"taxPercent"`
	ServiceFeePercent decimal.Decimal `json:"serviceFeePercent"`
	Currency          string          `json:"currency,omitempty"`
}

type PersonItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

type PersonSplit struct {
	Participant string          `json:"participant"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	Total       decimal.Decimal `json:"total"`
	Items       []PersonItem    `json:"items,omitempty"`
	EqualSplit  bool            `json:"equalSplit,omitempty"`
}

type CalculateSharesResponse struct {
	Participants     []Participant `json:"participants"`
	Breakdown        []PersonSplit `json:"breakdown"`
	ValidationErrors []string      `json:"validationErrors,omitempty"`
}

type CalculateTotalRequest struct {
	Items            []Item          `json:"items"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`
	ServiceFeeAmount decimal.Decimal `json:"serviceFeeAmount"`
	Currency         string          `json:"currency,omitempty"`
}

type CalculateTotalResponse struct {
	Total     decimal.Decimal `json:"total"`
	Formatted string          `json:"formatted"`
}

type SplitBill struct {
	ID                int64           `json:"id,omitempty"`
	Title             string          `json:"title,omitempty"`
	Merchant          string          `json:"merchant,omitempty"`
	Currency          string          `json:"currency,omitempty"`
	TaxPercent        decimal.Decimal `json:"taxPercent"`
	ServiceFeePercent decimal.Decimal `json:"serviceFeePercent"`
	PaidBy            string          `json:"paidBy,omitempty"`
	ReceiptScanID     string          `json:"receiptScanId,omitempty"`
	Items             []Item          `json:"items"`
	Participants      []Participant   `json:"participants"`

	// Total is the sum of participant shares. Ignored on input.
	Total     decimal.Decimal `json:"total"`
	CreatedAt int64           `json:"createdAt,omitempty"`
}

type CreateSplitBillRequest struct {
	Bill SplitBill `json:"bill"`
}

type CreateSplitBillResponse struct {
	Bill             SplitBill `json:"bill"`
	ValidationErrors []string  `json:"validationErrors,omitempty"`
}

type GetSplitBillRequest struct {
	ID int64 `json:"id"`
}

type GetSplitBillResponse struct {
	Bill      SplitBill     `json:"bill"`
	Breakdown []PersonSplit `json:"breakdown"`
}

type UpdateSplitBillRequest struct {
	Bill SplitBill `json:"bill"`
}

type UpdateSplitBillResponse struct {
	Bill             SplitBill `json:"bill"`
	ValidationErrors []string  `json:"validationErrors,omitempty"`
}

type DeleteSplitBillRequest struct {
	ID int64 `json:"id"`
}

type DeleteSplitBillResponse struct{}

type ListSplitBillsRequest struct{}

type BillSummary struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	Merchant         string          `json:"merchant,omitempty"`
	Currency         string          `json:"currency"`
	PaidBy           string          `json:"paidBy,omitempty"`
	Total            decimal.Decimal `json:"total"`
	ParticipantCount int32           `json:"participantCount"`
	CreatedAt        int64           `json:"createdAt"`
}

type ListSplitBillsResponse struct {
	Bills []BillSummary `json:"bills"`
}

// SettleUpRequest selects the bills to settle. An empty BillIDs means every
// stored bill.
type SettleUpRequest struct {
	BillIDs []int64 `json:"billIds,omitempty"`
}

type MemberBalance struct {
	Name       string          `json:"name"`
	NetBalance decimal.Decimal `json:"netBalance"`
	TotalPaid  decimal.Decimal `json:"totalPaid"`
	TotalOwed  decimal.Decimal `json:"totalOwed"`
}

type Debt struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

type SettleUpResponse struct {
	Currency string          `json:"currency"`
	Balances []MemberBalance `json:"balances"`
	Debts    []Debt          `json:"debts"`

	// SkippedBills lists bills without a payer.
	SkippedBills []int64 `json:"skippedBills,omitempty"`
}
