package models

import "github.com/shopspring/decimal"

// ParsedLineItem is one priced line read from receipt text. It is not yet
// tied to a bill.
type ParsedLineItem struct {
	Description string
	Price       decimal.Decimal

	// IsExtraCharge marks surcharges such as delivery or packaging fees.
	IsExtraCharge bool
}

// ParsedReceipt is the best-effort structure recovered from one OCR pass.
// Every numeric field is zero when nothing was found.
type ParsedReceipt struct {
	// Merchant is empty when no header line qualified.
	Merchant string

	// Title is "<Merchant> Receipt", or "Receipt" without a merchant.
	Title string

	LineItems   []ParsedLineItem
	Tax         decimal.Decimal
	ServiceFee  decimal.Decimal
	TotalAmount decimal.Decimal
	RawText     string
}

// HasMerchant reports whether a merchant was recognised.
func (r ParsedReceipt) HasMerchant() bool {
	return r.Merchant != ""
}

// SplitItems maps the parsed line items to editable, unassigned split items.
// IDs are left for the store to assign.
func (r ParsedReceipt) SplitItems() []SplitItem {
	items := make([]SplitItem, len(r.LineItems))
	for i, li := range r.LineItems {
		items[i] = SplitItem{
			Description:        li.Description,
			Price:              li.Price,
			AssignedQuantities: map[string]int{},
		}
	}
	return items
}

// ReceiptScan is a persisted parse of one receipt.
type ReceiptScan struct {
	// ID is a UUID assigned by the store.
	ID string

	// ImageRef is the opaque reference of the photographed image, if any.
	ImageRef string

	// ContentHash identifies identical raw text, so re-scanning the same
	// receipt returns the existing scan.
	ContentHash string

	Receipt ParsedReceipt

	// CreatedAt is the Unix timestamp when the scan was stored.
	CreatedAt int64
}
