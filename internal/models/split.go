package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SplitBill is a bill being split among named participants, usually seeded
// from a scanned receipt.
type SplitBill struct {
	// ID is assigned by the store.
	ID int64

	// Title is the human-readable name for the bill.
	// Defaults to the parsed receipt title or a title built from participants.
	Title string

	// Merchant is the merchant guessed from the receipt, if any.
	Merchant string

	// Currency is the ISO code used when formatting shares (e.g., "IDR").
	Currency string

	// TaxPercent and ServiceFeePercent are rates (10 means 10%) applied to each
	// participant's own base consumption.
	TaxPercent        decimal.Decimal
	ServiceFeePercent decimal.Decimal

	// PaidBy is the participant who paid the bill. Optional; required only for
	// settling up across bills.
	PaidBy string

	// ReceiptScanID links the bill to the scan it was created from. Optional.
	ReceiptScanID string

	Items        []SplitItem
	Participants []SplitParticipant

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// SplitItem is one priced entry of a split bill.
type SplitItem struct {
	ID          int64
	SplitBillID int64
	Description string

	// Price is the price of a single unit.
	Price decimal.Decimal

	// AssignedQuantities maps participant name to the number of units they
	// consumed. Quantities are always > 0; use Assign to keep it that way.
	AssignedQuantities map[string]int
}

// Assign sets how many units a participant consumed. A quantity of zero or
// less removes the participant from the item.
func (i *SplitItem) Assign(participant string, quantity int) {
	if quantity <= 0 {
		delete(i.AssignedQuantities, participant)
		return
	}
	if i.AssignedQuantities == nil {
		i.AssignedQuantities = make(map[string]int)
	}
	i.AssignedQuantities[participant] = quantity
}

// IsAssigned reports whether at least one participant has this item.
func (i SplitItem) IsAssigned() bool {
	return len(i.AssignedQuantities) > 0
}

// TotalQuantity is the sum of all assigned quantities.
func (i SplitItem) TotalQuantity() int {
	total := 0
	for _, q := range i.AssignedQuantities {
		total += q
	}
	return total
}

// TotalValue is Price × TotalQuantity.
func (i SplitItem) TotalValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.TotalQuantity())))
}

// AssignedParticipants returns the assigned participant names, sorted.
func (i SplitItem) AssignedParticipants() []string {
	names := make([]string, 0, len(i.AssignedQuantities))
	for name := range i.AssignedQuantities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SplitParticipant is one person splitting a bill.
type SplitParticipant struct {
	ID          int64
	SplitBillID int64

	// Name is unique within a bill and is the key used in
	// SplitItem.AssignedQuantities.
	Name string

	// ShareAmount is written only by the share calculator.
	ShareAmount decimal.Decimal

	// Note is optional free text.
	Note string
}

// ParticipantNames returns the names of the given participants in order.
func ParticipantNames(participants []SplitParticipant) []string {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}
	return names
}
