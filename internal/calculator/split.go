package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitvault/internal/models"
	"github.com/mmynk/splitvault/internal/money"
)

// PersonItem is one participant's portion of an item.
type PersonItem struct {
	Description string
	Quantity    int
	Amount      decimal.Decimal // unit price × quantity
}

// PersonSplit represents the calculated split for one person
type PersonSplit struct {
	Participant string

	// Subtotal is the participant's base consumption before tax and fee.
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	ServiceFee decimal.Decimal

	// Total is Subtotal + Tax + ServiceFee rounded to two places. It becomes
	// the participant's ShareAmount.
	Total decimal.Decimal

	Items []PersonItem

	// EqualSplit is set when nobody had any item assigned and the whole bill
	// was divided evenly.
	EqualSplit bool
}

// ValidateAssignments returns one message per item that nobody is assigned
// to, in item order. An empty result means every item is assigned.
func ValidateAssignments(items []models.SplitItem) []string {
	var errs []string
	for i, item := range items {
		if !item.IsAssigned() {
			errs = append(errs, fmt.Sprintf("item %d (%s) is not assigned to any participant", i+1, item.Description))
		}
	}
	return errs
}

// CalculateShares computes each participant's ShareAmount. Tax and service
// fee are percentages applied to each participant's own base consumption:
//
//	share = round2(base + base×tax/100 + base×serviceFee/100)
//
// Participants are returned in input order with only ShareAmount changed.
func CalculateShares(items []models.SplitItem, participants []models.SplitParticipant, tax, serviceFee money.Percentage) []models.SplitParticipant {
	splits := CalculateBreakdown(items, participants, tax, serviceFee)

	out := make([]models.SplitParticipant, len(participants))
	for i, p := range participants {
		p.ShareAmount = splits[i].Total
		out[i] = p
	}
	return out
}

// CalculateBreakdown is CalculateShares with the per-participant subtotal,
// tax, service fee and items. The result is parallel to participants.
//
// When no participant has anything assigned the bill is split equally: every
// item counts once at its unit price (or at its own total quantity, if units
// were assigned to names outside the participant list), tax and fee are added
// on that total, and each participant gets an equal rounded share.
func CalculateBreakdown(items []models.SplitItem, participants []models.SplitParticipant, tax, serviceFee money.Percentage) []PersonSplit {
	splits := make([]PersonSplit, len(participants))
	if len(participants) == 0 {
		return splits
	}

	totalBase := decimal.Zero
	for i, p := range participants {
		split := PersonSplit{Participant: p.Name, Subtotal: decimal.Zero}
		for _, item := range items {
			q := item.AssignedQuantities[p.Name]
			if q <= 0 {
				continue
			}
			amount := item.Price.Mul(decimal.NewFromInt(int64(q)))
			split.Subtotal = split.Subtotal.Add(amount)
			split.Items = append(split.Items, PersonItem{
				Description: item.Description,
				Quantity:    q,
				Amount:      amount,
			})
		}
		totalBase = totalBase.Add(split.Subtotal)
		splits[i] = split
	}

	if totalBase.IsZero() {
		return equalSplit(items, participants, tax, serviceFee)
	}

	// Apply proportional tax and fee and calculate total
	for i := range splits {
		split := &splits[i]
		split.Tax = tax.Of(split.Subtotal)
		split.ServiceFee = serviceFee.Of(split.Subtotal)
		split.Total = money.Round2(split.Subtotal.Add(split.Tax).Add(split.ServiceFee))
	}
	return splits
}

func equalSplit(items []models.SplitItem, participants []models.SplitParticipant, tax, serviceFee money.Percentage) []PersonSplit {
	totalToSplit := decimal.Zero
	for _, item := range items {
		units := item.TotalQuantity()
		if units <= 0 {
			units = 1
		}
		totalToSplit = totalToSplit.Add(item.Price.Mul(decimal.NewFromInt(int64(units))))
	}

	n := decimal.NewFromInt(int64(len(participants)))
	taxAmount := tax.Of(totalToSplit)
	feeAmount := serviceFee.Of(totalToSplit)
	share := money.Round2(totalToSplit.Add(taxAmount).Add(feeAmount).Div(n))

	splits := make([]PersonSplit, len(participants))
	for i, p := range participants {
		splits[i] = PersonSplit{
			Participant: p.Name,
			Subtotal:    totalToSplit.Div(n),
			Tax:         taxAmount.Div(n),
			ServiceFee:  feeAmount.Div(n),
			Total:       share,
			EqualSplit:  true,
		}
	}
	return splits
}

// CalculateTotalAmount returns round2(Σ item.TotalValue + tax + serviceFee).
//
// Unlike CalculateShares, tax and serviceFee here are absolute amounts in
// currency units, not percentages.
func CalculateTotalAmount(items []models.SplitItem, tax, serviceFee money.Amount) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalValue())
	}
	return money.Round2(total.Add(tax.Decimal()).Add(serviceFee.Decimal()))
}
