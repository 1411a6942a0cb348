package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitvault/internal/calculator"
	"github.com/mmynk/splitvault/internal/models"
	"github.com/mmynk/splitvault/internal/money"
	"github.com/mmynk/splitvault/internal/rpc"
)

// itemsFromWire converts request items. Zero quantities are dropped,
// negative ones are rejected.
func itemsFromWire(in []rpc.Item) ([]models.SplitItem, error) {
	items := make([]models.SplitItem, len(in))
	for i, it := range in {
		item := models.SplitItem{
			ID:                 it.ID,
			Description:        it.Description,
			Price:              it.Price,
			AssignedQuantities: map[string]int{},
		}
		for name, q := range it.Quantities {
			if q < 0 {
				return nil, fmt.Errorf("item %d (%s): quantity for %q must not be negative", i+1, it.Description, name)
			}
			item.Assign(name, q)
		}
		items[i] = item
	}
	return items, nil
}

func participantsFromWire(in []rpc.Participant) []models.SplitParticipant {
	out := make([]models.SplitParticipant, len(in))
	for i, p := range in {
		out[i] = models.SplitParticipant{ID: p.ID, Name: p.Name, Note: p.Note}
	}
	return out
}

func billFromWire(in rpc.SplitBill) (*models.SplitBill, error) {
	items, err := itemsFromWire(in.Items)
	if err != nil {
		return nil, err
	}
	return &models.SplitBill{
		ID:                in.ID,
		Title:             in.Title,
		Merchant:          in.Merchant,
		Currency:          in.Currency,
		TaxPercent:        in.TaxPercent,
		ServiceFeePercent: in.ServiceFeePercent,
		PaidBy:            in.PaidBy,
		ReceiptScanID:     in.ReceiptScanID,
		Items:             items,
		Participants:      participantsFromWire(in.Participants),
	}, nil
}

func itemsToWire(in []models.SplitItem) []rpc.Item {
	out := make([]rpc.Item, len(in))
	for i, item := range in {
		quantities := make(map[string]int, len(item.AssignedQuantities))
		for name, q := range item.AssignedQuantities {
			quantities[name] = q
		}
		out[i] = rpc.Item{
			ID:          item.ID,
			Description: item.Description,
			Price:       item.Price,
			Quantities:  quantities,
		}
	}
	return out
}

func participantsToWire(in []models.SplitParticipant, cur money.Currency) []rpc.Participant {
	out := make([]rpc.Participant, len(in))
	for i, p := range in {
		out[i] = rpc.Participant{
			ID:             p.ID,
			Name:           p.Name,
			ShareAmount:    p.ShareAmount,
			FormattedShare: cur.Format(p.ShareAmount),
			Note:           p.Note,
		}
	}
	return out
}

func billToWire(b *models.SplitBill, cur money.Currency) rpc.SplitBill {
	return rpc.SplitBill{
		ID:                b.ID,
		Title:             b.Title,
		Merchant:          b.Merchant,
		Currency:          b.Currency,
		TaxPercent:        b.TaxPercent,
		ServiceFeePercent: b.ServiceFeePercent,
		PaidBy:            b.PaidBy,
		ReceiptScanID:     b.ReceiptScanID,
		Items:             itemsToWire(b.Items),
		Participants:      participantsToWire(b.Participants, cur),
		Total:             billTotal(b),
		CreatedAt:         b.CreatedAt,
	}
}

func billSummary(b *models.SplitBill) rpc.BillSummary {
	return rpc.BillSummary{
		ID:               b.ID,
		Title:            b.Title,
		Merchant:         b.Merchant,
		Currency:         b.Currency,
		PaidBy:           b.PaidBy,
		Total:            billTotal(b),
		ParticipantCount: int32(len(b.Participants)),
		CreatedAt:        b.CreatedAt,
	}
}

// billTotal is what the participants pay altogether.
func billTotal(b *models.SplitBill) decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.Participants {
		total = total.Add(p.ShareAmount)
	}
	return total
}

func receiptToWire(r models.ParsedReceipt) rpc.Receipt {
	items := make([]rpc.LineItem, len(r.LineItems))
	for i, li := range r.LineItems {
		items[i] = rpc.LineItem{
			Description:   li.Description,
			Price:         li.Price,
			IsExtraCharge: li.IsExtraCharge,
		}
	}
	return rpc.Receipt{
		Merchant:    r.Merchant,
		Title:       r.Title,
		LineItems:   items,
		Tax:         r.Tax,
		ServiceFee:  r.ServiceFee,
		TotalAmount: r.TotalAmount,
		RawText:     r.RawText,
	}
}

func breakdownToWire(splits []calculator.PersonSplit) []rpc.PersonSplit {
	out := make([]rpc.PersonSplit, len(splits))
	for i, split := range splits {
		items := make([]rpc.PersonItem, len(split.Items))
		for j, item := range split.Items {
			items[j] = rpc.PersonItem{
				Description: item.Description,
				Quantity:    item.Quantity,
				Amount:      item.Amount,
			}
		}
		out[i] = rpc.PersonSplit{
			Participant: split.Participant,
			Subtotal:    money.Round2(split.Subtotal),
			Tax:         money.Round2(split.Tax),
			ServiceFee:  money.Round2(split.ServiceFee),
			Total:       split.Total,
			Items:       items,
			EqualSplit:  split.EqualSplit,
		}
	}
	return out
}
