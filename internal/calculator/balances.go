package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitvault/internal/models"
)

// BillForBalance is a split bill whose shares are already calculated, with
// the participant who paid it.
type BillForBalance struct {
	PaidBy string
	Shares []models.SplitParticipant
}

// MemberBalance represents the balance information for one participant.
type MemberBalance struct {
	MemberName string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid  decimal.Decimal // Total amount paid across all bills
	TotalOwed  decimal.Decimal // Total of this person's shares
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// CalculateBalances aggregates who paid and who owes across split bills and
// returns member balances plus a simplified set of debts.
//
// Algorithm:
//   - For each bill: the payer contributed the sum of all shares, each
//     participant owes their own share
//   - net_balance = total_paid - total_owed
//   - Debts: greedy matching of the largest debtor with the largest creditor
//
// Bills without a payer are skipped. Balances are sorted by member name.
func CalculateBalances(bills []BillForBalance) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	member := func(name string) *MemberBalance {
		b, ok := balances[name]
		if !ok {
			b = &MemberBalance{MemberName: name}
			balances[name] = b
		}
		return b
	}

	for _, bill := range bills {
		if bill.PaidBy == "" {
			continue
		}

		payer := member(bill.PaidBy)
		for _, share := range bill.Shares {
			payer.TotalPaid = payer.TotalPaid.Add(share.ShareAmount)
			owner := member(share.Name)
			owner.TotalOwed = owner.TotalOwed.Add(share.ShareAmount)
		}
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.NetBalance = bal.TotalPaid.Sub(bal.TotalOwed)
		memberBalances = append(memberBalances, *bal)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].MemberName < memberBalances[j].MemberName
	})

	return memberBalances, simplifyDebts(memberBalances)
}

func simplifyDebts(balances []MemberBalance) []DebtEdge {
	type position struct {
		name   string
		amount decimal.Decimal
	}

	var creditors, debtors []position
	for _, bal := range balances {
		switch bal.NetBalance.Sign() {
		case 1:
			creditors = append(creditors, position{bal.MemberName, bal.NetBalance})
		case -1:
			debtors = append(debtors, position{bal.MemberName, bal.NetBalance.Neg()})
		}
	}
	byAmount := func(p []position) func(i, j int) bool {
		return func(i, j int) bool {
			if c := p[i].amount.Cmp(p[j].amount); c != 0 {
				return c > 0
			}
			return p[i].name < p[j].name
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{From: debtors[i].name, To: creditors[j].name, Amount: amount})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}
	return edges
}
