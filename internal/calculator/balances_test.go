package calculator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/splitvault/internal/models"
)

func owed(pairs ...string) []models.SplitParticipant {
	var out []models.SplitParticipant
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.SplitParticipant{Name: pairs[i], ShareAmount: dec(pairs[i+1])})
	}
	return out
}

func TestCalculateBalances(t *testing.T) {
	tests := []struct {
		name         string
		bills        []BillForBalance
		wantBalances []MemberBalance
		wantDebts    []DebtEdge
	}{
		{
			name: "single bill",
			bills: []BillForBalance{
				{PaidBy: "Alice", Shares: owed("Alice", "50", "Bob", "30", "Carol", "20")},
			},
			wantBalances: []MemberBalance{
				{MemberName: "Alice", NetBalance: dec("50"), TotalPaid: dec("100"), TotalOwed: dec("50")},
				{MemberName: "Bob", NetBalance: dec("-30"), TotalPaid: dec("0"), TotalOwed: dec("30")},
				{MemberName: "Carol", NetBalance: dec("-20"), TotalPaid: dec("0"), TotalOwed: dec("20")},
			},
			wantDebts: []DebtEdge{
				{From: "Bob", To: "Alice", Amount: dec("30")},
				{From: "Carol", To: "Alice", Amount: dec("20")},
			},
		},
		{
			name: "debts net out across bills",
			bills: []BillForBalance{
				{PaidBy: "Alice", Shares: owed("Alice", "50", "Bob", "30", "Carol", "20")},
				{PaidBy: "Bob", Shares: owed("Alice", "40", "Bob", "20")},
			},
			wantBalances: []MemberBalance{
				{MemberName: "Alice", NetBalance: dec("10"), TotalPaid: dec("100"), TotalOwed: dec("90")},
				{MemberName: "Bob", NetBalance: dec("10"), TotalPaid: dec("60"), TotalOwed: dec("50")},
				{MemberName: "Carol", NetBalance: dec("-20"), TotalPaid: dec("0"), TotalOwed: dec("20")},
			},
			wantDebts: []DebtEdge{
				{From: "Carol", To: "Alice", Amount: dec("10")},
				{From: "Carol", To: "Bob", Amount: dec("10")},
			},
		},
		{
			name: "payer outside the participant list",
			bills: []BillForBalance{
				{PaidBy: "Dave", Shares: owed("Alice", "12.50", "Bob", "7.50")},
			},
			wantBalances: []MemberBalance{
				{MemberName: "Alice", NetBalance: dec("-12.50"), TotalPaid: dec("0"), TotalOwed: dec("12.50")},
				{MemberName: "Bob", NetBalance: dec("-7.50"), TotalPaid: dec("0"), TotalOwed: dec("7.50")},
				{MemberName: "Dave", NetBalance: dec("20"), TotalPaid: dec("20"), TotalOwed: dec("0")},
			},
			wantDebts: []DebtEdge{
				{From: "Alice", To: "Dave", Amount: dec("12.50")},
				{From: "Bob", To: "Dave", Amount: dec("7.50")},
			},
		},
		{
			name: "bill without payer is ignored",
			bills: []BillForBalance{
				{Shares: owed("Alice", "10")},
			},
			wantBalances: []MemberBalance{},
		},
		{
			name: "everyone pays their own way",
			bills: []BillForBalance{
				{PaidBy: "Alice", Shares: owed("Alice", "10")},
			},
			wantBalances: []MemberBalance{
				{MemberName: "Alice", NetBalance: dec("0"), TotalPaid: dec("10"), TotalOwed: dec("10")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, debts := CalculateBalances(tt.bills)
			if diff := cmp.Diff(tt.wantBalances, balances); diff != "" {
				t.Errorf("balances mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantDebts, debts); diff != "" {
				t.Errorf("debts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
