package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkale/tripledger/internal/models"
)

func amt(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad amount %q: %v", s, err)
	}
	return d
}

func people(ids ...string) []models.Person {
	ps := make([]models.Person, 0, len(ids))
	for _, id := range ids {
		ps = append(ps, models.Person{ID: id, Name: id})
	}
	return ps
}

func checkBalance(t *testing.T, balances BalanceVector, id, want string) {
	t.Helper()
	got, ok := balances[id]
	if !ok {
		t.Fatalf("no balance for %s", id)
	}
	if !got.Equal(amt(t, want)) {
		t.Errorf("balance[%s] = %s, want %s", id, got, want)
	}
}

func TestAggregateBalances_TwoPeopleOneExpense(t *testing.T) {
	// Alice pays $100 split evenly: Alice +50, Bob -50.
	expenses := []models.Expense{
		{
			ID:     "e1",
			Amount: amt(t, "100"),
			PaidBy: "alice",
			Splits: []models.Split{
				{PersonID: "alice", Amount: amt(t, "50")},
				{PersonID: "bob", Amount: amt(t, "50")},
			},
		},
	}

	balances, err := AggregateBalances(people("alice", "bob"), expenses, nil)
	if err != nil {
		t.Fatalf("AggregateBalances failed: %v", err)
	}

	checkBalance(t, balances, "alice", "50")
	checkBalance(t, balances, "bob", "-50")
	if !balances.Sum().IsZero() {
		t.Errorf("balances sum to %s, want 0", balances.Sum())
	}
}

func TestAggregateBalances_ThreePeopleTwoExpenses(t *testing.T) {
	// Expense1 $90 paid by A split evenly; Expense2 $60 paid by B split
	// evenly. A = 90-30-20 = +40, B = 60-30-20 = +10, C = -50.
	expenses := []models.Expense{
		{
			ID:     "e1",
			Amount: amt(t, "90"),
			PaidBy: "a",
			Splits: []models.Split{
				{PersonID: "a", Amount: amt(t, "30")},
				{PersonID: "b", Amount: amt(t, "30")},
				{PersonID: "c", Amount: amt(t, "30")},
			},
		},
		{
			ID:     "e2",
			Amount: amt(t, "60"),
			PaidBy: "b",
			Splits: []models.Split{
				{PersonID: "a", Amount: amt(t, "20")},
				{PersonID: "b", Amount: amt(t, "20")},
				{PersonID: "c", Amount: amt(t, "20")},
			},
		},
	}

	balances, err := AggregateBalances(people("a", "b", "c"), expenses, nil)
	if err != nil {
		t.Fatalf("AggregateBalances failed: %v", err)
	}

	checkBalance(t, balances, "a", "40")
	checkBalance(t, balances, "b", "10")
	checkBalance(t, balances, "c", "-50")
	if !balances.Sum().IsZero() {
		t.Errorf("balances sum to %s, want 0", balances.Sum())
	}
}

func TestAggregateBalances_Idempotent(t *testing.T) {
	expenses := []models.Expense{
		{
			ID:     "e1",
			Amount: amt(t, "33.33"),
			PaidBy: "a",
			Splits: []models.Split{
				{PersonID: "a", Amount: amt(t, "11.11")},
				{PersonID: "b", Amount: amt(t, "11.11")},
				{PersonID: "c", Amount: amt(t, "11.11")},
			},
		},
	}

	first, err := AggregateBalances(people("a", "b", "c"), expenses, nil)
	if err != nil {
		t.Fatalf("first aggregation failed: %v", err)
	}
	second, err := AggregateBalances(people("a", "b", "c"), expenses, nil)
	if err != nil {
		t.Fatalf("second aggregation failed: %v", err)
	}

	for id, bal := range first {
		if !bal.Equal(second[id]) {
			t.Errorf("balance[%s] differs between runs: %s vs %s", id, bal, second[id])
		}
	}
}

func TestAggregateBalances_CompletedSettlementFeedback(t *testing.T) {
	expenses := []models.Expense{
		{
			ID:     "e1",
			Amount: amt(t, "100"),
			PaidBy: "alice",
			Splits: []models.Split{
				{PersonID: "alice", Amount: amt(t, "50")},
				{PersonID: "bob", Amount: amt(t, "50")},
			},
		},
	}
	settlements := []models.SettlementRecord{
		{ID: "s1", From: "bob", To: "alice", Amount: amt(t, "50"), Status: models.SettlementCompleted},
	}

	balances, err := AggregateBalances(people("alice", "bob"), expenses, settlements)
	if err != nil {
		t.Fatalf("AggregateBalances failed: %v", err)
	}

	checkBalance(t, balances, "alice", "0")
	checkBalance(t, balances, "bob", "0")

	transfers, err := MinimizeTransfers(balances)
	if err != nil {
		t.Fatalf("MinimizeTransfers failed: %v", err)
	}
	if len(transfers) != 0 {
		t.Errorf("expected no transfers after full settlement, got %d", len(transfers))
	}
}

func TestAggregateBalances_PendingAndDeclinedIgnored(t *testing.T) {
	expenses := []models.Expense{
		{
			ID:     "e1",
			Amount: amt(t, "100"),
			PaidBy: "alice",
			Splits: []models.Split{
				{PersonID: "alice", Amount: amt(t, "50")},
				{PersonID: "bob", Amount: amt(t, "50")},
			},
		},
	}

	for _, status := range []models.SettlementStatus{models.SettlementPending, models.SettlementDeclined} {
		settlements := []models.SettlementRecord{
			{ID: "s1", From: "bob", To: "alice", Amount: amt(t, "50"), Status: status},
		}
		balances, err := AggregateBalances(people("alice", "bob"), expenses, settlements)
		if err != nil {
			t.Fatalf("AggregateBalances failed: %v", err)
		}
		checkBalance(t, balances, "alice", "50")
		checkBalance(t, balances, "bob", "-50")
	}
}

func TestAggregateBalances_UnknownPerson(t *testing.T) {
	tests := []struct {
		name    string
		expense models.Expense
		wantID  string
	}{
		{
			name: "unknown payer",
			expense: models.Expense{
				ID:     "e1",
				Amount: amt(t, "10"),
				PaidBy: "ghost",
				Splits: []models.Split{{PersonID: "alice", Amount: amt(t, "10")}},
			},
			wantID: "ghost",
		},
		{
			name: "unknown split person",
			expense: models.Expense{
				ID:     "e1",
				Amount: amt(t, "10"),
				PaidBy: "alice",
				Splits: []models.Split{{PersonID: "ghost", Amount: amt(t, "10")}},
			},
			wantID: "ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AggregateBalances(people("alice", "bob"), []models.Expense{tt.expense}, nil)
			var unknown *UnknownPersonError
			if !errors.As(err, &unknown) {
				t.Fatalf("expected UnknownPersonError, got %v", err)
			}
			if unknown.PersonID != tt.wantID {
				t.Errorf("PersonID = %s, want %s", unknown.PersonID, tt.wantID)
			}
			if unknown.ExpenseID != "e1" {
				t.Errorf("ExpenseID = %s, want e1", unknown.ExpenseID)
			}
		})
	}
}

func TestAggregateBalances_UnknownPersonInSettlement(t *testing.T) {
	settlements := []models.SettlementRecord{
		{ID: "s1", From: "ghost", To: "alice", Amount: amt(t, "5"), Status: models.SettlementCompleted},
	}
	_, err := AggregateBalances(people("alice"), nil, settlements)
	var unknown *UnknownPersonError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownPersonError, got %v", err)
	}
	if unknown.SettlementID != "s1" {
		t.Errorf("SettlementID = %s, want s1", unknown.SettlementID)
	}
}

func TestAggregateBalances_EmptyInputs(t *testing.T) {
	balances, err := AggregateBalances(people("a", "b"), nil, nil)
	if err != nil {
		t.Fatalf("AggregateBalances failed: %v", err)
	}
	checkBalance(t, balances, "a", "0")
	checkBalance(t, balances, "b", "0")
}
