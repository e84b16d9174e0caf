package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEvenSplits(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		people  []string
		shares  []string
	}{
		{"exact division", "100", []string{"a", "b"}, []string{"50", "50"}},
		{"remainder cent to first", "100", []string{"a", "b", "c"}, []string{"33.34", "33.33", "33.33"}},
		{"two remainder cents", "0.05", []string{"a", "b", "c"}, []string{"0.02", "0.02", "0.01"}},
		{"single person", "42.42", []string{"a"}, []string{"42.42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("bad amount: %v", err)
			}

			splits := EvenSplits(amount, tt.people)
			if len(splits) != len(tt.people) {
				t.Fatalf("got %d splits, want %d", len(splits), len(tt.people))
			}

			total := decimal.Zero
			for i, split := range splits {
				want, _ := decimal.NewFromString(tt.shares[i])
				if !split.Amount.Equal(want) {
					t.Errorf("split[%d] = %s, want %s", i, split.Amount, want)
				}
				total = total.Add(split.Amount)
			}

			// Splits must sum exactly, no rounding drift.
			if !total.Equal(amount) {
				t.Errorf("splits sum to %s, want exactly %s", total, amount)
			}
		})
	}
}

func TestEvenSplits_NoPeople(t *testing.T) {
	if splits := EvenSplits(decimal.NewFromInt(10), nil); splits != nil {
		t.Errorf("expected nil splits, got %v", splits)
	}
}

func TestSplitTotal(t *testing.T) {
	e := Expense{
		Splits: []Split{
			{PersonID: "a", Amount: decimal.RequireFromString("10.50")},
			{PersonID: "b", Amount: decimal.RequireFromString("4.50")},
		},
	}
	if got := e.SplitTotal(); !got.Equal(decimal.NewFromInt(15)) {
		t.Errorf("SplitTotal = %s, want 15", got)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"food", CategoryFood},
		{"FOOD", CategoryFood},
		{"  Shopping ", CategoryShopping},
		{"accommodation", CategoryAccommodation},
		{"", CategoryOther},
		{"blah", CategoryOther},
	}

	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if got := ParseRole("organizer"); got != RoleOrganizer {
		t.Errorf("ParseRole(organizer) = %s", got)
	}
	for _, in := range []string{"member", "", "owner"} {
		if got := ParseRole(in); got != RoleMember {
			t.Errorf("ParseRole(%q) = %s, want member", in, got)
		}
	}
}

func TestSettlementStatusTerminal(t *testing.T) {
	if SettlementPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	if !SettlementCompleted.Terminal() {
		t.Error("completed must be terminal")
	}
	if !SettlementDeclined.Terminal() {
		t.Error("declined must be terminal")
	}
}
