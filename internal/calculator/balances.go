// Package calculator implements the settlement engine: netting expenses
// and completed settlements into one balance per person, minimizing the
// transfers needed to settle those balances, and the summary figures
// shown alongside them.
//
// Every function is pure. Callers recompute from the current expense and
// settlement lists after any mutation; nothing here is cached.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mkale/tripledger/internal/models"
)

// BalanceVector maps person ID to net balance. Positive means the
// person is owed money, negative means they owe money, zero means
// settled. A well-formed vector sums to zero.
type BalanceVector map[string]decimal.Decimal

// UnknownPersonError reports an expense or settlement referencing a
// person that is not part of the trip. The ledger is inconsistent and
// the caller should flag it rather than display partial balances.
type UnknownPersonError struct {
	PersonID     string
	ExpenseID    string
	SettlementID string
}

func (e *UnknownPersonError) Error() string {
	if e.ExpenseID != "" {
		return fmt.Sprintf("expense %s references unknown person %s", e.ExpenseID, e.PersonID)
	}
	return fmt.Sprintf("settlement %s references unknown person %s", e.SettlementID, e.PersonID)
}

// AggregateBalances nets a trip's expenses and completed settlements
// into one balance per person.
//
// Algorithm:
//   - every person starts at zero
//   - each expense credits its payer with the full amount
//   - each split debits the owing person with their share
//   - each completed settlement credits the payer (From) and debits the
//     receiver (To), cancelling previously suggested debt
//
// Settlement records that are not completed are ignored. A reference to
// a person outside people fails with *UnknownPersonError instead of
// silently dropping the contribution.
func AggregateBalances(people []models.Person, expenses []models.Expense, settlements []models.SettlementRecord) (BalanceVector, error) {
	balances := make(BalanceVector, len(people))
	for _, p := range people {
		balances[p.ID] = decimal.Zero
	}

	for _, e := range expenses {
		if _, ok := balances[e.PaidBy]; !ok {
			return nil, &UnknownPersonError{PersonID: e.PaidBy, ExpenseID: e.ID}
		}
		balances[e.PaidBy] = balances[e.PaidBy].Add(e.Amount)

		for _, s := range e.Splits {
			if _, ok := balances[s.PersonID]; !ok {
				return nil, &UnknownPersonError{PersonID: s.PersonID, ExpenseID: e.ID}
			}
			balances[s.PersonID] = balances[s.PersonID].Sub(s.Amount)
		}
	}

	for _, s := range settlements {
		if s.Status != models.SettlementCompleted {
			continue
		}
		if _, ok := balances[s.From]; !ok {
			return nil, &UnknownPersonError{PersonID: s.From, SettlementID: s.ID}
		}
		if _, ok := balances[s.To]; !ok {
			return nil, &UnknownPersonError{PersonID: s.To, SettlementID: s.ID}
		}
		balances[s.From] = balances[s.From].Add(s.Amount)
		balances[s.To] = balances[s.To].Sub(s.Amount)
	}

	return balances, nil
}

// Sum returns the total of all balances. Anything beyond rounding noise
// indicates a ledger integrity violation upstream.
func (b BalanceVector) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, bal := range b {
		total = total.Add(bal)
	}
	return total
}
