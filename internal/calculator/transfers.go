package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// settleEpsilon is the threshold below which a balance counts as
// settled. The ledger tolerates up to one cent of rounding drift per
// split, so anything within ±0.01 of zero is noise, not debt.
var settleEpsilon = decimal.New(1, -2)

// Transfer is a suggested debtor-to-creditor payment. Transfers are
// ephemeral: they are recomputed from the balance vector on every read
// and never persisted.
type Transfer struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// ImbalanceError reports that debtor and creditor totals did not cancel
// out, leaving a residual no transfer can settle. This indicates a
// data-integrity violation upstream, not a calculation failure.
type ImbalanceError struct {
	Residual decimal.Decimal
}

func (e *ImbalanceError) Error() string {
	return fmt.Sprintf("debtor and creditor totals differ by %s", e.Residual.StringFixed(2))
}

// party is one side of the matching: a person and how much they still
// owe (debtor) or are owed (creditor), always positive.
type party struct {
	id     string
	amount decimal.Decimal
}

// MinimizeTransfers converts a balance vector into a short list of
// pairwise transfers that settles every balance.
//
// Greedy two-pointer matching: both partitions are sorted by amount
// descending, then each step pairs the current debtor with the current
// creditor for the smaller of the two amounts, advancing whichever side
// is fully resolved. Each step resolves at least one party, so the
// transfer count is bounded by debtors+creditors-1.
//
// Output order is deterministic: ties in the sort break on person ID.
// When the vector does not sum to zero, the transfers computed so far
// are returned together with an *ImbalanceError carrying the residual.
func MinimizeTransfers(balances BalanceVector) ([]Transfer, error) {
	var debtors, creditors []party
	for id, bal := range balances {
		switch {
		case bal.GreaterThan(settleEpsilon):
			creditors = append(creditors, party{id: id, amount: bal})
		case bal.LessThan(settleEpsilon.Neg()):
			debtors = append(debtors, party{id: id, amount: bal.Neg()})
		}
	}
	sortParties(debtors)
	sortParties(creditors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)

		if amount.GreaterThan(settleEpsilon) {
			transfers = append(transfers, Transfer{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.LessThan(settleEpsilon) {
			i++
		}
		if creditors[j].amount.LessThan(settleEpsilon) {
			j++
		}
	}

	// One side exhausting before the other means the totals never
	// matched. Surface the leftover instead of dropping it.
	residual := decimal.Zero
	for ; i < len(debtors); i++ {
		residual = residual.Add(debtors[i].amount)
	}
	for ; j < len(creditors); j++ {
		residual = residual.Add(creditors[j].amount)
	}
	if residual.GreaterThan(settleEpsilon) {
		return transfers, &ImbalanceError{Residual: residual}
	}

	return transfers, nil
}

// sortParties orders by amount descending, breaking ties by ID so the
// output is stable across runs.
func sortParties(parties []party) {
	sort.Slice(parties, func(a, b int) bool {
		if !parties[a].amount.Equal(parties[b].amount) {
			return parties[a].amount.GreaterThan(parties[b].amount)
		}
		return parties[a].id < parties[b].id
	})
}
