package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mkale/tripledger/internal/models"
)

// TotalSpent sums the total amounts of all expenses.
func TotalSpent(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// PersonSpending returns each person's consumed share across all
// expenses, keyed by person ID. This is "amount spent" in the budget
// display sense: what the person's splits add up to, not what they
// fronted as payer.
func PersonSpending(people []models.Person, expenses []models.Expense) map[string]decimal.Decimal {
	spending := make(map[string]decimal.Decimal, len(people))
	for _, p := range people {
		spending[p.ID] = decimal.Zero
	}
	for _, e := range expenses {
		for _, s := range e.Splits {
			if _, ok := spending[s.PersonID]; !ok {
				continue
			}
			spending[s.PersonID] = spending[s.PersonID].Add(s.Amount)
		}
	}
	return spending
}

// CategoryTotals groups expense amounts by category. Every known
// category appears in the result, zero-valued when unused.
func CategoryTotals(expenses []models.Expense) map[models.Category]decimal.Decimal {
	totals := make(map[models.Category]decimal.Decimal)
	for _, c := range models.Categories() {
		totals[c] = decimal.Zero
	}
	for _, e := range expenses {
		c := models.ParseCategory(string(e.Category))
		totals[c] = totals[c].Add(e.Amount)
	}
	return totals
}

// EventTotals groups expense amounts by itinerary event ID. Expenses
// without an event land under the empty key.
func EventTotals(expenses []models.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		totals[e.EventID] = totals[e.EventID].Add(e.Amount)
	}
	return totals
}

// BudgetProgress returns spent/limit as a ratio (1 = limit reached).
// A zero or negative limit yields zero rather than dividing by zero.
func BudgetProgress(limit, spent decimal.Decimal) decimal.Decimal {
	if limit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return spent.Div(limit)
}
