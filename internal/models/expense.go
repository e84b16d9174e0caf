package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category buckets an expense for summary displays.
type Category string

const (
	CategoryAccommodation  Category = "accommodation"
	CategoryTransportation Category = "transportation"
	CategoryFood           Category = "food"
	CategoryEntertainment  Category = "entertainment"
	CategoryActivities     Category = "activities"
	CategoryShopping       Category = "shopping"
	CategoryOther          Category = "other"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryAccommodation,
		CategoryTransportation,
		CategoryFood,
		CategoryEntertainment,
		CategoryActivities,
		CategoryShopping,
		CategoryOther,
	}
}

// ParseCategory maps a raw string onto a known category. Unknown or
// empty values fall back to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// Split is one person's assigned share of an expense.
type Split struct {
	// PersonID references the person who owes this share.
	PersonID string `validate:"required"`

	// Amount is the share owed.
	Amount decimal.Decimal
}

// Expense represents a cost fronted by one member and owed back by the
// people named in its splits. The split amounts are expected to sum to
// Amount; the service layer enforces this within a one-cent tolerance.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is the human-readable label for the expense.
	Description string `validate:"required"`

	// Amount is the total cost fronted by the payer.
	Amount decimal.Decimal

	// PaidBy references the person who fronted the money.
	PaidBy string `validate:"required"`

	// Date is the calendar date the cost was incurred (YYYY-MM-DD).
	Date string `validate:"required"`

	// Category buckets the expense for summaries.
	Category Category

	// EventID optionally links the expense to an itinerary event.
	// Empty means the unlinked "other" bucket.
	EventID string

	// Splits assigns each participant's share.
	Splits []Split `validate:"required,min=1,dive"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// SplitTotal returns the sum of all split amounts.
func (e *Expense) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Splits {
		total = total.Add(s.Amount)
	}
	return total
}

// EvenSplits divides amount evenly across personIDs. The remainder
// cents go to the earliest shares so the splits always sum exactly to
// amount, instead of leaving per-split rounding drift.
func EvenSplits(amount decimal.Decimal, personIDs []string) []Split {
	n := int64(len(personIDs))
	if n == 0 {
		return nil
	}

	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	base := cents / n
	rem := cents % n

	splits := make([]Split, 0, n)
	for i, id := range personIDs {
		c := base
		if int64(i) < rem {
			c++
		}
		splits = append(splits, Split{PersonID: id, Amount: decimal.New(c, -2)})
	}
	return splits
}
