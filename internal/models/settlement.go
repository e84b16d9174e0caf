package models

import "github.com/shopspring/decimal"

// SettlementStatus tracks a settlement record through its lifecycle.
//
// Transitions:
//
//	pending → completed (receiver confirmed; terminal)
//	pending → declined  (receiver rejected; terminal)
//
// Only completed records feed back into balance aggregation. Declined
// records are kept for the audit trail but never counted.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
	SettlementDeclined  SettlementStatus = "declined"
)

// Terminal reports whether the status allows no further transitions.
func (s SettlementStatus) Terminal() bool {
	return s == SettlementCompleted || s == SettlementDeclined
}

// SettlementRecord represents a real-world payment recorded against a
// suggested transfer: the debtor proposes it, the receiving creditor
// confirms or declines it.
type SettlementRecord struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// From references the debtor paying down their balance.
	From string `validate:"required"`

	// To references the creditor receiving the payment.
	To string `validate:"required"`

	// Amount is the payment amount.
	Amount decimal.Decimal

	// Status is the current lifecycle state.
	Status SettlementStatus

	// CreatedAt is the Unix timestamp when the settlement was proposed.
	CreatedAt int64

	// ResolvedAt is the Unix timestamp when the settlement was confirmed
	// or declined. Zero while pending.
	ResolvedAt int64
}
