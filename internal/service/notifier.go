package service

import (
	"context"
	"log/slog"

	"github.com/mkale/tripledger/internal/models"
)

// Notifier receives settlement lifecycle events so the counter-party
// can be told about them. Delivery (email, push, in-app) is owned by an
// external collaborator; failures there must not affect the ledger, so
// the methods return nothing.
type Notifier interface {
	// SettlementProposed fires when a debtor records a payment,
	// addressed to the receiving creditor.
	SettlementProposed(ctx context.Context, settlement *models.SettlementRecord)

	// SettlementConfirmed fires when the creditor confirms, addressed
	// to the debtor.
	SettlementConfirmed(ctx context.Context, settlement *models.SettlementRecord)

	// SettlementDeclined fires when the creditor declines, addressed
	// to the debtor.
	SettlementDeclined(ctx context.Context, settlement *models.SettlementRecord)
}

// LogNotifier is the default Notifier: it just logs the event.
type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) SettlementProposed(ctx context.Context, settlement *models.SettlementRecord) {
	slog.Info("settlement proposed",
		"settlement_id", settlement.ID,
		"from", settlement.From,
		"to", settlement.To,
		"amount", settlement.Amount.StringFixed(2),
	)
}

func (LogNotifier) SettlementConfirmed(ctx context.Context, settlement *models.SettlementRecord) {
	slog.Info("settlement confirmed",
		"settlement_id", settlement.ID,
		"from", settlement.From,
		"to", settlement.To,
		"amount", settlement.Amount.StringFixed(2),
	)
}

func (LogNotifier) SettlementDeclined(ctx context.Context, settlement *models.SettlementRecord) {
	slog.Info("settlement declined",
		"settlement_id", settlement.ID,
		"from", settlement.From,
		"to", settlement.To,
		"amount", settlement.Amount.StringFixed(2),
	)
}
