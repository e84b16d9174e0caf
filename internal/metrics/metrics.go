// Package metrics exposes Prometheus instrumentation for the ledger.
// Collectors register against the default registry so any embedding
// binary can expose them with promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BalanceRecomputations counts from-scratch balance vector
	// recomputations. The engine never caches, so this tracks reads.
	BalanceRecomputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_balance_recomputations_total",
		Help: "Number of times the balance vector was recomputed from scratch.",
	})

	// SuggestedTransfers observes how many transfers each minimization
	// run produced.
	SuggestedTransfers = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tripledger_suggested_transfers",
		Help:    "Number of transfers suggested per minimization run.",
		Buckets: prometheus.LinearBuckets(0, 1, 11),
	})

	// Settlements counts lifecycle transitions by resulting status.
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripledger_settlements_total",
		Help: "Settlement lifecycle transitions by resulting status.",
	}, []string{"status"})

	// ExpensesCreated counts recorded expenses.
	ExpensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_expenses_created_total",
		Help: "Number of expenses recorded.",
	})

	// LedgerImbalances counts reads that surfaced an integrity
	// violation (unknown person or non-zero-sum balances).
	LedgerImbalances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_ledger_imbalances_total",
		Help: "Number of reads that detected a ledger integrity violation.",
	})
)
