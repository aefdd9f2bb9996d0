// Package metrics exposes Prometheus counters for ledger operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SplitsTotal counts split calculations by strategy and outcome.
	SplitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupledger_splits_total",
		Help: "Number of expense split calculations by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	// ExpensesPersisted counts committed expense records.
	ExpensesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupledger_expenses_persisted_total",
		Help: "Number of expenses committed with their shares.",
	})

	// PersistFailures counts failed expense transactions.
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupledger_persist_failures_total",
		Help: "Number of expense transactions rolled back on error.",
	})

	// PassesIssued counts wallet passes by result (issued, retried, failed).
	PassesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupledger_wallet_passes_total",
		Help: "Number of wallet pass issuance attempts by result.",
	}, []string{"result"})
)
