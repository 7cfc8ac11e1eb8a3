// Package metrics exposes Prometheus collectors for the wallet service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal counts terminal transaction outcomes by kind.
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "subsidy_wallet",
		Name:      "transactions_total",
		Help:      "Terminal simulated transactions by kind and outcome.",
	}, []string{"kind", "outcome"})

	// TransactionsInFlight tracks active (non-terminal) transaction flows.
	TransactionsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "subsidy_wallet",
		Name:      "transactions_in_flight",
		Help:      "Simulated transaction flows currently between initiation and a terminal phase.",
	})

	// WebsocketClients tracks connected notification feed clients.
	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "subsidy_wallet",
		Name:      "websocket_clients",
		Help:      "Currently connected websocket notification clients.",
	})

	// LedgerTotalBalance mirrors the derived total balance after every mutation.
	LedgerTotalBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "subsidy_wallet",
		Name:      "ledger_total_balance",
		Help:      "Sum of remaining balances over claimed programs.",
	})
)
