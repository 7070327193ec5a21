package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "disclosure_bot_cycles_total",
		Help: "Polling cycles started",
	})

	CycleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "disclosure_bot_cycle_failures_total",
		Help: "Polling cycles that ended early on an error",
	})

	EventsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "disclosure_bot_events_fetched_total",
		Help: "Disclosed events returned by the hacktivity query",
	})

	EventsForwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "disclosure_bot_events_forwarded_total",
		Help: "Events delivered to every configured forwarder",
	})

	DuplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "disclosure_bot_duplicates_skipped_total",
		Help: "Events skipped because their report ID was already forwarded",
	})

	AuthRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "disclosure_bot_auth_refreshes_total",
		Help: "CSRF token refreshes triggered by an expired-token response",
	})

	DeliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "disclosure_bot_delivery_failures_total",
		Help: "Per-forwarder delivery failures",
	}, []string{"forwarder"})

	LedgerSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "disclosure_bot_ledger_size",
		Help: "Report IDs currently remembered by the de-duplication ledger",
	})
)
