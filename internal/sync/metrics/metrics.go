package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCCallsTotal tracks RPC calls per provider and method
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottosync_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"provider", "method"},
	)

	// RPCErrorsTotal tracks RPC errors per provider and method
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottosync_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"provider", "method"},
	)

	// CacheHits tracks cache hits per cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottosync_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	// CacheMisses tracks cache misses per cache
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottosync_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// OutcomesDeduplicated counts live events discarded as duplicates
	OutcomesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lottosync_outcomes_deduplicated_total",
			Help: "Live outcome events discarded because their id was already recorded",
		},
	)

	// OutcomesRecorded counts records added to the history ledger
	OutcomesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottosync_outcomes_recorded_total",
			Help: "Outcome records added to the history ledger",
		},
		[]string{"kind", "source"},
	)

	// BetsSubmitted counts bet submissions by terminal status
	BetsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottosync_bets_total",
			Help: "Bet submissions by terminal status",
		},
		[]string{"status"},
	)

	// HistoryLength tracks the current exposed history length
	HistoryLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lottosync_history_length",
			Help: "Number of outcome records in the exposed history",
		},
	)
)
