package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReferralsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refgraph_referrals_recorded_total",
		Help: "Total number of referrals accepted into the ledger.",
	})

	ReferralsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refgraph_referrals_rejected_total",
		Help: "Total number of rejected referrals, labelled by reason.",
	}, []string{"reason"})

	LedgerUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "refgraph_ledger_users",
		Help: "Number of users currently known to the ledger.",
	})

	LedgerEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "refgraph_ledger_edges",
		Help: "Number of referral edges currently in the ledger.",
	})

	ReachCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refgraph_reach_cache_lookups_total",
		Help: "Reach cache lookups, labelled by result (hit or miss).",
	}, []string{"result"})

	SimulationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refgraph_simulation_runs_total",
		Help: "Growth simulations executed, labelled by kind.",
	}, []string{"kind"})

	OptimizerSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refgraph_optimizer_searches_total",
		Help: "Bonus searches executed, labelled by outcome (found or not_found).",
	}, []string{"outcome"})

	OptimizerProbes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "refgraph_optimizer_probes",
		Help:    "Number of bonus amounts probed per search.",
		Buckets: []float64{1, 2, 4, 6, 8, 10, 12, 16, 24},
	})

	TrialQueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "refgraph_trial_queue_utilization_ratio",
		Help: "Current Monte-Carlo trial queue utilization (0–1).",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "refgraph_http_request_duration_ms",
		Help:    "HTTP request latency in milliseconds, labelled by method and status.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"method", "status"})
)
