package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "points_scans_total",
			Help: "Total successfully committed scans",
		},
	)
	RedemptionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "points_redemptions_total",
			Help: "Total successfully committed redemptions",
		},
	)
	CommitConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_commit_conflicts_total",
			Help: "Commits retried after losing a write race",
		},
	)
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current audit worker queue depth",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(ScansTotal)
	prometheus.MustRegister(RedemptionsTotal)
	prometheus.MustRegister(CommitConflictsTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
