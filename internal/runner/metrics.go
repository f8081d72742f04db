package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wardops_simulation_runs_started_total",
		Help: "Simulation runs that entered the running state.",
	})
	runsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wardops_simulation_runs_completed_total",
		Help: "Simulation runs that completed successfully.",
	})
	runsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wardops_simulation_runs_failed_total",
		Help: "Simulation runs that ended in the failed state.",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wardops_simulation_run_duration_seconds",
		Help:    "Wall-clock duration of completed simulation runs.",
		Buckets: prometheus.DefBuckets,
	})
	jobsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wardops_simulation_jobs_dispatched_total",
		Help: "Jobs pushed onto the simulation queue.",
	})
	jobsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wardops_simulation_jobs_consumed_total",
		Help: "Jobs popped off the simulation queue by workers.",
	})
)
