package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "offboarding_console"

// Label values for lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lookups_total",
		Help:      "Subject directory lookups by outcome.",
	}, []string{"outcome"})

	OffboardingExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offboarding_executions_total",
		Help:      "Offboarding revoke calls by result.",
	}, []string{"status"})

	ExportJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "export_jobs_total",
		Help:      "Export pipeline runs by terminal outcome.",
	}, []string{"outcome"})

	ExportPollAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "export_poll_attempts_total",
		Help:      "Download attempts performed by the export poll loop.",
	})

	SessionInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_invalidations_total",
		Help:      "Operator sessions torn down after a backend 401.",
	})
)
