// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProgramEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_program_evaluations_total",
			Help: "Total number of per-program eligibility evaluations",
		},
		[]string{"program_id", "status"},
	)

	RuleEvaluationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_rule_failures_total",
			Help: "Total number of rule evaluations that reported a malformed tree",
		},
		[]string{"program_id"},
	)

	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "eligibility_evaluation_duration_seconds",
			Help: "Duration of full-profile evaluation runs in seconds",
		},
		[]string{"outcome"},
	)

	EvaluationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eligibility_evaluations_active",
			Help: "Number of evaluation runs currently in flight",
		},
	)

	ReferenceDataCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eligibility_refdata_cache_hits_total",
			Help: "Reference data cache hits",
		},
	)

	ReferenceDataCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eligibility_refdata_cache_misses_total",
			Help: "Reference data cache misses",
		},
	)

	RuleSetCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_ruleset_cache_hits_total",
			Help: "Rule set store cache hits and misses",
		},
		[]string{"result"},
	)
)
