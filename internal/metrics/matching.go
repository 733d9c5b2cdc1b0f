package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Matching and shortlist Prometheus metrics.
var (
	MatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "End-to-end match request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"}, // "ok" / "error"
	)

	MatchCandidatesScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_candidates_scored_total",
			Help:      "Candidates scored across all match requests",
		},
	)

	MatchCandidatesExcluded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_candidates_excluded_total",
			Help:      "Candidates dropped from a match request",
		},
		[]string{"reason"}, // "not_found" / "store_error"
	)

	MatchCategoryDegraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_category_degraded_total",
			Help:      "Category scores computed from rule-based signals only",
		},
		[]string{"category"},
	)

	ShortlistTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shortlist_transitions_total",
			Help:      "Recorded shortlist stage transitions",
		},
		[]string{"from", "to"},
	)

	ShortlistIllegalTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shortlist_illegal_transitions_total",
			Help:      "Rejected shortlist stage transitions",
		},
	)
)

var matchOnce sync.Once

// RegisterMatchingMetrics registers matching and shortlist metrics. Safe to call more than once.
func RegisterMatchingMetrics() {
	matchOnce.Do(func() {
		prometheus.MustRegister(
			MatchDuration,
			MatchCandidatesScored,
			MatchCandidatesExcluded,
			MatchCategoryDegraded,
			ShortlistTransitionsTotal,
			ShortlistIllegalTotal,
		)
	})
}
