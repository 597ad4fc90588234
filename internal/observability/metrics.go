// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Cycle metrics
	CyclesTotal   *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	LastCycleAt   prometheus.Gauge

	// Source metrics
	SourceFetches      *prometheus.CounterVec
	SourceObservations *prometheus.CounterVec
	SourceFetchLatency *prometheus.HistogramVec

	// Candidate metrics
	CandidatesMerged       prometheus.Counter
	ObservationsRejected   prometheus.Counter
	CandidatesRiskFiltered *prometheus.CounterVec
	CandidatesScored       prometheus.Counter
	AlertsDelivered        prometheus.Counter
	AlertsSuppressed       prometheus.Counter

	// Security assessor metrics
	AssessorCalls       *prometheus.CounterVec
	AssessorCallLatency prometheus.Histogram

	// State store metrics
	StateQueryDuration *prometheus.HistogramVec
	StateQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_radar"
	}

	return &Metrics{
		// Cycle metrics
		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "cycles_total",
			Help:      "Total number of scan cycles by outcome",
		}, []string{"outcome"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "cycle_duration_seconds",
			Help:      "Scan cycle duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		LastCycleAt: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "last_cycle_timestamp",
			Help:      "Unix timestamp of the last finished cycle",
		}),

		// Source metrics
		SourceFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetches_total",
			Help:      "Total number of adapter fetches by source and status",
		}, []string{"source", "status"}),
		SourceObservations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "observations_total",
			Help:      "Total number of token observations returned by source",
		}, []string{"source"}),
		SourceFetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_latency_seconds",
			Help:      "Adapter fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		// Candidate metrics
		CandidatesMerged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "candidates_merged_total",
			Help:      "Total number of candidates produced by the merger",
		}),
		ObservationsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "observations_rejected_total",
			Help:      "Total number of observations rejected before merge",
		}),
		CandidatesRiskFiltered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "security",
			Name:      "candidates_filtered_total",
			Help:      "Total number of candidates excluded by risk level",
		}, []string{"risk"}),
		CandidatesScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "candidates_scored_total",
			Help:      "Total number of candidates scored",
		}),
		AlertsDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "delivered_total",
			Help:      "Total number of alerts delivered to the sink",
		}),
		AlertsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "suppressed_total",
			Help:      "Total number of alerts suppressed by the cooldown gate",
		}),

		// Security assessor metrics
		AssessorCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "security",
			Name:      "assessor_calls_total",
			Help:      "Total number of security assessor calls by status",
		}, []string{"status"}),
		AssessorCallLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "security",
			Name:      "assessor_call_latency_seconds",
			Help:      "Security assessor call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// State store metrics
		StateQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "query_duration_seconds",
			Help:      "State store query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		StateQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "query_errors_total",
			Help:      "Total number of state store query errors",
		}, []string{"operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCycle records a finished cycle with its outcome.
func RecordCycle(outcome string, durationSeconds float64, endedAt int64) {
	DefaultMetrics.CyclesTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.CycleDuration.Observe(durationSeconds)
	DefaultMetrics.LastCycleAt.Set(float64(endedAt))
}

// RecordSourceFetch records one adapter fetch result.
func RecordSourceFetch(source, status string, observations int, seconds float64) {
	DefaultMetrics.SourceFetches.WithLabelValues(source, status).Inc()
	DefaultMetrics.SourceFetchLatency.WithLabelValues(source).Observe(seconds)
	if observations > 0 {
		DefaultMetrics.SourceObservations.WithLabelValues(source).Add(float64(observations))
	}
}

// RecordAssessorCall records one security assessor call.
func RecordAssessorCall(status string, seconds float64) {
	DefaultMetrics.AssessorCalls.WithLabelValues(status).Inc()
	DefaultMetrics.AssessorCallLatency.Observe(seconds)
}

// RecordStateQuery records state store query metrics.
func RecordStateQuery(operation string, seconds float64, err error) {
	DefaultMetrics.StateQueryDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.StateQueryErrors.WithLabelValues(operation).Inc()
	}
}
