package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "blue_swarm",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	enforceAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "enforce",
			Name:      "attempts_total",
			Help:      "Policy enforcement attempts.",
		},
	)
	enforceAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "enforce",
			Name:      "accepted_total",
			Help:      "Policy enforcement decisions that authorized a patch.",
		},
	)
	enforceBlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "enforce",
			Name:      "blocked_total",
			Help:      "Policy enforcement decisions that blocked a patch.",
		},
	)
	policyDiffs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "policy",
			Name:      "diffs_total",
			Help:      "Policy diffs rendered.",
		},
	)
	filesAnalyzed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "ingest",
			Name:      "files_analyzed_total",
			Help:      "Files analyzed for indicators.",
		},
	)
	indicatorsFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "ingest",
			Name:      "indicators_found_total",
			Help:      "Indicators extracted from analyzed files.",
		},
	)
	issuesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "jira",
			Name:      "issues_created_total",
			Help:      "Ticketing issues created.",
		},
	)
	enrichAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "enrich",
			Name:      "attempts_total",
			Help:      "Unified enrichment attempts.",
		},
	)
	enrichComments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blue_swarm",
			Subsystem: "enrich",
			Name:      "comments_total",
			Help:      "Unified enrichment comments posted.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			enforceAttempts, enforceAccepted, enforceBlocked,
			policyDiffs, filesAnalyzed, indicatorsFound,
			issuesCreated, enrichAttempts, enrichComments,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordEnforceAttempt increments the attempts counter; exactly one of
// RecordEnforceAccepted or RecordEnforceBlocked follows per gate invocation.
func RecordEnforceAttempt() {
	RegisterMetrics()
	enforceAttempts.Inc()
}

func RecordEnforceAccepted() {
	RegisterMetrics()
	enforceAccepted.Inc()
}

func RecordEnforceBlocked() {
	RegisterMetrics()
	enforceBlocked.Inc()
}

func RecordPolicyDiff() {
	RegisterMetrics()
	policyDiffs.Inc()
}

func RecordFileAnalyzed() {
	RegisterMetrics()
	filesAnalyzed.Inc()
}

func RecordIndicatorsFound(count int) {
	RegisterMetrics()
	if count > 0 {
		indicatorsFound.Add(float64(count))
	}
}

func RecordIssueCreated() {
	RegisterMetrics()
	issuesCreated.Inc()
}

func RecordEnrichAttempt() {
	RegisterMetrics()
	enrichAttempts.Inc()
}

func RecordEnrichComment() {
	RegisterMetrics()
	enrichComments.Inc()
}
