package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blueswarm/orchestrator/internal/testutil/testlog"
)

func gatheredNames(t *testing.T) map[string]struct{} {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	names := make(map[string]struct{}, len(families))
	for _, fam := range families {
		names[fam.GetName()] = struct{}{}
	}
	return names
}

func TestRegisterMetricsIdempotent(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics() // second call must not panic on duplicate registration
}

func TestRecordersPublishSeries(t *testing.T) {
	testlog.Start(t)
	RecordHTTPRequest("POST", "/policy/diff", 200, 12*time.Millisecond)
	RecordEnforceAttempt()
	RecordEnforceBlocked()
	RecordEnforceAccepted()
	RecordPolicyDiff()
	RecordFileAnalyzed()
	RecordIndicatorsFound(3)
	RecordIndicatorsFound(0) // no-op, must not panic
	RecordIssueCreated()
	RecordEnrichAttempt()
	RecordEnrichComment()

	names := gatheredNames(t)
	for _, want := range []string{
		"blue_swarm_http_requests_total",
		"blue_swarm_http_request_duration_seconds",
		"blue_swarm_enforce_attempts_total",
		"blue_swarm_enforce_accepted_total",
		"blue_swarm_enforce_blocked_total",
		"blue_swarm_policy_diffs_total",
		"blue_swarm_ingest_files_analyzed_total",
		"blue_swarm_ingest_indicators_found_total",
		"blue_swarm_jira_issues_created_total",
		"blue_swarm_enrich_attempts_total",
		"blue_swarm_enrich_comments_total",
	} {
		if _, ok := names[want]; !ok {
			t.Fatalf("metric %s not registered", want)
		}
	}
}
