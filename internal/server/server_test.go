package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/blueswarm/orchestrator/internal/config"
	"github.com/blueswarm/orchestrator/internal/connectors/idr"
	"github.com/blueswarm/orchestrator/internal/connectors/jira"
	"github.com/blueswarm/orchestrator/internal/connectors/zpa"
	"github.com/blueswarm/orchestrator/internal/enforce"
	"github.com/blueswarm/orchestrator/internal/fieldmap"
	"github.com/blueswarm/orchestrator/internal/testutil/testlog"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubLookup struct {
	status string
	err    error
}

func (s stubLookup) GetApproval(context.Context, string) (enforce.ApprovalState, error) {
	if s.err != nil {
		return enforce.ApprovalState{}, s.err
	}
	return enforce.ApprovalState{Status: s.status}, nil
}

func testServer(t *testing.T, mutate func(*Deps)) *Server {
	t.Helper()
	deps := Deps{
		Config:   config.DefaultConfig(),
		Fieldmap: fieldmap.Default(),
		Lookup:   stubLookup{status: "Approved"},
	}
	if mutate != nil {
		mutate(&deps)
	}
	return New(deps)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func TestHealthz(t *testing.T) {
	testlog.Start(t)
	rec, body := doJSON(t, testServer(t, nil), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response: %d %v", rec.Code, body)
	}
}

func TestPolicyDiff(t *testing.T) {
	testlog.Start(t)
	rec, body := doJSON(t, testServer(t, nil), http.MethodPost, "/policy/diff", map[string]any{
		"current": map[string]any{"a": map[string]any{"x": 1}},
		"desired": map[string]any{"a": map[string]any{"x": 2}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("diff failed: %d %v", rec.Code, body)
	}
	if body["changes"] != float64(1) {
		t.Fatalf("expected 1 change: %v", body)
	}
	summary, _ := body["summary"].([]any)
	if len(summary) != 1 || summary[0] != "REPLACE /a/x" {
		t.Fatalf("unexpected summary: %v", summary)
	}
}

func TestPolicyDiffDefaultsCurrentToEmpty(t *testing.T) {
	testlog.Start(t)
	_, body := doJSON(t, testServer(t, nil), http.MethodPost, "/policy/diff", map[string]any{
		"desired": map[string]any{"a": 1},
	})
	summary, _ := body["summary"].([]any)
	if len(summary) != 1 || summary[0] != "ADD /a" {
		t.Fatalf("unexpected summary: %v", summary)
	}
}

func TestPolicyDiffFetchCurrent(t *testing.T) {
	testlog.Start(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"a": 1, "b": 2}`))
	}))
	defer upstream.Close()

	s := testServer(t, func(d *Deps) {
		d.ZPA = zpa.NewClient(zpa.Config{BaseURL: upstream.URL})
	})
	_, body := doJSON(t, s, http.MethodPost, "/policy/diff", map[string]any{
		"desired":       map[string]any{"a": 1},
		"fetch_current": true,
	})
	summary, _ := body["summary"].([]any)
	if len(summary) != 1 || summary[0] != "REMOVE /b" {
		t.Fatalf("unexpected summary: %v", summary)
	}
}

func TestPolicyEnforceDisabledBlocks(t *testing.T) {
	testlog.Start(t)
	rec, body := doJSON(t, testServer(t, nil), http.MethodPost, "/policy/enforce", map[string]any{
		"patch":        []map[string]any{{"op": "remove", "path": "/a"}},
		"approval_ref": "SEC-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("enforce endpoint failed: %d %v", rec.Code, body)
	}
	if body["outcome"] != "blocked" || body["reason"] != "enforcement disabled" {
		t.Fatalf("disabled enforcement must block: %v", body)
	}
}

func TestPolicyEnforceAccepted(t *testing.T) {
	testlog.Start(t)
	s := testServer(t, func(d *Deps) {
		d.Config.EnforceEnabled = true
	})
	_, body := doJSON(t, s, http.MethodPost, "/policy/enforce", map[string]any{
		"patch": []map[string]any{
			{"op": "add", "path": "/a", "value": 1},
			{"op": "remove", "path": "/b"},
			{"op": "replace", "path": "/c", "value": "x"},
		},
		"approval_ref": "SEC-1",
	})
	if body["outcome"] != "accepted" || body["applied_ops"] != float64(3) {
		t.Fatalf("expected acceptance with 3 ops: %v", body)
	}
}

func TestPolicyEnforceStatusBlocked(t *testing.T) {
	testlog.Start(t)
	s := testServer(t, func(d *Deps) {
		d.Config.EnforceEnabled = true
		d.Lookup = stubLookup{status: "In Review"}
	})
	_, body := doJSON(t, s, http.MethodPost, "/policy/enforce", map[string]any{
		"patch":        []map[string]any{{"op": "remove", "path": "/a"}},
		"approval_ref": "SEC-1",
	})
	reason, _ := body["reason"].(string)
	if body["outcome"] != "blocked" || !strings.Contains(reason, "In Review") {
		t.Fatalf("expected block naming status: %v", body)
	}
}

func TestPolicyEnforceLookupFailureBlocked(t *testing.T) {
	testlog.Start(t)
	s := testServer(t, func(d *Deps) {
		d.Config.EnforceEnabled = true
		d.Lookup = stubLookup{err: errors.New("boom")}
	})
	_, body := doJSON(t, s, http.MethodPost, "/policy/enforce", map[string]any{
		"patch":        []map[string]any{{"op": "remove", "path": "/a"}},
		"approval_ref": "SEC-1",
	})
	reason, _ := body["reason"].(string)
	if body["outcome"] != "blocked" || !strings.Contains(reason, "boom") {
		t.Fatalf("lookup failure must block with cause: %v", body)
	}
}

func TestPolicyEnforceRejectsUnknownOp(t *testing.T) {
	testlog.Start(t)
	rec, body := doJSON(t, testServer(t, nil), http.MethodPost, "/policy/enforce", map[string]any{
		"patch":        []map[string]any{{"op": "move", "path": "/a"}},
		"approval_ref": "SEC-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown op must 400: %d %v", rec.Code, body)
	}
}

func TestPolicyEnforceRequiresApprovalRef(t *testing.T) {
	testlog.Start(t)
	rec, _ := doJSON(t, testServer(t, nil), http.MethodPost, "/policy/enforce", map[string]any{
		"patch": []map[string]any{{"op": "remove", "path": "/a"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing approval_ref must 400, got %d", rec.Code)
	}
}

func TestIngestAnalyze(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("hit 198.51.100.7"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, body := doJSON(t, testServer(t, nil), http.MethodPost, "/ingest/analyze", map[string]any{
		"paths": []string{path, filepath.Join(t.TempDir(), "missing.txt")},
	})
	if body["iocs_total"].(float64) < 1 {
		t.Fatalf("expected indicators: %v", body)
	}
	results, _ := body["results"].([]any)
	if len(results) != 2 {
		t.Fatalf("expected one result per path: %v", results)
	}
}

func TestNotablesPullWithoutWrites(t *testing.T) {
	testlog.Start(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"title": "bad beacon", "severity": "high",
			"indicators": {"ipv4": ["203.0.113.5"]}, "assets": ["host-a"]}]}`))
	}))
	defer upstream.Close()

	s := testServer(t, func(d *Deps) {
		d.IDR = idr.NewClient(idr.Config{BaseURL: upstream.URL, NotablesPath: "notables"})
	})
	rec, body := doJSON(t, s, http.MethodPost, "/idr/notables/pull", map[string]any{
		"create_jira": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("pull failed: %d %v", rec.Code, body)
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one item: %v", body)
	}
	item := items[0].(map[string]any)
	if item["summary"] != "bad beacon" || item["severity"] != "high" {
		t.Fatalf("unexpected item: %v", item)
	}
	// Write disabled: nothing created even though create_jira was requested.
	if created, ok := body["created"].([]any); ok && len(created) > 0 {
		t.Fatalf("writes are disabled, created %v", created)
	}
}

func TestNotablesPullCreatesIssues(t *testing.T) {
	testlog.Start(t)
	idrUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title": "bad beacon", "severity": "critical"}]`))
	}))
	defer idrUpstream.Close()

	var createdPayload map[string]any
	jiraUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&createdPayload)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(jira.CreatedIssue{ID: "1", Key: "SEC-100"})
	}))
	defer jiraUpstream.Close()

	s := testServer(t, func(d *Deps) {
		d.Config.Jira.EnableWrite = true
		d.IDR = idr.NewClient(idr.Config{BaseURL: idrUpstream.URL, NotablesPath: "notables"})
		d.Jira = jira.NewClient(jira.Config{BaseURL: jiraUpstream.URL})
	})
	_, body := doJSON(t, s, http.MethodPost, "/idr/notables/pull", map[string]any{
		"create_jira": true,
	})
	created, _ := body["created"].([]any)
	if len(created) != 1 {
		t.Fatalf("expected one created issue: %v", body)
	}
	fields := createdPayload["fields"].(map[string]any)
	if fields["priority"].(map[string]any)["name"] != "Highest" {
		t.Fatalf("critical severity must map to Highest: %v", fields)
	}
}

func TestUnifiedComment(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("c2 at probe.example.com"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	zpaUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list": [{"domains": ["probe.example.com"]}]}`))
	}))
	defer zpaUpstream.Close()

	s := testServer(t, func(d *Deps) {
		d.ZPA = zpa.NewClient(zpa.Config{BaseURL: zpaUpstream.URL})
	})
	rec, body := doJSON(t, s, http.MethodPost, "/enrich/unified_comment", map[string]any{
		"paths":       []string{path},
		"include_zpa": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("enrich failed: %d %v", rec.Code, body)
	}
	scope, _ := body["zpa_scope"].([]any)
	if len(scope) != 1 || scope[0] != "probe.example.com" {
		t.Fatalf("scope hint missing: %v", body)
	}
	comment, _ := body["comment"].(string)
	if !strings.Contains(comment, "probe.example.com") || !strings.Contains(comment, "**Indicators**") {
		t.Fatalf("comment malformed:\n%s", comment)
	}
	if body["jira_posted"] != false {
		t.Fatalf("no comment should be posted: %v", body)
	}
}

func TestConnectorNotConfigured(t *testing.T) {
	testlog.Start(t)
	s := testServer(t, nil)
	rec, _ := doJSON(t, s, http.MethodGet, "/zpa/app_segments", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for missing zpa connector, got %d", rec.Code)
	}
	rec, _ = doJSON(t, s, http.MethodGet, "/idr/notables", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for missing idr connector, got %d", rec.Code)
	}
}
