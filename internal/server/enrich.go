package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/blueswarm/orchestrator/internal/ingest"
	"github.com/blueswarm/orchestrator/internal/observability"
	"github.com/blueswarm/orchestrator/internal/report"
)

const (
	maxScopeProbes   = 50
	maxScopeHits     = 50
	maxMergedPerType = 30
	maxHaystack      = 500_000
)

type unifiedCommentRequest struct {
	Paths         []string `json:"paths" binding:"required"`
	JiraIssueKey  string   `json:"jira_issue_key"`
	CreateComment bool     `json:"create_comment"`
	IncludeIDR    bool     `json:"include_idr"`
	IncludeZPA    bool     `json:"include_zpa"`
	Notes         string   `json:"notes"`
}

// handleUnifiedComment merges indicators across artifacts, scopes them
// against ZPA segments, and optionally posts the result as a ticket comment.
func (s *Server) handleUnifiedComment(c *gin.Context) {
	var req unifiedCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	observability.RecordEnrichAttempt()

	var sets []map[string][]string
	for _, path := range req.Paths {
		analysis, err := ingest.AnalyzePath(path)
		if err != nil {
			log.Warn().Str("path", path).Err(err).Msg("analyze failed")
			continue
		}
		if analysis.Exists {
			sets = append(sets, analysis.Indicators)
		}
	}
	merged := ingest.TopValues(ingest.MergeIndicators(sets), maxMergedPerType)

	var zpaScope []string
	if req.IncludeZPA && s.zpa != nil {
		scope, err := s.scopeAgainstSegments(c, merged)
		if err != nil {
			log.Warn().Err(err).Msg("zpa scope lookup failed")
		} else {
			zpaScope = scope
		}
	}

	idrNote := "IDR context lookup not configured"
	if req.IncludeIDR && s.idr != nil {
		if _, err := s.idr.GetNotables(c.Request.Context(), "", "", 5); err != nil {
			idrNote = "IDR lookup error: " + err.Error()
		} else {
			idrNote = "IDR reachable"
		}
	}

	comment := report.BuildDescription(
		"Unified Enrichment Summary",
		"Paths: "+strings.Join(req.Paths, ", "),
		merged, nil, req.Notes,
	)
	if len(zpaScope) > 0 {
		items := make([]string, 0, len(zpaScope))
		for _, hit := range zpaScope {
			items = append(items, "- "+hit)
		}
		comment += "\n\n**ZPA scope hints**\n" + strings.Join(items, "\n")
	}
	comment += "\n\n**IDR notes**\n- " + idrNote

	var posted bool
	if req.CreateComment && req.JiraIssueKey != "" && s.cfg.Jira.EnableWrite && s.jira != nil {
		if err := s.jira.AddComment(c.Request.Context(), req.JiraIssueKey, comment); err != nil {
			log.Warn().Str("issue", req.JiraIssueKey).Err(err).Msg("comment post failed")
		} else {
			observability.RecordEnrichComment()
			posted = true
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"iocs":        merged,
		"zpa_scope":   zpaScope,
		"comment":     comment,
		"jira_posted": posted,
	})
}

// scopeAgainstSegments substring-probes merged domains and urls against the
// serialized segment listing. Crude on purpose: it is a hint, not a match.
func (s *Server) scopeAgainstSegments(c *gin.Context, merged map[string][]string) ([]string, error) {
	segments, err := s.zpa.ListAppSegments(c.Request.Context(), 500)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(segments)
	if err != nil {
		return nil, err
	}
	haystack := string(raw)
	if len(haystack) > maxHaystack {
		haystack = haystack[:maxHaystack]
	}

	hits := map[string]struct{}{}
	probe := func(vals []string) {
		if len(vals) > maxScopeProbes {
			vals = vals[:maxScopeProbes]
		}
		for _, v := range vals {
			if v != "" && strings.Contains(haystack, v) {
				hits[v] = struct{}{}
			}
		}
	}
	probe(merged["domain"])
	probe(merged["url"])

	out := make([]string, 0, len(hits))
	for hit := range hits {
		out = append(out, hit)
	}
	sort.Strings(out)
	if len(out) > maxScopeHits {
		out = out[:maxScopeHits]
	}
	return out, nil
}
