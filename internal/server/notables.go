package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/blueswarm/orchestrator/internal/connectors/idr"
	"github.com/blueswarm/orchestrator/internal/connectors/jira"
	"github.com/blueswarm/orchestrator/internal/observability"
	"github.com/blueswarm/orchestrator/internal/report"
)

func (s *Server) handleNotables(c *gin.Context) {
	if s.idr == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "idr connector not configured"})
		return
	}
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	items, err := s.idr.GetNotables(c.Request.Context(), c.Query("start_time"), c.Query("end_time"), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

type notablesPullRequest struct {
	Since      string `json:"since"`
	Until      string `json:"until"`
	Limit      int    `json:"limit"`
	CreateJira bool   `json:"create_jira"`
	ProjectKey string `json:"project_key"`
	Notes      string `json:"notes"`
}

type notableItem struct {
	Summary     string              `json:"summary"`
	Severity    string              `json:"severity"`
	Description string              `json:"description"`
	Indicators  map[string][]string `json:"iocs"`
	Assets      []string            `json:"assets"`
}

func (s *Server) handleNotablesPull(c *gin.Context) {
	if s.idr == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "idr connector not configured"})
		return
	}
	var req notablesPullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}

	raw, err := s.idr.GetNotables(c.Request.Context(), req.Since, req.Until, req.Limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	items := make([]notableItem, 0, len(raw))
	for _, entry := range raw {
		norm := s.normalizeNotable(entry, req.Notes)
		items = append(items, norm)
	}

	var created []jira.CreatedIssue
	if req.CreateJira {
		created = s.promoteNotables(c, items, req.ProjectKey)
		if created == nil && !s.cfg.Jira.EnableWrite {
			log.Warn().Msg("ticket creation requested but jira write is disabled")
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "created": created})
}

func (s *Server) normalizeNotable(entry map[string]any, notes string) notableItem {
	norm := idr.Normalize(entry)
	desc := report.BuildDescription(norm.Title, norm.Description, norm.Indicators, norm.Assets, notes)
	return notableItem{
		Summary:     norm.Title,
		Severity:    norm.Severity,
		Description: desc,
		Indicators:  norm.Indicators,
		Assets:      norm.Assets,
	}
}

func (s *Server) promoteNotables(c *gin.Context, items []notableItem, projectKey string) []jira.CreatedIssue {
	if !s.cfg.Jira.EnableWrite || s.jira == nil {
		return nil
	}
	if projectKey == "" {
		projectKey = s.fmap.ProjectKey
	}
	created := make([]jira.CreatedIssue, 0, len(items))
	for _, item := range items {
		issue, err := s.jira.CreateIssue(c.Request.Context(), jira.CreateIssueRequest{
			ProjectKey:   projectKey,
			Summary:      item.Summary,
			Description:  item.Description,
			IssueType:    s.fmap.DefaultIssueType,
			Labels:       s.fmap.DefaultLabels,
			Components:   s.fmap.Components,
			Priority:     s.fmap.MapPriority(item.Severity),
			CustomFields: s.fmap.CustomFields,
		})
		if err != nil {
			log.Warn().Str("summary", item.Summary).Err(err).Msg("issue creation failed")
			continue
		}
		observability.RecordIssueCreated()
		created = append(created, issue)
	}
	return created
}

func (s *Server) handleAppSegments(c *gin.Context) {
	if s.zpa == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "zpa connector not configured"})
		return
	}
	limit := 200
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	segments, err := s.zpa.ListAppSegments(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": segments})
}
