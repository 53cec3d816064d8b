package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blueswarm/orchestrator/internal/observability"
	"github.com/blueswarm/orchestrator/internal/patch"
)

type policyDiffRequest struct {
	Desired      patch.Node  `json:"desired"`
	Current      *patch.Node `json:"current"`
	FetchCurrent bool        `json:"fetch_current"`
}

type policyDiffResponse struct {
	Patch   patch.Patch `json:"patch"`
	Summary []string    `json:"summary"`
	Changes int         `json:"changes"`
}

func (s *Server) handlePolicyDiff(c *gin.Context) {
	var req policyDiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current := patch.Object(map[string]patch.Node{})
	switch {
	case req.Current != nil:
		current = *req.Current
	case req.FetchCurrent:
		if s.zpa == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "zpa connector not configured"})
			return
		}
		fetched, err := s.zpa.GetCurrentPolicies(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		current = fetched
	}

	p := patch.Diff(current, req.Desired)
	observability.RecordPolicyDiff()
	c.JSON(http.StatusOK, policyDiffResponse{
		Patch:   p,
		Summary: patch.Summarize(p),
		Changes: len(p),
	})
}

type policyEnforceRequest struct {
	Patch         patch.Patch `json:"patch"`
	ApprovalRef   string      `json:"approval_ref" binding:"required"`
	AllowStatuses []string    `json:"allow_statuses"`
}

func (s *Server) handlePolicyEnforce(c *gin.Context) {
	var req policyEnforceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Malformed patches are rejected before the gate ever runs.
	if err := req.Patch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allow := req.AllowStatuses
	if len(allow) == 0 {
		allow = s.cfg.AllowStatuses
	}

	decision := s.gate.Enforce(c.Request.Context(), req.Patch, req.ApprovalRef, allow)
	c.JSON(http.StatusOK, decision)
}
