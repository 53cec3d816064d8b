package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/blueswarm/orchestrator/internal/ingest"
	"github.com/blueswarm/orchestrator/internal/observability"
)

type ingestAnalyzeRequest struct {
	Paths []string `json:"paths" binding:"required"`
}

type ingestAnalyzeResponse struct {
	Results         []ingest.Analysis `json:"results"`
	IndicatorsTotal int               `json:"iocs_total"`
}

func (s *Server) handleIngestAnalyze(c *gin.Context) {
	var req ingestAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := make([]ingest.Analysis, 0, len(req.Paths))
	total := 0
	for _, path := range req.Paths {
		analysis, err := ingest.AnalyzePath(path)
		if err != nil {
			log.Warn().Str("path", path).Err(err).Msg("analyze failed")
		}
		results = append(results, analysis)
		if analysis.Exists {
			observability.RecordFileAnalyzed()
			total += analysis.IndicatorCount()
		}
	}
	observability.RecordIndicatorsFound(total)

	c.JSON(http.StatusOK, ingestAnalyzeResponse{
		Results:         results,
		IndicatorsTotal: total,
	})
}
