// Package server owns the orchestrator HTTP surface.
//
// Ownership boundary:
// - route registration and request parsing
// - composition of the differ, summarizer, and enforcement gate
// - connector fan-out for notables and enrichment
//
// The gate never calls the differ; handlers compose them.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/blueswarm/orchestrator/internal/config"
	"github.com/blueswarm/orchestrator/internal/connectors/idr"
	"github.com/blueswarm/orchestrator/internal/connectors/jira"
	"github.com/blueswarm/orchestrator/internal/connectors/zpa"
	"github.com/blueswarm/orchestrator/internal/enforce"
	"github.com/blueswarm/orchestrator/internal/fieldmap"
	"github.com/blueswarm/orchestrator/internal/observability"
)

const version = "1.5.0"

// Deps carries the collaborators a Server composes. Lookup defaults to the
// Jira status lookup when left nil and a Jira client is present.
type Deps struct {
	Config   config.OrchestratorConfig
	Fieldmap fieldmap.Map
	Jira     *jira.Client
	ZPA      *zpa.Client
	IDR      *idr.Client
	Lookup   enforce.ApprovalLookup
}

type Server struct {
	cfg    config.OrchestratorConfig
	fmap   fieldmap.Map
	gate   *enforce.Gate
	jira   *jira.Client
	zpa    *zpa.Client
	idr    *idr.Client
	engine *gin.Engine

	appeared time.Time
}

func New(deps Deps) *Server {
	lookup := deps.Lookup
	if lookup == nil && deps.Jira != nil {
		lookup = jira.NewStatusLookup(deps.Jira)
	}
	if lookup == nil {
		lookup = unavailableLookup{}
	}

	s := &Server{
		cfg:      deps.Config,
		fmap:     deps.Fieldmap,
		gate:     enforce.NewGate(enforce.Config{Enabled: deps.Config.EnforceEnabled}, lookup),
		jira:     deps.Jira,
		zpa:      deps.ZPA,
		idr:      deps.IDR,
		appeared: time.Now(),
	}
	s.engine = s.buildEngine()
	return s
}

func (s *Server) buildEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	if len(s.cfg.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.cfg.CorsOrigins,
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	s.registerRoutes(r)
	return r
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": "blueswarm-orchestrator",
			"version": version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/policy/diff", s.handlePolicyDiff)
	r.POST("/policy/enforce", s.handlePolicyEnforce)

	r.POST("/ingest/analyze", s.handleIngestAnalyze)

	r.GET("/idr/notables", s.handleNotables)
	r.POST("/idr/notables/pull", s.handleNotablesPull)

	r.GET("/zpa/app_segments", s.handleAppSegments)

	r.POST("/enrich/unified_comment", s.handleUnifiedComment)
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving HTTP on the configured address.
func (s *Server) Run() error {
	observability.RegisterMetrics()
	log.Info().Str("addr", s.cfg.ListenAddr).Msg("orchestrator listening")
	return s.engine.Run(s.cfg.ListenAddr)
}

// unavailableLookup fails closed when no ticketing connector is configured.
type unavailableLookup struct{}

func (unavailableLookup) GetApproval(context.Context, string) (enforce.ApprovalState, error) {
	return enforce.ApprovalState{}, jira.ErrMissingBaseURL
}
