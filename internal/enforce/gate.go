package enforce

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/blueswarm/orchestrator/internal/observability"
	"github.com/blueswarm/orchestrator/internal/patch"
)

// Gate decides whether a policy patch may proceed to application. It does
// not perform the application itself; an accepted decision only authorizes
// a separate, provider-specific step owned by the caller.
type Gate struct {
	cfg    Config
	lookup ApprovalLookup
}

// NewGate constructs a gate around one approval lookup collaborator.
func NewGate(cfg Config, lookup ApprovalLookup) *Gate {
	return &Gate{cfg: cfg, lookup: lookup}
}

// Enforce runs the decision state machine over one patch.
//
// Transition order:
//  1. enforcement disabled -> blocked, lookup never performed
//  2. approval lookup failure -> blocked, underlying error surfaced
//  3. status not in allowStatuses -> blocked, observed status named
//  4. otherwise -> accepted with applied op count
//
// Allowlist membership is exact and case-sensitive. The attempts counter
// increments once per call and exactly one of the accepted/blocked counters
// follows.
func (g *Gate) Enforce(ctx context.Context, p patch.Patch, approvalRef string, allowStatuses []string) Decision {
	observability.RecordEnforceAttempt()

	if !g.cfg.Enabled {
		return g.blocked(approvalRef, "enforcement disabled")
	}

	state, err := g.lookup.GetApproval(ctx, approvalRef)
	if err != nil {
		return g.blocked(approvalRef, fmt.Sprintf("approval lookup failed: %v", err))
	}

	if !slices.Contains(allowStatuses, state.Status) {
		return g.blocked(approvalRef, fmt.Sprintf("approval status %q not in allowlist %v", state.Status, allowStatuses))
	}

	return g.accepted(approvalRef, len(p))
}

func (g *Gate) blocked(approvalRef, reason string) Decision {
	observability.RecordEnforceBlocked()
	d := Decision{
		ID:      uuid.NewString(),
		Outcome: OutcomeBlocked,
		Reason:  reason,
	}
	g.audit(approvalRef, d)
	return d
}

func (g *Gate) accepted(approvalRef string, appliedOps int) Decision {
	observability.RecordEnforceAccepted()
	d := Decision{
		ID:         uuid.NewString(),
		Outcome:    OutcomeAccepted,
		Reason:     "approval status in allowlist",
		AppliedOps: appliedOps,
	}
	g.audit(approvalRef, d)
	return d
}

func (g *Gate) audit(approvalRef string, d Decision) {
	log.Info().
		Str("decision_id", d.ID).
		Str("approval_ref", approvalRef).
		Str("outcome", string(d.Outcome)).
		Str("reason", d.Reason).
		Int("applied_ops", d.AppliedOps).
		Msg("enforce_decision")
}
