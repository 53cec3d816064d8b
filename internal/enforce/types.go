package enforce

import "context"

// ApprovalState is the externally observed approval status for a reference.
// Fetched fresh on every gate invocation; never cached.
type ApprovalState struct {
	Status string
}

// ApprovalLookup fetches the current approval state for an external
// reference (e.g. a ticket key). Implementations return a typed error on
// any failure: transport, auth, timeout, malformed response. The gate
// converts every lookup error into a blocked decision.
type ApprovalLookup interface {
	GetApproval(ctx context.Context, ref string) (ApprovalState, error)
}

// Outcome is a terminal gate state.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeBlocked  Outcome = "blocked"
)

// Decision is the uniform result of one gate invocation.
type Decision struct {
	ID         string  `json:"id"`
	Outcome    Outcome `json:"outcome"`
	Reason     string  `json:"reason"`
	AppliedOps int     `json:"applied_ops"`
}

// Accepted reports whether the decision authorizes application.
func (d Decision) Accepted() bool {
	return d.Outcome == OutcomeAccepted
}

// Config holds the gate's explicit enforcement flag. Enforcement defaults
// to disabled; it is never read from ambient process state.
type Config struct {
	Enabled bool
}
