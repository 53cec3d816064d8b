// Package enforce owns the approval-gated enforcement decision.
//
// Ownership boundary:
// - approval lookup contract against the ticketing collaborator
// - the accept/block state machine over a policy patch
// - decision counters and the per-decision audit record
//
// The gate is fail-closed: a disabled flag, a lookup failure of any kind,
// or a status outside the allowlist all terminate in a blocked decision.
// No path returns an error to the caller; every invocation yields exactly
// one Decision.
package enforce
