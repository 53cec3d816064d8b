package jira

import (
	"context"
	"fmt"

	"github.com/blueswarm/orchestrator/internal/enforce"
)

// StatusLookup adapts the issue endpoint to the gate's approval contract.
// A reachable issue with no workflow status is a malformed response, not an
// empty approval.
type StatusLookup struct {
	client *Client
}

func NewStatusLookup(client *Client) *StatusLookup {
	return &StatusLookup{client: client}
}

func (l *StatusLookup) GetApproval(ctx context.Context, ref string) (enforce.ApprovalState, error) {
	issue, err := l.client.GetIssue(ctx, ref)
	if err != nil {
		return enforce.ApprovalState{}, err
	}
	if issue.Fields.Status.Name == "" {
		return enforce.ApprovalState{}, fmt.Errorf("%w: issue %s has no status name", ErrDecode, ref)
	}
	return enforce.ApprovalState{Status: issue.Fields.Status.Name}, nil
}
