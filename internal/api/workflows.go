package api

import (
	"context"
	"net/http"

	"github.com/siftscience/sift-cli/internal/validation"
)

// Status returns the state of one workflow run
// (GET /v3/accounts/{account_id}/workflows/runs/{run_id}).
func (s WorkflowsService) Status(ctx context.Context, runID string, opts CallOptions) (*Response, error) {
	return workflowStatus(ctx, s, runID, opts)
}

func workflowStatus(ctx context.Context, r Requester, runID string, opts CallOptions) (*Response, error) {
	const operation = "workflows.status"
	base, err := r.accountPath("")
	if err != nil {
		return nil, rejected(operation, err)
	}
	if err := validation.NonEmptyID("run_id", runID); err != nil {
		return nil, rejected(operation, err)
	}
	return r.Do(ctx, &Request{
		Operation: operation,
		Method:    http.MethodGet,
		URL:       base + "/workflows/runs/" + escapePath(runID),
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
	})
}
