package api

import (
	"context"
	"errors"

	"github.com/siftscience/sift-cli/internal/metrics"
	"github.com/siftscience/sift-cli/internal/validation"
)

// PathResolver provides methods for resolving API endpoint URLs.
// It abstracts the URL construction logic, allowing operations to build
// URLs without knowing the base URL or account id details.
type PathResolver interface {
	// versionedPath returns the URL of a key-scoped endpoint.
	// Example: versionedPath("205", "/events") -> "https://api.sift.com/v205/events"
	versionedPath(version, resource string) string

	// v1Path returns the URL of an endpoint under the fixed /v1 tree.
	// Example: v1Path("/verification/send") -> "https://api.sift.com/v1/verification/send"
	v1Path(resource string) string

	// accountPath returns the URL of an account-scoped endpoint, or an
	// error when no account id is configured.
	// Example: accountPath("/decisions") -> "https://api.sift.com/v3/accounts/acct/decisions"
	accountPath(resource string) (string, error)
}

// HTTPExecutor performs one prepared request and returns its envelope.
type HTTPExecutor interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// bodyAPIKey returns the key injected into track-family payloads.
	bodyAPIKey() string
}

// Requester combines PathResolver and HTTPExecutor to provide
// the complete request surface used by operations.
//
// Operations depend on Requester rather than *Client so that tests can
// swap the executor and assert that a call was rejected before dispatch.
type Requester interface {
	PathResolver
	HTTPExecutor
}

func (c *Client) bodyAPIKey() string {
	return c.apiKey
}

// rejected records a validation failure for operation and returns err.
func rejected(operation string, err error) error {
	if err == nil {
		return nil
	}
	kind := "other"
	var verr *validation.Error
	if errors.As(err, &verr) {
		kind = string(verr.Kind)
	}
	metrics.ObserveValidationFailure(operation, kind)
	return err
}
