package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/siftscience/sift-cli/internal/validation"
)

const labelEvent = "$label"

func labelsPath(r Requester, userID, version string) string {
	return r.versionedPath(version, "/users/"+escapePath(userID)+"/labels")
}

// Label labels a user. It is a track call with $type "$label" posted to the
// user's labels resource.
func (s LabelsService) Label(ctx context.Context, userID string, props map[string]any, opts CallOptions) (*Response, error) {
	return label(ctx, s, userID, props, opts)
}

func label(ctx context.Context, r Requester, userID string, props map[string]any, opts CallOptions) (*Response, error) {
	const operation = "labels.label"
	if err := validation.NonEmptyID("user_id", userID); err != nil {
		return nil, rejected(operation, err)
	}
	return track(ctx, r, operation, labelEvent, props, TrackOptions{
		CallOptions: opts,
		Path:        labelsPath(r, userID, opts.Version),
	})
}

// UnlabelOptions narrow an unlabel call to one abuse type. An empty
// AbuseType removes labels for all abuse types.
type UnlabelOptions struct {
	CallOptions

	AbuseType string
}

// Unlabel removes a user's labels (DELETE /users/{user_id}/labels).
func (s LabelsService) Unlabel(ctx context.Context, userID string, opts UnlabelOptions) (*Response, error) {
	return unlabel(ctx, s, userID, opts)
}

func unlabel(ctx context.Context, r Requester, userID string, opts UnlabelOptions) (*Response, error) {
	const operation = "labels.unlabel"
	if err := validation.NonEmptyID("user_id", userID); err != nil {
		return nil, rejected(operation, err)
	}

	q := url.Values{}
	if opts.AbuseType != "" {
		q.Set("abuse_type", opts.AbuseType)
	}
	return r.Do(ctx, &Request{
		Operation: operation,
		Method:    http.MethodDelete,
		URL:       labelsPath(r, userID, opts.Version),
		Query:     q,
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
		Version:   opts.Version,
	})
}
