package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/siftscience/sift-cli/internal/validation"
)

// Keys added to every track-family payload.
const (
	keyAPIKey = "$api_key"
	keyType   = "$type"
)

// TrackOptions are the query toggles accepted by the events endpoint.
type TrackOptions struct {
	CallOptions

	ReturnScore             bool
	ReturnAction            bool
	ReturnWorkflowStatus    bool
	ReturnRouteInfo         bool
	ForceWorkflowRun        bool
	IncludeScorePercentiles bool
	IncludeWarnings         bool
	AbuseTypes              []string

	// Path replaces the events URL. Labels use it to post to the user's
	// labels resource.
	Path string
}

func (o TrackOptions) query() url.Values {
	q := url.Values{}
	setFlag(q, "return_score", o.ReturnScore)
	setFlag(q, "return_action", o.ReturnAction)
	if len(o.AbuseTypes) > 0 {
		q.Set("abuse_types", strings.Join(o.AbuseTypes, ","))
	}
	setFlag(q, "return_workflow_status", o.ReturnWorkflowStatus)
	setFlag(q, "return_route_info", o.ReturnRouteInfo)
	setFlag(q, "force_workflow_run", o.ForceWorkflowRun)

	var fields []string
	if o.IncludeScorePercentiles {
		fields = append(fields, "SCORE_PERCENTILES")
	}
	if o.IncludeWarnings {
		fields = append(fields, "WARNINGS")
	}
	if len(fields) > 0 {
		q.Set("fields", strings.Join(fields, ","))
	}
	return q
}

func setFlag(q url.Values, name string, on bool) {
	if on {
		q.Set(name, "true")
	}
}

// Track sends an event. The payload is sent as given plus $api_key and
// $type; props itself is not modified.
func (s EventsService) Track(ctx context.Context, event string, props map[string]any, opts TrackOptions) (*Response, error) {
	return track(ctx, s, "events.track", event, props, opts)
}

func track(ctx context.Context, r Requester, operation, event string, props map[string]any, opts TrackOptions) (*Response, error) {
	if err := validation.NonEmptyString("event", event); err != nil {
		return nil, rejected(operation, err)
	}
	if err := validation.NonEmptyMapping("properties", props); err != nil {
		return nil, rejected(operation, err)
	}
	if err := validation.AbuseTypes(opts.AbuseTypes); err != nil {
		return nil, rejected(operation, err)
	}

	target := opts.Path
	if target == "" {
		target = r.versionedPath(opts.Version, "/events")
	}

	body := copyMapping(props, 2)
	body[keyAPIKey] = r.bodyAPIKey()
	body[keyType] = event

	req := &Request{
		Operation: operation,
		Method:    http.MethodPost,
		URL:       target,
		Query:     opts.query(),
		Body:      body,
		Auth:      AuthNone,
		Timeout:   opts.Timeout,
		Version:   opts.Version,
	}
	if suggestion := validation.SuggestEventName(event); suggestion != "" {
		req.Warnings = append(req.Warnings, fmt.Sprintf("%s is not a reserved event; did you mean %s?", event, suggestion))
	}
	return r.Do(ctx, req)
}
