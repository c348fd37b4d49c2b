package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/siftscience/sift-cli/internal/debug"
	"github.com/siftscience/sift-cli/internal/dryrun"
	"github.com/siftscience/sift-cli/internal/iocontext"
	"github.com/siftscience/sift-cli/internal/metrics"
	"github.com/siftscience/sift-cli/internal/traces"
	"go.opentelemetry.io/otel/trace"
)

// AuthMode selects how the API key is presented.
type AuthMode int

const (
	// AuthNone sends no Authorization header; the key travels in the body.
	AuthNone AuthMode = iota
	// AuthBasic sends HTTP Basic auth with the key as username and an
	// empty password.
	AuthBasic
)

func (m AuthMode) String() string {
	if m == AuthBasic {
		return "basic"
	}
	return "none"
}

// CallOptions overrides client defaults for a single call.
type CallOptions struct {
	Timeout Timeout
	Version string
}

// Request describes one HTTP call. It is built fresh for every operation and
// never shared between calls.
type Request struct {
	Operation string
	Method    string
	URL       string
	Query     url.Values
	Body      any
	Auth      AuthMode
	Header    http.Header
	Timeout   Timeout
	Version   string
	// Warnings are shown in dry-run previews only.
	Warnings []string
}

// FullURL returns URL with the encoded query string appended.
func (r *Request) FullURL() string {
	if len(r.Query) == 0 {
		return r.URL
	}
	return r.URL + "?" + r.Query.Encode()
}

func (c *Client) userAgentFor(version string) string {
	if c.userAgent != "" {
		return c.userAgent
	}
	return fmt.Sprintf("SiftScience/v%s sift-go/%s Go/%s", version, ClientVersion, runtime.Version())
}

// Do performs exactly one HTTP call and interprets the reply. Transport
// failures, malformed bodies and non-2xx replies are returned as *APIError.
// In dry-run mode the request is printed instead and dryrun.ErrSkipped is
// returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	timeout := req.Timeout
	if timeout.IsZero() {
		timeout = c.timeout
	}
	version := req.Version
	if version == "" {
		version = c.version
	}
	fullURL := req.FullURL()

	var body []byte
	if req.Body != nil {
		var err error
		body, err = encodeJSON(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	if dryrun.IsEnabled(ctx) {
		c.preview(ctx, req, version, fullURL, body)
		return nil, dryrun.ErrSkipped
	}

	ctx, span := traces.StartSpan(ctx, "sift."+req.Operation,
		traces.Operation(req.Operation),
		traces.HTTPMethod(req.Method),
		traces.URL(fullURL),
	)
	defer span.End()

	callCtx := ctx
	if total := timeout.Total(); total > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, total)
		defer cancel()
	}
	callCtx = withConnectTimeout(callCtx, timeout.Connect)

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(callCtx, req.Method, fullURL, bodyReader)
	if err != nil {
		apiErr := transportError(fullURL, err)
		traces.Fail(span, apiErr)
		return nil, apiErr
	}

	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("User-Agent", c.userAgentFor(version))
	if req.Method == http.MethodPost || req.Method == http.MethodPut {
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "*/*")
	}
	if req.Auth == AuthBasic {
		httpReq.SetBasicAuth(c.apiKey, "")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.failTransport(ctx, span, req, fullURL, start, err)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, c.failTransport(ctx, span, req, fullURL, start, fmt.Errorf("failed to read response: %w", err))
	}
	duration := time.Since(start)

	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "operation", req.Operation, "method", req.Method, "url", fullURL, "status", resp.StatusCode, "duration", duration)
	}
	span.SetAttributes(traces.HTTPStatus(resp.StatusCode))

	envelope, err := newResponse(fullURL, resp.StatusCode, resp.Header, raw)
	if err != nil {
		outcome := ""
		if apiErr, ok := err.(*APIError); ok && apiErr.Kind == KindMalformedResponse {
			outcome = metrics.OutcomeMalformed
		}
		metrics.ObserveRequest(req.Operation, req.Method, resp.StatusCode, outcome, duration)
		traces.Fail(span, err)
		return nil, err
	}

	metrics.ObserveRequest(req.Operation, req.Method, resp.StatusCode, "", duration)
	if envelope.APIStatus != nil {
		span.SetAttributes(traces.APIStatus(*envelope.APIStatus))
	}
	if !envelope.IsOK() {
		metrics.ObserveSoftFailure(req.Operation)
	}
	return envelope, nil
}

func (c *Client) failTransport(ctx context.Context, span trace.Span, req *Request, fullURL string, start time.Time, cause error) error {
	duration := time.Since(start)
	if debug.IsEnabled(ctx) {
		slog.Debug("request failed", "operation", req.Operation, "method", req.Method, "url", fullURL, "duration", duration, "error", cause)
	}
	metrics.ObserveRequest(req.Operation, req.Method, 0, metrics.OutcomeTransportError, duration)
	apiErr := transportError(fullURL, cause)
	traces.Fail(span, apiErr)
	return apiErr
}

// preview writes the request that would have been sent. The API key is
// masked wherever it appears.
func (c *Client) preview(ctx context.Context, req *Request, version, fullURL string, body []byte) {
	p := &dryrun.Preview{
		Operation: req.Operation,
		Method:    req.Method,
		URL:       fullURL,
		Details: map[string]any{
			"auth":       req.Auth.String(),
			"user_agent": c.userAgentFor(version),
		},
		Warnings: req.Warnings,
	}
	if body != nil {
		p.Body = string(bytes.ReplaceAll(body, []byte(c.apiKey), []byte(maskKey(c.apiKey))))
	}
	p.Write(iocontext.GetIO(ctx).ErrOut)
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
