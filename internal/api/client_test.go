package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/siftscience/sift-cli/internal/dryrun"
	"github.com/siftscience/sift-cli/internal/iocontext"
	"github.com/siftscience/sift-cli/internal/validation"
)

// newTestClient points a client at server with account "acct".
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := New(Config{
		APIKey:    "test-key",
		AccountID: "acct",
		BaseURL:   server.URL,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

// countingServer replies with status/body and counts requests.
func countingServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(Config{APIKey: "key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", client.BaseURL(), DefaultBaseURL)
	}
	if client.Version() != DefaultAPIVersion {
		t.Errorf("Version = %q, want %q", client.Version(), DefaultAPIVersion)
	}
	if client.DefaultTimeout().Total() != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.DefaultTimeout().Total(), DefaultTimeout)
	}
	if client.http == nil {
		t.Error("expected HTTP client to be initialized")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	client, err := New(Config{APIKey: "key", BaseURL: "https://api.example.com/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.BaseURL() != "https://api.example.com" {
		t.Errorf("BaseURL = %q", client.BaseURL())
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	SetDefaultCredentials("", "")
	_, err := New(Config{})
	if !errors.Is(err, validation.ErrValue) {
		t.Fatalf("expected value error, got %v", err)
	}
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Config{APIKey: "key", BaseURL: "ftp://api.example.com"})
	if !errors.Is(err, validation.ErrValue) {
		t.Fatalf("expected value error, got %v", err)
	}
}

func TestNew_DefaultCredentialsReadOnce(t *testing.T) {
	t.Cleanup(func() { SetDefaultCredentials("", "") })

	SetDefaultCredentials("global-key", "global-acct")
	client, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	SetDefaultCredentials("other-key", "other-acct")

	if client.apiKey != "global-key" || client.AccountID() != "global-acct" {
		t.Errorf("client picked up %q/%q, want global-key/global-acct", client.apiKey, client.AccountID())
	}

	explicit, err := New(Config{APIKey: "explicit", AccountID: "mine"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if explicit.apiKey != "explicit" || explicit.AccountID() != "mine" {
		t.Error("explicit credentials must win over defaults")
	}
}

func TestNew_AdoptsHTTPClient(t *testing.T) {
	hc := &http.Client{}
	client, err := New(Config{APIKey: "key", HTTPClient: hc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.http != hc {
		t.Error("expected caller supplied http.Client to be used as-is")
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(1.5).Total(); got != 1500*time.Millisecond {
		t.Errorf("Seconds(1.5).Total() = %v", got)
	}
	tm := Timeout{Connect: time.Second, Read: 2 * time.Second}
	if tm.Total() != 3*time.Second {
		t.Errorf("Total() = %v, want 3s", tm.Total())
	}
	if !(Timeout{}).IsZero() {
		t.Error("zero Timeout should report IsZero")
	}
}

func TestEscapePath_RoundTrip(t *testing.T) {
	id := "=.-_+@:&^%!$/"
	escaped := escapePath(id)

	if strings.Contains(escaped, "/") {
		t.Fatalf("escaped segment %q contains a literal slash", escaped)
	}
	decoded, err := url.PathUnescape(escaped)
	if err != nil {
		t.Fatalf("PathUnescape: %v", err)
	}
	if decoded != id {
		t.Errorf("round trip = %q, want %q", decoded, id)
	}
	if escaped != "%3D.-_%2B%40%3A%26%5E%25%21%24%2F" {
		t.Errorf("escapePath(%q) = %q", id, escaped)
	}
}

func TestEscapePath_OnTheWire(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"status": 0}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.Scores().Score(context.Background(), "a/b c", ScoreOptions{}); err != nil {
		t.Fatalf("Score: %v", err)
	}
	if gotPath != "/v205/score/a%2Fb%20c" {
		t.Errorf("path = %q, want /v205/score/a%%2Fb%%20c", gotPath)
	}
}

func TestPaths(t *testing.T) {
	client, err := New(Config{APIKey: "key", AccountID: "acct/1", BaseURL: "https://api.example.com"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := client.versionedPath("", "/events"); got != "https://api.example.com/v205/events" {
		t.Errorf("versionedPath default = %q", got)
	}
	if got := client.versionedPath("204", "events"); got != "https://api.example.com/v204/events" {
		t.Errorf("versionedPath override = %q", got)
	}
	if got := client.v1Path("/verification/send"); got != "https://api.example.com/v1/verification/send" {
		t.Errorf("v1Path = %q", got)
	}
	got, err := client.accountPath("/decisions")
	if err != nil {
		t.Fatalf("accountPath: %v", err)
	}
	if got != "https://api.example.com/v3/accounts/acct%2F1/decisions" {
		t.Errorf("accountPath = %q", got)
	}
}

func TestAccountPath_RequiresAccountID(t *testing.T) {
	client, err := New(Config{APIKey: "key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.accountPath("/decisions"); !errors.Is(err, validation.ErrValue) {
		t.Fatalf("expected value error, got %v", err)
	}
}

func TestDo_Headers(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"status": 0}`))
	}))
	defer server.Close()
	client := newTestClient(t, server)

	_, err := client.Do(context.Background(), &Request{
		Operation: "test",
		Method:    http.MethodPost,
		URL:       server.URL + "/v205/events",
		Body:      map[string]any{"a": 1},
		Auth:      AuthBasic,
		Header:    http.Header{"X-Extra": []string{"1"}},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	wantUA := "SiftScience/v205 sift-go/" + ClientVersion + " Go/" + runtime.Version()
	if ua := got.Header.Get("User-Agent"); ua != wantUA {
		t.Errorf("User-Agent = %q, want %q", ua, wantUA)
	}
	if ct := got.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if accept := got.Header.Get("Accept"); accept != "*/*" {
		t.Errorf("Accept = %q", accept)
	}
	if got.Header.Get("X-Extra") != "1" {
		t.Error("expected extra header to be forwarded")
	}
	user, pass, ok := got.BasicAuth()
	if !ok || user != "test-key" || pass != "" {
		t.Errorf("BasicAuth = %q/%q/%v, want test-key/\"\"/true", user, pass, ok)
	}
}

func TestDo_GetHasNoContentType(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"status": 0}`))
	}))
	defer server.Close()
	client := newTestClient(t, server)

	_, err := client.Do(context.Background(), &Request{Operation: "test", Method: http.MethodGet, URL: server.URL, Version: "204"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got.Get("Content-Type") != "" {
		t.Errorf("GET should not send Content-Type, got %q", got.Get("Content-Type"))
	}
	if got.Get("Authorization") != "" {
		t.Error("AuthNone should not send Authorization")
	}
	if !strings.HasPrefix(got.Get("User-Agent"), "SiftScience/v204 ") {
		t.Errorf("User-Agent should carry the per-call version, got %q", got.Get("User-Agent"))
	}
}

func TestDo_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server)
	target := server.URL + "/v205/events"
	server.Close()

	_, err := client.Do(context.Background(), &Request{Operation: "test", Method: http.MethodGet, URL: target})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Kind != KindTransport {
		t.Errorf("Kind = %q, want transport", apiErr.Kind)
	}
	if apiErr.URL != target {
		t.Errorf("URL = %q, want %q", apiErr.URL, target)
	}
	if apiErr.Err == nil {
		t.Error("expected underlying cause")
	}
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)
	client := newTestClient(t, server)

	_, err := client.Do(context.Background(), &Request{
		Operation: "test",
		Method:    http.MethodGet,
		URL:       server.URL,
		Timeout:   Timeout{Read: 50 * time.Millisecond},
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !apiErr.Timeout() {
		t.Errorf("expected Timeout() to be true, cause: %v", apiErr.Err)
	}
}

func TestDo_DryRunSkipsNetwork(t *testing.T) {
	server, calls := countingServer(t, http.StatusOK, `{"status": 0}`)
	client := newTestClient(t, server)

	var errOut strings.Builder
	ctx := dryrun.WithDryRun(context.Background(), true)
	ctx = iocontext.WithIO(ctx, &iocontext.IO{Out: io.Discard, ErrOut: &errOut})

	resp, err := client.Events().Track(ctx, "$login", map[string]any{"$user_id": "u1"}, TrackOptions{})
	if !errors.Is(err, dryrun.ErrSkipped) {
		t.Fatalf("expected dryrun.ErrSkipped, got %v", err)
	}
	if resp != nil {
		t.Error("expected no response in dry-run mode")
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Errorf("expected no request, got %d", *calls)
	}
	out := errOut.String()
	if !strings.Contains(out, "[DRY-RUN] Would send POST "+server.URL+"/v205/events") {
		t.Errorf("unexpected preview:\n%s", out)
	}
	if strings.Contains(out, "test-key") {
		t.Error("preview must not print the API key")
	}
}

func TestThrottledReplyCarriesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status": 60, "error_message": "Rate limit exceeded"}`))
	}))
	defer server.Close()
	client := newTestClient(t, server)

	_, err := client.Scores().UserScore(context.Background(), "u1", ScoreOptions{})
	if !IsRateLimitError(err) {
		t.Fatalf("expected a 429 error, got %v", err)
	}
	if got := RetryAfter(err); got != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", got)
	}

	structured := StructuredErrorFromError(err)
	if structured.Code != ErrRateLimited || !structured.Retryable {
		t.Errorf("unexpected structured error: %+v", structured)
	}
	if structured.Context["retry_after_seconds"] != 30 {
		t.Errorf("context = %v", structured.Context)
	}
	if structured.Suggestion != "Retry after 30s" {
		t.Errorf("suggestion = %q", structured.Suggestion)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"soon", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("Retry-After", tt.value)
		}
		if got := parseRetryAfter(h, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestRetryAfter_OnlyForThrottledReplies(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "10")

	_, err := newResponse("u", http.StatusBadRequest, header, []byte(`{"status": 51}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if got := RetryAfter(err); got != 0 {
		t.Errorf("RetryAfter on 400 = %v, want 0", got)
	}

	_, err = newResponse("u", http.StatusServiceUnavailable, header, nil)
	if got := RetryAfter(err); got != 10*time.Second {
		t.Errorf("RetryAfter on 503 = %v, want 10s", got)
	}
	if got := RetryAfter(errors.New("plain")); got != 0 {
		t.Errorf("RetryAfter on plain error = %v", got)
	}
}
