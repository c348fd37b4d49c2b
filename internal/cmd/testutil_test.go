package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/require"

	"github.com/siftscience/sift-cli/internal/config"
	"github.com/siftscience/sift-cli/internal/iocontext"
)

func TestMain(m *testing.M) {
	// Keep SIFT_OUTPUT from the developer's shell out of the tests.
	_ = os.Setenv("SIFT_OUTPUT", "text")

	cleanup := config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return keyring.NewArrayKeyring(nil), nil
	})
	code := m.Run()
	cleanup()
	os.Exit(code)
}

// withKeyring backs the config package with one in-memory keyring for the
// whole test, so profiles saved by one command are visible to the next.
func withKeyring(t *testing.T) *keyring.ArrayKeyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	restore := config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(restore)
	return ring
}

// clearSiftEnv unsets every SIFT_* variable the resolver reads.
func clearSiftEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvAPIKey, config.EnvAccountID, config.EnvBaseURL, config.EnvProfile, envMetricsFile, envOTelEndpoint} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
}

// recordedRequest is what a routeHandler saw for one call.
type recordedRequest struct {
	Method      string
	Path        string
	EscapedPath string
	RawQuery    string
	Body        map[string]any
	User        string
}

// routeHandler routes requests by "METHOD PATH" and records each one.
// Unknown routes return 404.
type routeHandler struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for the given method and path.
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, EscapedPath: r.URL.EscapedPath(), RawQuery: r.URL.RawQuery}
	rec.User, _, _ = r.BasicAuth()
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	rh.mu.Lock()
	rh.requests = append(rh.requests, rec)
	rh.mu.Unlock()

	if handler, ok := rh.routes[r.Method+" "+r.URL.Path]; ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

// Requests returns a copy of the recorded requests.
func (rh *routeHandler) Requests() []recordedRequest {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	return append([]recordedRequest(nil), rh.requests...)
}

// lastRequest fails the test when nothing was recorded.
func (rh *routeHandler) lastRequest(t *testing.T) recordedRequest {
	t.Helper()
	reqs := rh.Requests()
	require.NotEmpty(t, reqs, "no request reached the server")
	return reqs[len(reqs)-1]
}

func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// setupTestEnvWithHandler starts a server and points SIFT_* at it with
// api key "test-key" and account "acct".
func setupTestEnvWithHandler(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	clearSiftEnv(t)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv(config.EnvAPIKey, "test-key")
	t.Setenv(config.EnvAccountID, "acct")
	t.Setenv(config.EnvBaseURL, server.URL)
	t.Setenv(envOutput, "text")
	return server
}

type cliResult struct {
	Out    string
	ErrOut string
	Err    error
}

// runCLI executes the CLI with buffered streams. stdin is always treated as
// piped.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	streams, out, errOut := iocontext.Buffered(stdin)
	ctx := iocontext.WithIO(context.Background(), streams)
	err := Execute(ctx, args)
	return cliResult{Out: out.String(), ErrOut: errOut.String(), Err: err}
}

// decodeJSON unmarshals command output into a map.
func decodeJSON(t *testing.T, output string) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}
