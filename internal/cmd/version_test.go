package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftscience/sift-cli/internal/api"
)

func withVersion(t *testing.T, v, releases string) {
	t.Helper()
	origVersion, origURL := version, releasesURL
	version, releasesURL = v, releases
	t.Cleanup(func() { version, releasesURL = origVersion, origURL })
}

func TestVersion_Text(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())
	withVersion(t, "1.2.0", "http://127.0.0.1:0/unused")

	res := runCLI(t, "", "version")
	require.NoError(t, res.Err)
	assert.Equal(t, "sift-cli version 1.2.0 (API v"+api.DefaultAPIVersion+")\n", res.Out)
}

func TestVersion_CheckReportsUpdate(t *testing.T) {
	releases := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "v1.3.0", "html_url": "https://example.com/releases/v1.3.0"}`))
	}))
	t.Cleanup(releases.Close)
	setupTestEnvWithHandler(t, newRouteHandler())
	withVersion(t, "1.2.0", releases.URL)

	res := runCLI(t, "", "version", "--check")
	require.NoError(t, res.Err)
	assert.Contains(t, res.ErrOut, "Update available: 1.2.0 -> 1.3.0")

	res = runCLI(t, "", "version", "--check", "-o", "json")
	require.NoError(t, res.Err)
	view := decodeJSON(t, res.Out)
	assert.Equal(t, "1.2.0", view["version"])
	assert.Equal(t, api.ClientVersion, view["client_version"])
	update, ok := view["update"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, update["update_available"])
}

func TestVersion_CheckFailureIsSilent(t *testing.T) {
	releases := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(releases.Close)
	setupTestEnvWithHandler(t, newRouteHandler())
	withVersion(t, "1.2.0", releases.URL)

	res := runCLI(t, "", "version", "--check", "--json")
	require.NoError(t, res.Err)
	assert.NotContains(t, decodeJSON(t, res.Out), "update")
}
