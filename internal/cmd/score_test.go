package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreBody(userID, score string) string {
	return `{"status": 0, "error_message": "OK", "user_id": "` + userID + `",
		"scores": {"payment_abuse": {"score": ` + score + `}}}`
}

func TestScoreGet_Single(t *testing.T) {
	handler := newRouteHandler().On("GET", "/v205/score/bill", jsonResponse(200, scoreBody("bill", "0.9")))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "score", "get", "bill", "--abuse-types", "payment_abuse", "--include-score-percentiles")
	require.NoError(t, res.Err, res.ErrOut)

	req := handler.lastRequest(t)
	assert.Equal(t, "test-key", req.User, "scores use basic auth")
	assert.Contains(t, req.RawQuery, "abuse_types=payment_abuse")
	assert.Contains(t, req.RawQuery, "fields=SCORE_PERCENTILES")
	assert.Contains(t, res.Out, "HTTP 200  status 0")
	assert.Contains(t, res.Out, "scores")
}

func TestScoreGet_EscapesUserID(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "score", "get", "a/b c")
	require.Error(t, res.Err)
	assert.Equal(t, "/v205/score/a%2Fb%20c", handler.lastRequest(t).EscapedPath)
}

func TestScoreGet_Multiple(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v205/score/bill", jsonResponse(200, scoreBody("bill", "0.9"))).
		On("GET", "/v205/score/alice", jsonResponse(200, scoreBody("alice", "0.1")))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "score", "get", "bill", "alice", "--concurrency", "2")
	require.NoError(t, res.Err, res.ErrOut)
	assert.Len(t, handler.Requests(), 2)
	assert.Contains(t, res.Out, "USER_ID")
	assert.Contains(t, res.Out, "payment_abuse=0.9")
	assert.Contains(t, res.Out, "payment_abuse=0.1")
}

func TestScoreGet_MultiplePartialFailureJSON(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v205/score/bill", jsonResponse(200, scoreBody("bill", "0.9"))).
		On("GET", "/v205/score/ghost", jsonResponse(404, `{"status": 60, "error_message": "Not found"}`))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "score", "get", "bill", "ghost", "-o", "json")
	require.Error(t, res.Err)
	assert.Equal(t, exitNotFound, ExitCode(res.Err))

	out := decodeJSON(t, res.Out)
	items, ok := out["items"].([]any)
	require.True(t, ok, "expected items list in %s", res.Out)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, "bill", first["user_id"])
	assert.NotNil(t, first["response"])

	second := items[1].(map[string]any)
	assert.Equal(t, "ghost", second["user_id"])
	errObj, ok := second["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "not_found", errObj["code"])
}

func TestScoreUser(t *testing.T) {
	handler := newRouteHandler().On("GET", "/v205/users/bill/score", jsonResponse(200, scoreBody("bill", "0.5")))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "score", "user", "bill")
	require.NoError(t, res.Err, res.ErrOut)
	assert.Equal(t, "GET", handler.lastRequest(t).Method)
}

func TestScoreRescore(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v205/users/bill/score", jsonResponse(200, scoreBody("bill", "0.5")))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "score", "rescore", "bill", "--abuse-types", "account_abuse")
	require.NoError(t, res.Err, res.ErrOut)
	req := handler.lastRequest(t)
	assert.Equal(t, "POST", req.Method)
	assert.Contains(t, req.RawQuery, "abuse_types=account_abuse")
}

func TestScoreGet_RejectsEmptyUserID(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "score", "get", "")
	require.Error(t, res.Err)
	assert.Equal(t, exitUsage, ExitCode(res.Err))
	assert.Empty(t, handler.Requests())
}
