package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsAdd_FlagsOverlayProperties(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v205/users/bill/labels", jsonResponse(200, okBody))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "labels", "add", "bill", `{"$description": "from file", "$source": "api"}`,
		"--is-bad", "--abuse-type", "payment_abuse", "--description", "chargeback")
	require.NoError(t, res.Err, res.ErrOut)

	req := handler.lastRequest(t)
	assert.Equal(t, "$label", req.Body["$type"])
	assert.Equal(t, "test-key", req.Body["$api_key"])
	assert.Equal(t, true, req.Body["$is_bad"])
	assert.Equal(t, "payment_abuse", req.Body["$abuse_type"])
	assert.Equal(t, "chargeback", req.Body["$description"])
	assert.Equal(t, "api", req.Body["$source"])
}

func TestLabelsAdd_IsBadFalseIsSent(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v205/users/bill/labels", jsonResponse(200, okBody))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "labels", "add", "bill", "--is-bad=false")
	require.NoError(t, res.Err, res.ErrOut)
	assert.Equal(t, false, handler.lastRequest(t).Body["$is_bad"])
}

func TestLabelsAdd_NoProperties(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "labels", "add", "bill")
	require.Error(t, res.Err)
	assert.Equal(t, exitUsage, ExitCode(res.Err))
	assert.Empty(t, handler.Requests())
}

func TestLabelsRemove(t *testing.T) {
	handler := newRouteHandler().On("DELETE", "/v205/users/bill/labels", noContent)
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "", "labels", "remove", "bill", "--abuse-type", "account_abuse")
	require.NoError(t, res.Err, res.ErrOut)

	req := handler.lastRequest(t)
	assert.Equal(t, "abuse_type=account_abuse", req.RawQuery)
	assert.Equal(t, "test-key", req.User)
	assert.Contains(t, res.Out, "HTTP 204")
}
