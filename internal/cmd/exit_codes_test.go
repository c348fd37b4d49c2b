package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/config"
	"github.com/siftscience/sift-cli/internal/validation"
)

func TestExitCode(t *testing.T) {
	status := 51

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"help", pflag.ErrHelp, exitOK},
		{"handled keeps code", &handledError{err: errors.New("x"), exitCode: exitNotFound}, exitNotFound},
		{"handled without code", &handledError{err: config.ErrNotConfigured}, exitAuth},
		{"not configured", fmt.Errorf("load: %w", config.ErrNotConfigured), exitAuth},
		{"401", &api.APIError{Kind: api.KindHTTPStatus, StatusCode: 401}, exitAuth},
		{"403", &api.APIError{Kind: api.KindHTTPStatus, StatusCode: 403}, exitForbidden},
		{"404", &api.APIError{Kind: api.KindHTTPStatus, StatusCode: 404}, exitNotFound},
		{"429", &api.APIError{Kind: api.KindHTTPStatus, StatusCode: 429}, exitRateLimited},
		{"500", &api.APIError{Kind: api.KindHTTPStatus, StatusCode: 500, APIStatus: &status}, exitServer},
		{"400", &api.APIError{Kind: api.KindHTTPStatus, StatusCode: 400}, exitUsage},
		{"malformed", &api.APIError{Kind: api.KindMalformedResponse}, exitServer},
		{"transport", &api.APIError{Kind: api.KindTransport, Err: errors.New("connection refused")}, exitNetwork},
		{"timeout", &api.APIError{Kind: api.KindTransport, Err: context.DeadlineExceeded}, exitNetwork},
		{"soft failure", api.NewStructuredError(api.ErrSoftFailure, "api status 51"), exitSoftFailure},
		{"validation", &validation.Error{Field: "entity_type", Message: "bad"}, exitUsage},
		{"usage string", errors.New(`unknown command "x" for "sift"`), exitUsage},
		{"required flag", errors.New("--user-id is required"), exitUsage},
		{"url error", &url.Error{Op: "Get", URL: "https://api.sift.com", Err: errors.New("eof")}, exitNetwork},
		{"canceled", context.Canceled, exitNetwork},
		{"other", errors.New("something odd"), exitGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestHandledErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &handledError{err: inner, exitCode: exitGeneric}

	assert.ErrorIs(t, err, errAlreadyHandled)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "inner", err.Error())
}
