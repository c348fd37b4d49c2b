package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/dryrun"
	"github.com/siftscience/sift-cli/internal/iocontext"
)

// envelopeView is the JSON shape of one API reply.
type envelopeView struct {
	OK              bool           `json:"ok"`
	URL             string         `json:"url"`
	HTTPStatusCode  int            `json:"http_status_code"`
	APIStatus       *int           `json:"api_status,omitempty"`
	APIErrorMessage *string        `json:"api_error_message,omitempty"`
	RequestID       string         `json:"request_id,omitempty"`
	Body            map[string]any `json:"body,omitempty"`
	Request         map[string]any `json:"request,omitempty"`
}

func viewOf(resp *api.Response) envelopeView {
	return envelopeView{
		OK:              resp.IsOK(),
		URL:             resp.URL,
		HTTPStatusCode:  resp.HTTPStatusCode,
		APIStatus:       resp.APIStatus,
		APIErrorMessage: resp.APIErrorMessage,
		RequestID:       resp.RequestID,
		Body:            resp.Body,
		Request:         resp.Request,
	}
}

// respond finishes a single-call command: a dry run prints nothing more,
// errors propagate, and replies are rendered. A soft failure is rendered
// first and then returned as an error so the exit code reflects it.
func respond(cmd *cobra.Command, resp *api.Response, err error) error {
	if errors.Is(err, dryrun.ErrSkipped) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := printResponse(cmd, resp); err != nil {
		return err
	}
	return softFailure(resp)
}

func printResponse(cmd *cobra.Command, resp *api.Response) error {
	f := newFormatter(cmd)
	if f.Structured() {
		return f.Output(viewOf(resp))
	}

	out := iocontext.GetIO(cmd.Context()).Out
	_, _ = fmt.Fprintln(out, statusLine(resp))
	fields := make(map[string]any, len(resp.Body))
	for k, v := range resp.Body {
		if k == "status" || k == "error_message" {
			continue
		}
		fields[k] = textValue(v)
	}
	if len(fields) == 0 {
		return nil
	}
	return f.KeyValues(fields)
}

func statusLine(resp *api.Response) string {
	line := fmt.Sprintf("HTTP %d", resp.HTTPStatusCode)
	if resp.APIStatus != nil {
		line += fmt.Sprintf("  status %d", *resp.APIStatus)
	}
	if resp.APIErrorMessage != nil && *resp.APIErrorMessage != "" {
		line += fmt.Sprintf("  %s", *resp.APIErrorMessage)
	}
	return line
}

// textValue renders nested objects and arrays as compact JSON.
func textValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(data)
	default:
		return v
	}
}

// softFailure returns a soft_failure error when a 2xx reply is not OK.
func softFailure(resp *api.Response) error {
	if resp.IsOK() {
		return nil
	}
	var message string
	ctx := map[string]any{"url": resp.URL, "http_status_code": resp.HTTPStatusCode}
	switch {
	case resp.APIStatus != nil:
		message = fmt.Sprintf("api status %d", *resp.APIStatus)
		ctx["api_status"] = *resp.APIStatus
		if resp.APIErrorMessage != nil && *resp.APIErrorMessage != "" {
			message += ": " + *resp.APIErrorMessage
			ctx["api_error_message"] = *resp.APIErrorMessage
		}
	default:
		message = fmt.Sprintf("http status %d without an api status", resp.HTTPStatusCode)
	}
	if resp.RequestID != "" {
		ctx["request_id"] = resp.RequestID
	}
	se := api.NewStructuredError(api.ErrSoftFailure, message)
	se.Context = ctx
	return se
}

// scoreSummary renders body.scores as "abuse_type=score" pairs.
func scoreSummary(body map[string]any) string {
	scores, ok := body["scores"].(map[string]any)
	if !ok || len(scores) == 0 {
		return "-"
	}
	types := make([]string, 0, len(scores))
	for k := range scores {
		types = append(types, k)
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, t := range types {
		entry, _ := scores[t].(map[string]any)
		parts = append(parts, fmt.Sprintf("%s=%v", t, entry["score"]))
	}
	return strings.Join(parts, ",")
}
