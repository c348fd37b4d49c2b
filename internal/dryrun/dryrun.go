// Package dryrun provides dry-run mode functionality for previewing API calls.
package dryrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// ErrSkipped is returned in place of a response when a request was
// previewed instead of sent.
var ErrSkipped = errors.New("dry-run: request not sent")

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview represents a dry-run preview of one request
type Preview struct {
	Operation string
	Method    string
	URL       string
	Details   map[string]any
	Body      string
	Warnings  []string
}

// Write outputs the preview to the writer. Details are printed in key order.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would send %s %s\n", p.Method, p.URL)
	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")

	if p.Operation != "" {
		_, _ = fmt.Fprintf(w, "Operation: %s\n", p.Operation)
	}
	_, _ = fmt.Fprintln(w)

	if len(p.Details) > 0 {
		keys := make([]string, 0, len(p.Details))
		for k := range p.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", k, p.Details[k])
		}
		_, _ = fmt.Fprintln(w)
	}

	if p.Body != "" {
		_, _ = fmt.Fprintf(w, "Body:\n%s\n\n", p.Body)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, _ = fmt.Fprintln(w, "No request sent (dry-run mode)")
}
