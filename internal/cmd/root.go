package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/config"
	"github.com/siftscience/sift-cli/internal/debug"
	"github.com/siftscience/sift-cli/internal/dryrun"
	"github.com/siftscience/sift-cli/internal/filter"
	"github.com/siftscience/sift-cli/internal/iocontext"
	"github.com/siftscience/sift-cli/internal/metrics"
	"github.com/siftscience/sift-cli/internal/outfmt"
	"github.com/siftscience/sift-cli/internal/traces"
)

const (
	envOutput       = "SIFT_OUTPUT"
	envMetricsFile  = "SIFT_METRICS_FILE"
	envOTelEndpoint = "SIFT_OTEL_ENDPOINT"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output         string
	JSON           bool
	Query          string
	JQ             string
	Template       string
	Compact        bool
	Quiet          bool
	Debug          bool
	LogFormat      string
	DryRun         bool
	Timeout        time.Duration
	ConnectTimeout time.Duration
	APIVersion     string
	BaseURL        string
	AccountID      string
	APIKey         string
	Profile        string
	MetricsFile    string
	OTelEndpoint   string
}

// flags holds the global command flags. This is package-level mutable state
// that MUST be reset at the start of every Execute() call. Tests depend on
// this reset to get clean state; any code that reads flags outside of a
// command's RunE is reading stale data from the previous Execute() call.
var flags = defaultRootFlags()

func defaultRootFlags() rootFlags {
	output := strings.TrimSpace(os.Getenv(envOutput))
	if output == "" {
		output = "text"
	}
	return rootFlags{
		Output:       output,
		LogFormat:    debug.FormatText,
		Timeout:      api.DefaultTimeout,
		MetricsFile:  strings.TrimSpace(os.Getenv(envMetricsFile)),
		OTelEndpoint: strings.TrimSpace(os.Getenv(envOTelEndpoint)),
	}
}

// getJQQuery returns the jq query from --jq or --query flags.
// --jq takes precedence over --query for consistency with gh CLI.
func getJQQuery() string {
	if flags.JQ != "" {
		return flags.JQ
	}
	return flags.Query
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// ~/.sift/.env never overrides exported variables, so it must run before
	// the env-driven flag defaults are computed.
	config.LoadDefaultEnvFile()
	flags = defaultRootFlags()

	var shutdownTracing func(context.Context) error

	root := &cobra.Command{
		Use:                "sift",
		Short:              "CLI for the Sift fraud detection API",
		Long:               "Send events, read scores, apply decisions and manage merchants through the Sift REST API.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // We provide our own did-you-mean via enhanceUnknownError
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			query := getJQQuery()
			if (query != "" || flags.Template != "") && flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
				return fmt.Errorf("--query/--jq/--template require --output json (or --json)")
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)

			if query != "" {
				if _, err := filter.Compile(query); err != nil {
					return fmt.Errorf("invalid --query: %w", err)
				}
				ctx = outfmt.WithQuery(ctx, query)
			}
			if flags.Template != "" {
				tmpl, err := loadTemplate(flags.Template)
				if err != nil {
					return err
				}
				if _, err := outfmt.ParseTemplate(tmpl); err != nil {
					return err
				}
				ctx = outfmt.WithTemplate(ctx, tmpl)
			}

			if flags.Timeout < 0 || flags.ConnectTimeout < 0 {
				return fmt.Errorf("--timeout and --connect-timeout must be >= 0")
			}

			// Quiet only drops text output; structured output is the point
			// of the call when it was asked for.
			streams := *iocontext.GetIO(ctx)
			if flags.Quiet && !outfmt.IsJSON(ctx) {
				streams.Out = io.Discard
			}
			ctx = iocontext.WithIO(ctx, &streams)
			cmd.SetOut(streams.Out)
			cmd.SetErr(streams.ErrOut)

			debug.SetupLogger(streams.ErrOut, flags.Debug, flags.LogFormat)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			shutdown, err := traces.Init(ctx, flags.OTelEndpoint, version, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to start tracing: %w", err)
			}
			shutdownTracing = shutdown

			cmd.SetContext(ctx)
			return nil
		},
	}

	streams := iocontext.GetIO(ctx)
	root.SetContext(ctx)
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json (env SIFT_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.StringVar(&flags.Template, "template", "", "Go template string (or @path) to render JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress text output")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text|json")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print requests instead of sending them")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Per-request read timeout (e.g. 2s, 500ms)")
	pf.DurationVar(&flags.ConnectTimeout, "connect-timeout", 0, "Connect timeout, added to --timeout for the overall deadline")
	pf.StringVar(&flags.APIVersion, "api-version", "", "REST API version (default "+api.DefaultAPIVersion+")")
	pf.StringVar(&flags.BaseURL, "base-url", "", "API base URL (env SIFT_API_URL)")
	pf.StringVar(&flags.AccountID, "account-id", "", "Account id for decisions and merchants (env SIFT_ACCOUNT_ID)")
	pf.StringVar(&flags.APIKey, "api-key", "", "API key (env SIFT_API_KEY)")
	pf.StringVar(&flags.Profile, "profile", "", "Credential profile (env SIFT_PROFILE)")
	pf.StringVar(&flags.MetricsFile, "metrics-file", flags.MetricsFile, "Write Prometheus metrics to this file on exit (env SIFT_METRICS_FILE)")
	pf.StringVar(&flags.OTelEndpoint, "otel-endpoint", flags.OTelEndpoint, "OTLP gRPC endpoint for traces (env SIFT_OTEL_ENDPOINT)")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "template", "tpl")
	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "timeout", "to")
	flagAlias(pf, "account-id", "aid")
	flagAlias(pf, "debug", "dbg")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newEventsCmd())
	root.AddCommand(newScoreCmd())
	root.AddCommand(newLabelsCmd())
	root.AddCommand(newDecisionsCmd())
	root.AddCommand(newWorkflowsCmd())
	root.AddCommand(newVerificationCmd())
	root.AddCommand(newMerchantsCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	finish(ctx, shutdownTracing)
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			enhanced := enhanceUnknownError(err, root, targetCmd)
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanced)
		}
		return err
	}
	return nil
}

// finish flushes traces and writes the metrics textfile. Failures are logged,
// never returned: the command's own result decides the exit code.
func finish(ctx context.Context, shutdownTracing func(context.Context) error) {
	if shutdownTracing != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
		cancel()
	}
	if flags.MetricsFile != "" {
		if err := metrics.WriteTextfile(flags.MetricsFile); err != nil {
			slog.Warn("failed to write metrics file", "path", flags.MetricsFile, "error", err)
		}
	}
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
// targetCmd is the command Cobra resolved before the error (may be root itself).
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		unknown := extractQuoted(msg)
		if unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "flag provided but not defined") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown != "" {
			seen := make(map[string]bool)
			var flagNames []string
			addFlags := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Hidden {
						return
					}
					name := "--" + f.Name
					if !seen[name] {
						seen[name] = true
						flagNames = append(flagNames, name)
					}
					if f.Shorthand != "" {
						short := "-" + f.Shorthand
						if !seen[short] {
							seen[short] = true
							flagNames = append(flagNames, short)
						}
					}
				})
			}
			helpCmd := "sift --help"
			if targetCmd != nil {
				addFlags(targetCmd.Flags())
				addFlags(targetCmd.InheritedFlags())
				if commandPath := strings.TrimSpace(targetCmd.CommandPath()); commandPath != "" {
					helpCmd = commandPath + " --help"
				}
			} else {
				addFlags(root.PersistentFlags())
			}
			if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// shorthand errors look like "unknown shorthand flag: 'a' in -a"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		rest := strings.TrimSpace(s[idx+1:])
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rest = rest[:end]
		}
		rest = strings.TrimRight(rest, ".,;:!?\"'")
		if strings.HasPrefix(rest, "-") && len(rest) > 1 {
			return rest
		}
		return ""
	}
	rest := s[idx:]
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimRight(rest[:end], ".,;:!?\"'")
}

func loadTemplate(value string) (string, error) {
	if strings.HasPrefix(value, "@") {
		path := strings.TrimPrefix(value, "@")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read template file: %w", err)
		}
		return string(data), nil
	}
	return value, nil
}
