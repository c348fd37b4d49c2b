package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/dryrun"
	"github.com/siftscience/sift-cli/internal/iocontext"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "score",
		Aliases: []string{"scores", "sc"},
		Short:   "Read and recompute user scores",
	}

	cmd.AddCommand(newScoreGetCmd())
	cmd.AddCommand(newScoreUserCmd())
	cmd.AddCommand(newScoreRescoreCmd())

	return cmd
}

func addScoreFlags(cmd *cobra.Command, opts *api.ScoreOptions) {
	cmd.Flags().StringSliceVar(&opts.AbuseTypes, "abuse-types", nil, "Abuse types to return (comma-separated)")
	cmd.Flags().BoolVar(&opts.IncludeScorePercentiles, "include-score-percentiles", false, "Include score percentiles")
	flagAlias(cmd.Flags(), "abuse-types", "at")
}

// scoreLookup is one row of a multi-user score lookup.
type scoreLookup struct {
	UserID   string               `json:"user_id"`
	Response *envelopeView        `json:"response,omitempty"`
	Error    *api.StructuredError `json:"error,omitempty"`
}

func newScoreGetCmd() *cobra.Command {
	var (
		opts        api.ScoreOptions
		concurrency int
		progress    bool
	)

	cmd := &cobra.Command{
		Use:   "get <user_id>...",
		Short: "Compute fresh scores for one or more users",
		Example: `  sift score get bill
  sift score get bill alice carol --abuse-types payment_abuse -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				resp, err := client.Scores().Score(cmd.Context(), args[0], opts)
				return respond(cmd, resp, err)
			}

			var progressOut io.Writer
			if progress && !isJSON(cmd) && !flags.Quiet {
				progressOut = iocontext.GetIO(cmd.Context()).ErrOut
			}
			results := runBulkOperation(cmd.Context(), args, int64(concurrency), progressOut,
				func(ctx context.Context, userID string) (*api.Response, error) {
					return client.Scores().Score(ctx, userID, opts)
				})
			if dryrun.IsEnabled(cmd.Context()) {
				return nil
			}
			return printScoreLookups(cmd, results)
		}),
	}

	addScoreFlags(cmd, &opts)
	cmd.Flags().IntVar(&concurrency, "concurrency", DefaultConcurrency, "Parallel lookups when several users are given")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress on stderr")
	flagAlias(cmd.Flags(), "concurrency", "cc")

	return cmd
}

func printScoreLookups(cmd *cobra.Command, results []BulkResult[*api.Response]) error {
	var firstErr error
	lookups := make([]scoreLookup, 0, len(results))
	for i := range results {
		r := &results[i]
		if r.Error == nil {
			r.Error = softFailure(r.Data)
		}
		row := scoreLookup{UserID: r.ID}
		if r.Data != nil {
			view := viewOf(r.Data)
			row.Response = &view
		}
		if r.Error != nil {
			row.Error = api.StructuredErrorFromError(r.Error)
			if firstErr == nil {
				firstErr = r.Error
			}
		}
		lookups = append(lookups, row)
	}

	f := newFormatter(cmd)
	if f.Structured() {
		if err := f.Output(lookups); err != nil {
			return err
		}
	} else {
		f.StartTable([]string{"USER_ID", "HTTP", "STATUS", "SCORES"})
		for _, row := range lookups {
			switch {
			case row.Response != nil:
				status := "-"
				if row.Response.APIStatus != nil {
					status = strconv.Itoa(*row.Response.APIStatus)
				}
				f.Row(row.UserID, strconv.Itoa(row.Response.HTTPStatusCode), status, scoreSummary(row.Response.Body))
			default:
				f.Row(row.UserID, "-", "-", "error: "+row.Error.Message)
			}
		}
		if err := f.EndTable(); err != nil {
			return err
		}
	}

	if _, failed := countResults(results); failed > 0 {
		return fmt.Errorf("%d of %d score lookups failed: %w", failed, len(results), firstErr)
	}
	return nil
}

func newScoreUserCmd() *cobra.Command {
	var opts api.ScoreOptions

	cmd := &cobra.Command{
		Use:     "user <user_id>",
		Short:   "Show the latest stored score without recomputing it",
		Example: "  sift score user bill --abuse-types payment_abuse",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Scores().UserScore(cmd.Context(), args[0], opts)
			return respond(cmd, resp, err)
		}),
	}

	addScoreFlags(cmd, &opts)
	return cmd
}

func newScoreRescoreCmd() *cobra.Command {
	var opts api.RescoreOptions

	cmd := &cobra.Command{
		Use:     "rescore <user_id>",
		Short:   "Recompute and store a user's score",
		Example: "  sift score rescore bill --abuse-types payment_abuse,promotion_abuse",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Scores().Rescore(cmd.Context(), args[0], opts)
			return respond(cmd, resp, err)
		}),
	}

	cmd.Flags().StringSliceVar(&opts.AbuseTypes, "abuse-types", nil, "Abuse types to rescore (comma-separated)")
	flagAlias(cmd.Flags(), "abuse-types", "at")
	return cmd
}
