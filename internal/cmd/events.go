package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/dryrun"
	"github.com/siftscience/sift-cli/internal/validation"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event", "ev"},
		Short:   "Send events",
	}

	cmd.AddCommand(newEventsTrackCmd())

	return cmd
}

func newEventsTrackCmd() *cobra.Command {
	var (
		opts       api.TrackOptions
		abuseTypes []string
	)

	cmd := &cobra.Command{
		Use:   "track <event> [properties]",
		Short: "Send an event",
		Long: strings.TrimSpace(`
Send one event. Properties are a JSON object given inline, as @file, as @-
for stdin, or piped on stdin. $api_key and $type are added automatically.
`),
		Example: strings.TrimSpace(`
  sift events track '$create_order' '{"$user_id": "bill", "$amount": 1253200.0}'
  sift events track '$login' @login.json --return-score --abuse-types payment_abuse,account_takeover
  cat order.json | sift events track '$create_order' --return-workflow-status
`),
		Args: cobra.RangeArgs(1, 2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			event := args[0]
			// dry-run previews carry the same warning
			if suggestion := validation.SuggestEventName(event); suggestion != "" && !dryrun.IsEnabled(cmd.Context()) {
				printWarning(cmd, "%q is not a reserved event; did you mean %q? Custom events must not start with \"$\".", event, suggestion)
			}

			props, err := readProperties(cmd, optionalArg(args, 1))
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			opts.AbuseTypes = abuseTypes
			resp, err := client.Events().Track(cmd.Context(), event, props, opts)
			return respond(cmd, resp, err)
		}),
	}

	cmd.Flags().BoolVar(&opts.ReturnScore, "return-score", false, "Return the user's scores with the response")
	cmd.Flags().BoolVar(&opts.ReturnAction, "return-action", false, "Return triggered actions")
	cmd.Flags().BoolVar(&opts.ReturnWorkflowStatus, "return-workflow-status", false, "Return the workflow status")
	cmd.Flags().BoolVar(&opts.ReturnRouteInfo, "return-route-info", false, "Return workflow route info")
	cmd.Flags().BoolVar(&opts.ForceWorkflowRun, "force-workflow-run", false, "Run workflows even for non-triggering events")
	cmd.Flags().BoolVar(&opts.IncludeScorePercentiles, "include-score-percentiles", false, "Include score percentiles")
	cmd.Flags().BoolVar(&opts.IncludeWarnings, "include-warnings", false, "Include payload warnings")
	cmd.Flags().StringSliceVar(&abuseTypes, "abuse-types", nil, "Abuse types to score (comma-separated)")
	cmd.Flags().StringVar(&opts.Path, "path", "", "Post to this URL instead of the events endpoint")
	flagAlias(cmd.Flags(), "return-score", "rs")
	flagAlias(cmd.Flags(), "return-workflow-status", "rws")
	flagAlias(cmd.Flags(), "abuse-types", "at")

	return cmd
}
