package cmd

import (
	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
)

func newLabelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "labels",
		Aliases: []string{"label", "lb"},
		Short:   "Label and unlabel users",
	}

	cmd.AddCommand(newLabelsAddCmd())
	cmd.AddCommand(newLabelsRemoveCmd())

	return cmd
}

func newLabelsAddCmd() *cobra.Command {
	var (
		isBad       bool
		abuseType   string
		description string
		source      string
		analyst     string
	)

	cmd := &cobra.Command{
		Use:   "add <user_id> [properties]",
		Short: "Label a user as good or bad",
		Example: `  sift labels add bill --is-bad --abuse-type payment_abuse --description "chargeback" --analyst ops@example.com
  sift labels add bill @label.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			props, err := readProperties(cmd, optionalArg(args, 1))
			if err != nil {
				return err
			}
			setMapIfChanged(cmd, "is-bad", "$is_bad", props, isBad)
			setMapIfChanged(cmd, "abuse-type", "$abuse_type", props, abuseType)
			setMapIfChanged(cmd, "description", "$description", props, description)
			setMapIfChanged(cmd, "source", "$source", props, source)
			setMapIfChanged(cmd, "analyst", "$analyst", props, analyst)

			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Labels().Label(cmd.Context(), args[0], props, api.CallOptions{})
			return respond(cmd, resp, err)
		}),
	}

	cmd.Flags().BoolVar(&isBad, "is-bad", false, "Label the user as bad ($is_bad)")
	cmd.Flags().StringVar(&abuseType, "abuse-type", "", "Abuse type the label applies to")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	cmd.Flags().StringVar(&source, "source", "", "Where the label came from")
	cmd.Flags().StringVar(&analyst, "analyst", "", "Analyst who applied the label")
	flagAlias(cmd.Flags(), "abuse-type", "at")

	return cmd
}

func newLabelsRemoveCmd() *cobra.Command {
	var opts api.UnlabelOptions

	cmd := &cobra.Command{
		Use:     "remove <user_id>",
		Aliases: []string{"rm", "unlabel"},
		Short:   "Remove a user's labels",
		Example: "  sift labels remove bill --abuse-type payment_abuse",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Labels().Unlabel(cmd.Context(), args[0], opts)
			return respond(cmd, resp, err)
		}),
	}

	cmd.Flags().StringVar(&opts.AbuseType, "abuse-type", "", "Only remove labels for this abuse type")
	flagAlias(cmd.Flags(), "abuse-type", "at")

	return cmd
}
