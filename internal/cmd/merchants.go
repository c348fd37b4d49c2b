package cmd

import (
	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
)

func newMerchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "merchants",
		Aliases: []string{"merchant", "mer"},
		Short:   "Manage PSP merchant profiles",
		Long:    "Merchant endpoints are account-scoped: set --account-id, SIFT_ACCOUNT_ID, or save an account id with 'sift auth login'.",
	}

	cmd.AddCommand(newMerchantsListCmd())
	cmd.AddCommand(newMerchantsGetCmd())
	cmd.AddCommand(newMerchantsCreateCmd())
	cmd.AddCommand(newMerchantsUpdateCmd())

	return cmd
}

func newMerchantsListCmd() *cobra.Command {
	var opts api.MerchantListOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List merchant profiles",
		Long:    "List one batch of merchant profiles. Pass the next_ref token of a reply as --batch-token to fetch the following batch.",
		Example: "  sift merchants list --batch-size 50",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Merchants().List(cmd.Context(), opts)
			return respond(cmd, resp, err)
		}),
	}

	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 0, "Number of merchants per batch")
	cmd.Flags().StringVar(&opts.BatchToken, "batch-token", "", "Continuation token from a previous batch")
	flagAlias(cmd.Flags(), "batch-size", "bs")
	flagAlias(cmd.Flags(), "batch-token", "bt")

	return cmd
}

func newMerchantsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <merchant_id>",
		Aliases: []string{"show"},
		Short:   "Show one merchant profile",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Merchants().Get(cmd.Context(), args[0], api.CallOptions{})
			return respond(cmd, resp, err)
		}),
	}
}

func newMerchantsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create [properties]",
		Short:   "Create a merchant profile",
		Example: "  sift merchants create @merchant.json",
		Args:    cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			props, err := readProperties(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Merchants().Create(cmd.Context(), props, api.CallOptions{})
			return respond(cmd, resp, err)
		}),
	}
}

func newMerchantsUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update <merchant_id> [properties]",
		Short:   "Replace a merchant profile",
		Example: "  cat merchant.json | sift merchants update merchant-1",
		Args:    cobra.RangeArgs(1, 2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			props, err := readProperties(cmd, optionalArg(args, 1))
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Merchants().Update(cmd.Context(), args[0], props, api.CallOptions{})
			return respond(cmd, resp, err)
		}),
	}
}
