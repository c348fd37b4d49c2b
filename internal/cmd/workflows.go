package cmd

import (
	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
)

func newWorkflowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"workflow", "wf"},
		Short:   "Inspect workflow runs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "status <run_id>",
		Short:   "Show the status of a workflow run",
		Example: "  sift workflows status 4zxwibludiaaa --account-id 5f0e...",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Workflows().Status(cmd.Context(), args[0], api.CallOptions{})
			return respond(cmd, resp, err)
		}),
	})

	return cmd
}
