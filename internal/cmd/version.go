package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

// releasesURL is replaced in tests.
var releasesURL = update.DefaultReleasesURL

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var result *update.CheckResult
			if check {
				// a failed check yields nil and never fails the command
				result = update.Checker{URL: releasesURL}.Check(cmd.Context(), version)
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"version":        version,
					"client_version": api.ClientVersion,
					"api_version":    api.DefaultAPIVersion,
				}
				if result != nil {
					payload["update"] = result
				}
				return printJSON(cmd, payload)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sift-cli version %s (API v%s)\n", version, api.DefaultAPIVersion)
			if result != nil && result.UpdateAvailable {
				errOut := cmd.ErrOrStderr()
				_, _ = fmt.Fprintf(errOut, "\nUpdate available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
				_, _ = fmt.Fprintf(errOut, "Download: %s\n", result.UpdateURL)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check for a newer release")
	return cmd
}
