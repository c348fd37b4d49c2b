package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigProfilesCmd())

	return cmd
}

func newConfigProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage credential profiles",
	}

	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesUseCmd())
	cmd.AddCommand(newProfilesShowCmd())
	cmd.AddCommand(newProfilesDeleteCmd())

	return cmd
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured profiles",
		Example: "sift config profiles list",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			if isJSON(cmd) {
				if profiles == nil {
					profiles = []string{}
				}
				return printJSON(cmd, map[string]any{
					"current":  current,
					"profiles": profiles,
				})
			}

			f := newFormatter(cmd)
			if len(profiles) == 0 {
				f.Empty("No profiles configured. Run 'sift auth login' to add one.")
				return nil
			}

			f.StartTable([]string{"CURRENT", "PROFILE", "ACCOUNT_ID", "BASE_URL"})
			for _, name := range profiles {
				marker := ""
				if name == current {
					marker = "*"
				}
				accountID, baseURL := "-", "-"
				if p, err := config.LoadProfile(name); err == nil {
					if p.AccountID != "" {
						accountID = p.AccountID
					}
					if p.BaseURL != "" {
						baseURL = p.BaseURL
					}
				}
				f.Row(marker, name, accountID, baseURL)
			}
			return f.EndTable()
		}),
	}
}

func newProfilesUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Short:   "Switch active profile",
		Example: "sift config profiles use staging",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if _, err := loadNamedProfile(name); err != nil {
				return err
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			printAction(cmd, "Current", "profile", name, "")
			return nil
		}),
	}
}

func newProfilesShowCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Show profile details",
		Example: "sift config profiles show --name staging",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				name = current
			}

			profile, err := loadNamedProfile(name)
			if err != nil {
				return err
			}

			view := profileView(name, profile)
			if isJSON(cmd) {
				return printJSON(cmd, view)
			}
			return newFormatter(cmd).KeyValues(view)
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (defaults to current)")
	flagAlias(cmd.Flags(), "name", "nm")

	return cmd
}

func newProfilesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile",
		Example: "sift config profiles delete staging",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := config.DeleteProfile(name); err != nil {
				return err
			}
			printAction(cmd, "Deleted", "profile", name, "")
			return nil
		}),
	}
}

// loadNamedProfile reports a missing profile by name rather than as
// ErrNotConfigured.
func loadNamedProfile(name string) (config.Profile, error) {
	profile, err := config.LoadProfile(name)
	if errors.Is(err, config.ErrNotConfigured) {
		return config.Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return profile, err
}
