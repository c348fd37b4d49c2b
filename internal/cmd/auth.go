package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/config"
	"github.com/siftscience/sift-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage authentication credentials",
		Long:    "Store Sift API keys and account ids in your OS keychain, one profile per account.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command. It reuses the global
// --api-key, --account-id, --base-url and --profile flags.
func newAuthLoginCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save credentials to the keychain",
		Long: strings.TrimSpace(`
Save a Sift API key to your OS keychain.

The key is read from --api-key, from the first line of piped stdin, or from
SIFT_API_KEY in an --env-file. The account id is needed only for decisions
and merchants.
`),
		Example: strings.TrimSpace(`
  # Save the default profile
  sift auth login --api-key YOUR_API_KEY --account-id YOUR_ACCOUNT_ID

  # Read the key from stdin so it stays out of shell history
  pass show sift/prod | sift auth login --profile prod

  # Load SIFT_* values from a .env file
  sift auth login --env-file .env
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var profile config.Profile
			name := strings.TrimSpace(flags.Profile)

			if envFile != "" {
				vars, err := config.ReadEnvFile(envFile)
				if err != nil {
					return err
				}
				profile, err = config.ProfileFromEnvFile(vars)
				if err != nil {
					return err
				}
				if name == "" {
					name = strings.TrimSpace(vars[config.EnvProfile])
				}
			}

			if flags.APIKey != "" {
				profile.APIKey = strings.TrimSpace(flags.APIKey)
			}
			if flags.AccountID != "" {
				profile.AccountID = strings.TrimSpace(flags.AccountID)
			}
			if flags.BaseURL != "" {
				profile.BaseURL = strings.TrimSuffix(strings.TrimSpace(flags.BaseURL), "/")
			}
			if profile.APIKey == "" {
				key, err := readSecretLine(cmd)
				if err != nil {
					return err
				}
				profile.APIKey = key
			}

			if profile.APIKey == "" {
				return fmt.Errorf("--api-key is required (or pipe the key on stdin, or use --env-file)")
			}
			if profile.BaseURL != "" {
				if err := validation.ValidateBaseURL(profile.BaseURL); err != nil {
					return err
				}
			}

			if err := config.SaveProfile(name, profile); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}
			if name == "" {
				name = "default"
			}

			if isJSON(cmd) {
				return printJSON(cmd, profileView(name, profile))
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Credentials saved.")
			_, _ = fmt.Fprintf(out, "  Profile: %s\n", name)
			_, _ = fmt.Fprintf(out, "  API Key: %s\n", config.MaskKey(profile.APIKey))
			if profile.AccountID != "" {
				_, _ = fmt.Fprintf(out, "  Account ID: %s\n", profile.AccountID)
			}
			if profile.BaseURL != "" {
				_, _ = fmt.Fprintf(out, "  Base URL: %s\n", profile.BaseURL)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Load SIFT_* (and SIFT_KEYRING_*) values from a .env file")
	flagAlias(cmd.Flags(), "env-file", "env")

	return cmd
}

func profileView(name string, p config.Profile) map[string]any {
	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = api.DefaultBaseURL
	}
	return map[string]any{
		"profile":    name,
		"api_key":    config.MaskKey(p.APIKey),
		"account_id": p.AccountID,
		"base_url":   baseURL,
	}
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the credentials commands will use",
		Long:  "Resolve credentials the same way every API command does (profile, then SIFT_* environment, then flags) and show them with the key masked.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := newClientFactory().resolve()
			if errors.Is(err, config.ErrNotConfigured) {
				if isJSON(cmd) {
					return printJSON(cmd, map[string]any{
						"authenticated": false,
						"message":       "Not authenticated. Run 'sift auth login' or set SIFT_API_KEY.",
					})
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated.")
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'sift auth login' or set SIFT_API_KEY.")
				return nil
			}
			if err != nil {
				return err
			}

			source := "keychain"
			if strings.TrimSpace(os.Getenv(config.EnvAPIKey)) != "" {
				source = "env"
			}
			if flags.APIKey != "" {
				source = "flag"
			}

			view := profileView(cfg.Profile, config.Profile{APIKey: cfg.APIKey, AccountID: cfg.AccountID, BaseURL: cfg.BaseURL})
			view["authenticated"] = true
			view["source"] = source
			if isJSON(cmd) {
				return printJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Authenticated")
			if cfg.Profile != "" && source == "keychain" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", cfg.Profile)
			}
			_, _ = fmt.Fprintf(out, "  API Key: %s\n", view["api_key"])
			if cfg.AccountID != "" {
				_, _ = fmt.Fprintf(out, "  Account ID: %s\n", cfg.AccountID)
			} else {
				_, _ = fmt.Fprintln(out, "  Account ID: (not set; needed for decisions and merchants)")
			}
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", view["base_url"])
			_, _ = fmt.Fprintf(out, "  Source: %s\n", source)
			return nil
		}),
	}
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Remove credentials from the keychain",
		Long:    "Delete the stored credentials of --profile, or of the current profile.",
		Example: "sift auth logout --profile staging",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			name := strings.TrimSpace(flags.Profile)
			if name == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				name = current
			}

			if _, err := config.LoadProfile(name); errors.Is(err, config.ErrNotConfigured) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
				return nil
			}
			if err := config.DeleteProfile(name); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"removed": name})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed.\n", name)
			return nil
		}),
	}
}
