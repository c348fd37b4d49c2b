package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/validation"
)

func newVerificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verification",
		Aliases: []string{"verify", "ver"},
		Short:   "Send and check one-time passcodes",
	}

	cmd.AddCommand(newVerificationSendCmd())
	cmd.AddCommand(newVerificationResendCmd())
	cmd.AddCommand(newVerificationCheckCmd())

	return cmd
}

func newVerificationSendCmd() *cobra.Command {
	var (
		userID           string
		sendTo           string
		verificationType string
		sessionID        string
		brandName        string
		language         string
	)

	cmd := &cobra.Command{
		Use:   "send [properties]",
		Short: "Send a one-time passcode to the user",
		Long: strings.TrimSpace(`
Start a verification. The payload needs $user_id, $send_to, $verification_type
and an $event mapping holding at least $session_id. Flags overlay the JSON
properties, which may be given inline, as @file, as @-, or piped.
`),
		Example: `  sift verification send --user-id bill --send-to bill@example.com --verification-type '$email' --session-id sess-1`,
		Args:    cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			props, err := readProperties(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			setMapIfChanged(cmd, "user-id", validation.KeyUserID, props, userID)
			setMapIfChanged(cmd, "send-to", validation.KeySendTo, props, sendTo)
			setMapIfChanged(cmd, "verification-type", validation.KeyVerificationType, props, verificationType)
			setMapIfChanged(cmd, "brand-name", "$brand_name", props, brandName)
			setMapIfChanged(cmd, "language", "$language", props, language)
			if flagOrAliasChanged(cmd, "session-id") {
				event, ok := validation.AsMapping(props[validation.KeyEvent])
				if !ok || event == nil {
					event = map[string]any{}
				}
				event[validation.KeySessionID] = sessionID
				props[validation.KeyEvent] = event
			}

			return callVerification(cmd, func(ctx context.Context, v api.VerificationService) (*api.Response, error) {
				return v.Send(ctx, props, api.CallOptions{})
			})
		}),
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User to verify ($user_id)")
	cmd.Flags().StringVar(&sendTo, "send-to", "", "Email address or phone number ($send_to)")
	cmd.Flags().StringVar(&verificationType, "verification-type", "", "Delivery channel, e.g. $email or $sms ($verification_type)")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session of the triggering event ($event.$session_id)")
	cmd.Flags().StringVar(&brandName, "brand-name", "", "Brand shown in the passcode message ($brand_name)")
	cmd.Flags().StringVar(&language, "language", "", "Message language ($language)")
	registerStaticCompletions(cmd, "verification-type", []string{"$email", "$sms"})
	flagAlias(cmd.Flags(), "user-id", "uid")
	flagAlias(cmd.Flags(), "verification-type", "vt")

	return cmd
}

func newVerificationResendCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:     "resend [properties]",
		Short:   "Send a new passcode for the pending verification",
		Example: "  sift verification resend --user-id bill",
		Args:    cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			props, err := readProperties(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			setMapIfChanged(cmd, "user-id", validation.KeyUserID, props, userID)

			return callVerification(cmd, func(ctx context.Context, v api.VerificationService) (*api.Response, error) {
				return v.Resend(ctx, props, api.CallOptions{})
			})
		}),
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User to verify ($user_id)")
	flagAlias(cmd.Flags(), "user-id", "uid")

	return cmd
}

func newVerificationCheckCmd() *cobra.Command {
	var (
		userID string
		code   string
	)

	cmd := &cobra.Command{
		Use:     "check [properties]",
		Short:   "Check the passcode the user entered",
		Example: "  sift verification check --user-id bill --code 123456",
		Args:    cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			props, err := readProperties(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			setMapIfChanged(cmd, "user-id", validation.KeyUserID, props, userID)
			setMapIfChanged(cmd, "code", validation.KeyCode, props, code)

			return callVerification(cmd, func(ctx context.Context, v api.VerificationService) (*api.Response, error) {
				return v.Check(ctx, props, api.CallOptions{})
			})
		}),
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User to verify ($user_id)")
	cmd.Flags().StringVar(&code, "code", "", "Passcode entered by the user ($code)")
	flagAlias(cmd.Flags(), "user-id", "uid")

	return cmd
}

func callVerification(cmd *cobra.Command, call func(context.Context, api.VerificationService) (*api.Response, error)) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	resp, err := call(cmd.Context(), client.Verification())
	return respond(cmd, resp, err)
}
