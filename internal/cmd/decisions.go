package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/validation"
)

func newDecisionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decisions",
		Aliases: []string{"decision", "dec"},
		Short:   "List, read and apply decisions",
		Long:    "Decision endpoints are account-scoped: set --account-id, SIFT_ACCOUNT_ID, or save an account id with 'sift auth login'.",
	}

	cmd.AddCommand(newDecisionsListCmd())
	cmd.AddCommand(newDecisionsGetCmd())
	cmd.AddCommand(newDecisionsApplyCmd())

	return cmd
}

func newDecisionsListCmd() *cobra.Command {
	var (
		entityType string
		opts       api.DecisionListOptions
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the decisions configured for an entity type",
		Example: "  sift decisions list --entity-type order --abuse-types payment_abuse --limit 10",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Decisions().List(cmd.Context(), entityType, opts)
			return respond(cmd, resp, err)
		}),
	}

	cmd.Flags().StringVar(&entityType, "entity-type", "user", "Entity type: "+strings.Join(validation.EntityTypes, "|"))
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of decisions to return")
	cmd.Flags().IntVar(&opts.From, "from", 0, "Offset of the first decision")
	cmd.Flags().StringSliceVar(&opts.AbuseTypes, "abuse-types", nil, "Only decisions for these abuse types (comma-separated)")
	registerStaticCompletions(cmd, "entity-type", validation.EntityTypes)
	flagAlias(cmd.Flags(), "entity-type", "et")
	flagAlias(cmd.Flags(), "abuse-types", "at")

	return cmd
}

// decisionTarget describes one entity kind the get and apply subcommands
// address, with the positional ids each needs.
type decisionTarget struct {
	name     string
	getIDs   []string
	applyIDs []string
	get      func(ctx context.Context, d api.DecisionsService, ids []string) (*api.Response, error)
	apply    func(ctx context.Context, d api.DecisionsService, ids []string, props map[string]any) (*api.Response, error)
}

var decisionTargets = []decisionTarget{
	{
		name:     "user",
		getIDs:   []string{"user_id"},
		applyIDs: []string{"user_id"},
		get: func(ctx context.Context, d api.DecisionsService, ids []string) (*api.Response, error) {
			return d.User(ctx, ids[0], api.CallOptions{})
		},
		apply: func(ctx context.Context, d api.DecisionsService, ids []string, props map[string]any) (*api.Response, error) {
			return d.ApplyUser(ctx, ids[0], props, api.CallOptions{})
		},
	},
	{
		name:     "order",
		getIDs:   []string{"order_id"},
		applyIDs: []string{"user_id", "order_id"},
		get: func(ctx context.Context, d api.DecisionsService, ids []string) (*api.Response, error) {
			return d.Order(ctx, ids[0], api.CallOptions{})
		},
		apply: func(ctx context.Context, d api.DecisionsService, ids []string, props map[string]any) (*api.Response, error) {
			return d.ApplyOrder(ctx, ids[0], ids[1], props, api.CallOptions{})
		},
	},
	{
		name:     "session",
		getIDs:   []string{"user_id", "session_id"},
		applyIDs: []string{"user_id", "session_id"},
		get: func(ctx context.Context, d api.DecisionsService, ids []string) (*api.Response, error) {
			return d.Session(ctx, ids[0], ids[1], api.CallOptions{})
		},
		apply: func(ctx context.Context, d api.DecisionsService, ids []string, props map[string]any) (*api.Response, error) {
			return d.ApplySession(ctx, ids[0], ids[1], props, api.CallOptions{})
		},
	},
	{
		name:     "content",
		getIDs:   []string{"user_id", "content_id"},
		applyIDs: []string{"user_id", "content_id"},
		get: func(ctx context.Context, d api.DecisionsService, ids []string) (*api.Response, error) {
			return d.Content(ctx, ids[0], ids[1], api.CallOptions{})
		},
		apply: func(ctx context.Context, d api.DecisionsService, ids []string, props map[string]any) (*api.Response, error) {
			return d.ApplyContent(ctx, ids[0], ids[1], props, api.CallOptions{})
		},
	},
}

func idsUsage(ids []string) string {
	return "<" + strings.Join(ids, "> <") + ">"
}

func newDecisionsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the decisions currently applied to an entity",
		Example: `  sift decisions get user bill
  sift decisions get order ORDER-1234`,
	}

	for _, target := range decisionTargets {
		cmd.AddCommand(&cobra.Command{
			Use:   target.name + " " + idsUsage(target.getIDs),
			Short: "Show decisions applied to a " + target.name,
			Args:  cobra.ExactArgs(len(target.getIDs)),
			RunE: RunE(func(cmd *cobra.Command, args []string) error {
				client, err := getClient()
				if err != nil {
					return err
				}
				resp, err := target.get(cmd.Context(), client.Decisions(), args)
				return respond(cmd, resp, err)
			}),
		})
	}

	return cmd
}

func newDecisionsApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a decision to an entity",
		Long: strings.TrimSpace(`
Apply a decision. Properties may be given as JSON (inline, @file, @-, or piped)
and are overlaid by --decision-id, --source, --analyst and --description.
source must be one of ` + strings.Join(validation.DecisionSources, ", ") + `;
MANUAL_REVIEW also needs an analyst.
`),
		Example: `  sift decisions apply user bill --decision-id block_user_payment_abuse --source MANUAL_REVIEW --analyst ops@example.com
  sift decisions apply order bill ORDER-1234 @decision.json`,
	}

	for _, target := range decisionTargets {
		cmd.AddCommand(newDecisionApplyTargetCmd(target))
	}

	return cmd
}

func newDecisionApplyTargetCmd(target decisionTarget) *cobra.Command {
	var (
		decisionID  string
		source      string
		analyst     string
		description string
	)

	cmd := &cobra.Command{
		Use:   target.name + " " + idsUsage(target.applyIDs) + " [properties]",
		Short: "Apply a decision to a " + target.name,
		Args:  cobra.RangeArgs(len(target.applyIDs), len(target.applyIDs)+1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			props, err := readProperties(cmd, optionalArg(args, len(target.applyIDs)))
			if err != nil {
				return err
			}
			setMapIfChanged(cmd, "decision-id", "decision_id", props, decisionID)
			setMapIfChanged(cmd, "source", "source", props, strings.ToUpper(source))
			setMapIfChanged(cmd, "analyst", "analyst", props, analyst)
			setMapIfChanged(cmd, "description", "description", props, description)

			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := target.apply(cmd.Context(), client.Decisions(), args[:len(target.applyIDs)], props)
			return respond(cmd, resp, err)
		}),
	}

	cmd.Flags().StringVar(&decisionID, "decision-id", "", "Decision to apply")
	cmd.Flags().StringVar(&source, "source", "", "Decision source: "+strings.Join(validation.DecisionSources, "|"))
	cmd.Flags().StringVar(&analyst, "analyst", "", "Analyst applying the decision (required for MANUAL_REVIEW)")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	registerStaticCompletions(cmd, "source", validation.DecisionSources)
	flagAlias(cmd.Flags(), "decision-id", "did")

	return cmd
}
