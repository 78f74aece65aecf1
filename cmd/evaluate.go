package cmd

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/api/middleware"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/flow"
)

var (
	evaluateUser   string
	evaluateClient string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run the flow of a config file for a user and client locally",
	Long: `Runs the authentication flow of the given config file against its directory,
without starting a server. Useful to test a flow before deploying it.`,
	Example: `  # Would alice be let through to the "billing" client?
  attrgate evaluate -c config.yaml --user alice --client billing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := f.localRuntime(cmd.Context())
		if err != nil {
			return err
		}

		ec, err := rt.directory.EvaluationContext(evaluateUser, evaluateClient)
		if err != nil {
			return err
		}

		correlationID := xid.New().String()
		ctx := middleware.WithCorrelationID(log.Logger.WithContext(cmd.Context()), correlationID)

		result := rt.flows.GetFlow().Run(ctx, flow.Input{
			CorrelationID: correlationID,
			User:          ec.User,
			ClientID:      ec.ClientID,
			Roles:         ec.Roles,
			Groups:        ec.Groups,
		}, rt.auditor)

		events, _ := rt.auditor.GetRecent(0)
		printResult(ec, result, events)

		if !result.Succeeded() {
			return BeQuietError{}
		}
		return nil
	},
}

func printResult(ec core.EvaluationContext, result flow.Result, events []core.AuditEntry) {
	fmt.Printf("\n%s user %s on client %s\n",
		bold("Flow result for"), bold(ec.User.Username), bold(ec.ClientID))
	fmt.Println(faint("---------------------------------------------------"))

	for _, o := range result.Outcomes {
		icon := red("✖")
		if o.Succeeded {
			icon = green("✔")
		}
		fmt.Printf("%s %s %s\n", icon, bold(o.Alias), faint("("+o.AuthenticatorID+")"))
	}

	if len(events) > 0 {
		fmt.Printf("\n%s\n", bold("Audit events"))
		for _, e := range events {
			fmt.Printf("  %s %s %s\n", faint(e.Execution), red(e.Error), faint(e.ClientID))
		}
	}

	fmt.Println(faint("---------------------------------------------------"))
	if result.Succeeded() {
		fmt.Printf("Decision: %s\n\n", bold(green("allowed")))
		return
	}
	page := "-"
	if result.Page != nil {
		page = fmt.Sprintf("%d %s", result.Page.Status, result.Page.Message)
	}
	fmt.Printf("Decision: %s by '%s' (%s, page: %s)\n\n",
		bold(red("denied")), result.FailedExecution, result.Error, page)
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	f.bindConfigFlag(evaluateCmd.Flags())
	evaluateCmd.Flags().StringVarP(&evaluateUser, "user", "u", "", "Username or user ID")
	evaluateCmd.Flags().StringVar(&evaluateClient, "client", "", "Client ID")

	_ = evaluateCmd.MarkFlagRequired("user")
	_ = evaluateCmd.MarkFlagRequired("client")
}
