package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/core"
)

var (
	whyUser      string
	whyClient    string
	whyExecution string
)

var whyCmd = &cobra.Command{
	Use:   "why",
	Short: "Explain why a user is let through to a client (or not)",
	Long: `Asks the server to evaluate its flow for a user and client and returns a detailed
trace: the resolved attribute name, every source consulted and the bearer the value came from.

Note: This command requires an attrgate server to be running and reachable.
Also note that you need to be authenticated as admin to use this command.`,
	Example: `  # Why is alice denied access to billing?
  attrgate why --user alice --client billing

  # Only show the 'gate' execution
  attrgate why --user alice --client billing --execution gate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		trace, correlation, err := cli.Explain(cmd.Context(), whyUser, whyClient)
		if err != nil {
			return logError(err, correlation, "failed to explain evaluation")
		}

		printTrace(trace)
		return nil
	},
}

func printTrace(trace *core.EvaluationTrace) {
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	username := "(unknown)"
	if trace.User != nil {
		username = trace.User.Username
	}
	fmt.Printf("\n%s for user %s on client %s\n",
		bold("Evaluation Trace"), bold(username), bold(trace.ClientID))
	fmt.Println(faint("---------------------------------------------------"))

	for _, et := range trace.Executions {
		if whyExecution != "" && et.Alias != whyExecution {
			continue
		}

		icon := red("✖")
		switch {
		case et.Requirement == core.RequirementDisabled, et.NotReached:
			icon = faint("-")
		case et.Allowed:
			icon = green("✔")
		}

		fmt.Printf("%s %s %s %s\n", icon, bold(et.Alias), faint(et.Authenticator), cyan(string(et.Requirement)))
		if et.ResolvedName != "" {
			fmt.Printf("    attribute %s must be %s\n", bold(et.ResolvedName), bold(et.RequiredValue))
		}

		for _, src := range et.Sources {
			switch {
			case !src.Enabled:
				fmt.Printf("    %s %s %s\n", faint("-"), src.Source, faint("(disabled)"))
			case !src.Consulted:
				fmt.Printf("    %s %s %s\n", faint("-"), src.Source, faint("(not consulted)"))
			case src.Found:
				fmt.Printf("    %s %s %s = %s\n", green("✔"), src.Source, cyan(src.Bearer), src.Value)
			default:
				fmt.Printf("    %s %s %s\n", red("✖"), src.Source, faint("(not found)"))
			}
		}

		if et.Reason != "" {
			reason := et.Reason
			if et.Allowed || et.NotReached {
				reason = faint(reason)
			} else {
				reason = yellow(reason)
			}
			fmt.Printf("      ↳ %s\n", reason)
		}
		fmt.Println()
	}

	fmt.Println(faint("---------------------------------------------------"))
	if trace.FinalDecision {
		fmt.Printf("Decision: %s\n", bold(green("allowed")))
	} else {
		fmt.Printf("Decision: %s by '%s'\n", bold(red("denied")), trace.DeniedBy)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(whyCmd)

	whyCmd.Flags().StringVarP(&whyUser, "user", "u", "", "Username or user ID to explain")
	whyCmd.Flags().StringVar(&whyClient, "client", "", "Client ID the user wants to access")
	whyCmd.Flags().StringVarP(&whyExecution, "execution", "e", "", "Filter output to a specific execution alias (optional)")

	_ = whyCmd.MarkFlagRequired("user")
	_ = whyCmd.MarkFlagRequired("client")
}
