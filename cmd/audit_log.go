package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/pkg/client"
)

var (
	auditLogOpts client.ListAuditsOpts
	auditLogJSON bool
)

var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "List recent login decisions",
	Example: `  # Show the last 10 denials
  attrgate audit log -n 10 --error not_allowed

  # Filter with an expression
  attrgate audit log --filter 'client_id == "billing" && username startsWith "ext-"'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		entries, correlation, err := cli.ListAudits(cmd.Context(), auditLogOpts)
		if err != nil {
			return logError(err, correlation, "failed to fetch audit log")
		}
		if auditLogJSON {
			return printJSON(entries)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"When", "User", "Client", "Execution", "Decision", "Correlation"})
		for _, e := range entries {
			t.AppendRow(auditRow(e))
		}
		t.AppendFooter(table.Row{"", "", "", "", len(entries), ""})
		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func auditRow(e core.AuditEntry) table.Row {
	user := faint("(unknown)")
	if e.User != nil {
		user = truncate(e.User.Username, 35)
	}
	decision := green("granted")
	if !e.Granted {
		decision = red(e.Error)
	}
	return table.Row{ago(e.Time), user, e.ClientID, e.Execution, decision, faint(e.ID)}
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	fl := auditLogCmd.Flags()
	fl.UintVarP(&auditLogOpts.Limit, "limit", "n", 25, "Number of audit entries to retrieve")
	fl.StringVar(&auditLogOpts.CorrelationID, "correlation-id", "", "Only show entries of this request")
	fl.StringVar(&auditLogOpts.Username, "username", "", "Only show entries of this user")
	fl.StringVar(&auditLogOpts.ClientID, "client", "", "Only show entries of this client")
	fl.StringVar(&auditLogOpts.Error, "error", "", "Only show entries with this error code")
	fl.StringVar(&auditLogOpts.Filter, "filter", "", "Filter expression evaluated on the server")
	fl.BoolVar(&auditLogJSON, "json", false, "Print the entries as JSON")
}
