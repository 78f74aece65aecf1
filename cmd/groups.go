package cmd

import "github.com/spf13/cobra"

// Parent commands without behaviour of their own.
var (
	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Read the audit log of a server",
		Long:  "Lists login decisions recorded by the server. Requires an admin session (attrgate login).",
	}
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Check a server configuration file",
	}
	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Inspect how a configuration resolves users and attributes",
	}
	tasksCmd = &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and trigger background tasks",
		Long:  "Background tasks keep the directory in sync with its source. Requires an admin session (attrgate login).",
	}
)

func init() {
	rootCmd.AddCommand(auditCmd, configCmd, debugCmd, tasksCmd)
}
