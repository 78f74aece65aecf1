package cmd

import (
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/tasks"
)

var logLevels = []string{"debug", "info", "warn", "error"}

var tasksLogsMinLevel string

var tasksLogsCmd = &cobra.Command{
	Use:   "logs NAME",
	Short: "Show the log of the last run of a background task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		minLevel := slices.Index(logLevels, tasksLogsMinLevel)
		if minLevel < 0 {
			return fmt.Errorf("unknown level '%s', expected one of %v", tasksLogsMinLevel, logLevels)
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		entries, err := cli.GetTaskLogs(cmd.Context(), name)
		if err != nil {
			return logError(err, "", "Cannot retrieve task logs")
		}

		entries = slices.DeleteFunc(entries, func(e tasks.LogEntry) bool {
			return slices.Index(logLevels, e.Level) < minLevel
		})
		if len(entries) == 0 {
			fmt.Printf("%s has no log lines at level %s or above\n", bold(name), tasksLogsMinLevel)
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s %s %s\n", faint(e.Time.Format("15:04:05")), levelTag(e.Level), e.Message)
		}
		return nil
	},
}

func levelTag(level string) string {
	switch level {
	case "info":
		return color.GreenString("INF")
	case "warn":
		return color.YellowString("WRN")
	case "error":
		return color.RedString("ERR")
	default:
		return faint("DBG")
	}
}

func init() {
	tasksLogsCmd.Flags().StringVarP(&tasksLogsMinLevel, "level", "l", "debug", "Minimum level to show")
	tasksCmd.AddCommand(tasksLogsCmd)
}
