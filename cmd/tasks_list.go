package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/tasks"
)

var tasksListJSON bool

var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the state of all background tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		list, err := cli.ListTasks(cmd.Context())
		if err != nil {
			return logError(err, "", "Cannot list tasks")
		}

		if tasksListJSON {
			return printJSON(list)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Task", "Running", "Last Run", "Next Run", "Result"})
		for _, status := range list {
			t.AppendRow(taskRow(status))
		}
		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func taskRow(s tasks.TaskStatus) table.Row {
	running := faint("no")
	if s.Running {
		running = green("yes")
	}

	lastRun := faint("never")
	if !s.LastRun.IsZero() {
		lastRun = time.Since(s.LastRun).Round(time.Second).String() + " ago"
	}

	// tasks without an interval only run on demand
	nextRun := faint("on demand")
	if !s.NextRun.IsZero() {
		nextRun = "in " + time.Until(s.NextRun).Round(time.Second).String()
	}

	result := faint("-")
	switch s.LastResult {
	case "":
	case "success":
		result = greenCheck + " success"
	default:
		result = redCross + " " + red(truncate(s.LastResult, 60))
	}

	return table.Row{bold(s.Name), running, lastRun, nextRun, result}
}

func init() {
	tasksListCmd.Flags().BoolVar(&tasksListJSON, "json", false, "Print the task states as JSON")
	tasksCmd.AddCommand(tasksListCmd)
}
