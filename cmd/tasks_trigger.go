package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	triggerWait    bool
	triggerTimeout time.Duration
)

var tasksTriggerCmd = &cobra.Command{
	Use:   "trigger NAME",
	Short: "Run a background task now, e.g. directory-sync",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		since := time.Now()
		if err := cli.TriggerTask(cmd.Context(), name); err != nil {
			return logError(err, "", "Cannot trigger task")
		}
		if !triggerWait {
			logSuccess("Triggered %s. Follow it with %s", bold(name), faint("attrgate tasks logs "+name))
			return nil
		}

		log.Debug().Str("task", name).Dur("timeout", triggerTimeout).Msg("waiting for task run to finish")
		ctx, cancel := context.WithTimeout(cmd.Context(), triggerTimeout)
		defer cancel()

		status, err := cli.WaitForTask(ctx, name, since, 500*time.Millisecond)
		if err != nil {
			return logError(err, "", "Task did not finish")
		}
		if status.LastResult != "success" {
			log.Error().Msgf("%s %s %s", redCross, bold(name), status.LastResult)
			return BeQuietError{}
		}
		logSuccess("%s finished", bold(name))
		return nil
	},
}

func init() {
	tasksTriggerCmd.Flags().BoolVarP(&triggerWait, "wait", "w", false, "Wait until the run finished")
	tasksTriggerCmd.Flags().DurationVar(&triggerTimeout, "timeout", 2*time.Minute, "How long to wait with --wait")
	tasksCmd.AddCommand(tasksTriggerCmd)
}
