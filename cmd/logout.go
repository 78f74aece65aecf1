package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/cliconfig"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the admin session of the configured server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := f.serverAddr()
		if err != nil {
			return err
		}
		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		removed, err := cfg.RemoveCredential(server)
		if err != nil {
			return err
		}
		if !removed {
			logSuccess("not logged in to %s", bold(server))
			return nil
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "could not save credentials")
		}
		logSuccess("logged out of %s", bold(server))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
