package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/attrgate/internal/buildinfo"
	"github.com/darmiel/attrgate/internal/engine"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show version and available authenticators, of the server if --server is set",
	RunE: func(cmd *cobra.Command, args []string) error {
		if f.RemoteAddr == "" && viper.GetString(AddrKey) == "" {
			info := buildinfo.GetBuildInfo()
			var ids []string
			for _, factory := range engine.DefaultRegistry().List() {
				ids = append(ids, factory.ID())
			}
			printInfo("local", &info, ids)
			return nil
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		info, correlation, err := cli.Info(cmd.Context())
		if err != nil {
			return logError(err, correlation, "Cannot reach server")
		}
		authenticators, correlation, err := cli.Authenticators(cmd.Context())
		if err != nil {
			return logError(err, correlation, "Cannot list authenticators")
		}
		ids := make([]string, 0, len(authenticators))
		for _, a := range authenticators {
			ids = append(ids, a.ID)
		}
		printInfo(f.RemoteAddr, info, ids)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printInfo(where string, info *buildinfo.Info, authenticators []string) {
	fmt.Printf("%s %s\n", bold(info.Service), faint("("+where+")"))
	rows := [][2]string{
		{"Version", info.Version},
		{"Commit", info.CommitHash},
		{"Go", info.GoVersion},
		{"Authenticators", strings.Join(authenticators, ", ")},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Printf("  %-15s %s\n", faint(r[0]), r[1])
	}
}
