package cmd

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var (
	debugContextUser   string
	debugContextClient string
)

var debugContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Dump what an authenticator sees for a user and client",
	Long: `Resolves user, role mappings and groups from the directory of the config file
and dumps the evaluation context handed to authenticators.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := f.localRuntime(cmd.Context())
		if err != nil {
			return err
		}

		ec, err := rt.directory.EvaluationContext(debugContextUser, debugContextClient)
		if err != nil {
			return err
		}

		cfg := spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		cfg.Dump(ec)
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugContextCmd)

	f.bindConfigFlag(debugContextCmd.Flags())
	debugContextCmd.Flags().StringVarP(&debugContextUser, "user", "u", "", "Username or user ID")
	debugContextCmd.Flags().StringVar(&debugContextClient, "client", "", "Client ID")

	_ = debugContextCmd.MarkFlagRequired("user")
	_ = debugContextCmd.MarkFlagRequired("client")
}
