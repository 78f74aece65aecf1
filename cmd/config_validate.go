package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/engine"
	"github.com/darmiel/attrgate/internal/validation"
)

var configValidateFetch bool

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Parses and validates the configuration file and compiles its flow.
With --fetch the directory is also loaded from its source and validated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return logError(err, "", "configuration is invalid")
		}

		flow, err := engine.Compile(engine.DefaultRegistry(), cfg.Flow.Definition())
		if err != nil {
			return logError(err, "", "flow does not compile")
		}
		log.Info().Msgf("Flow '%s' has %d executions", flow.Alias, len(flow.Executions))

		if configValidateFetch && cfg.DirectorySource != nil {
			dir, err := loadDirectory(cmd.Context(), cfg)
			if err != nil {
				return logError(err, "", "fetching directory failed")
			}
			if err := validation.ValidateDirectory(dir); err != nil {
				return logError(err, "", "fetched directory is invalid")
			}
			log.Info().Msgf("Fetched directory has %d users", len(dir.Users))
		}

		logSuccess("configuration is valid")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)

	f.bindConfigFlag(configValidateCmd.Flags())
	configValidateCmd.Flags().BoolVar(&configValidateFetch, "fetch", false, "Also fetch and validate the directory source")
}
