package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/attrgate/internal/buildinfo"
	"github.com/darmiel/attrgate/internal/logging"
)

// global flags
var (
	userConfig string
	f          = NewFactory()
)

const AddrKey = "addr"

var rootCmd = &cobra.Command{
	Use:   "attrgate",
	Short: fmt.Sprintf("attrgate (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `attrgate is an authentication flow host that lets users through to a client
only if an attribute on the user, one of its roles or one of its groups
carries the required value.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := initConfig()
		logging.Init(nil)
		if err != nil {
			return err
		}
		if configPath != "" {
			log.Debug().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var quiet BeQuietError
		if !errors.As(err, &quiet) {
			log.Error().Err(err).Msg("execution failed")
		}
		os.Exit(1)
	}
}

func init() {
	// logger used until flags and config are known
	logging.InitDefault()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&userConfig, "user-config", "",
		"User configuration file for default values (default is $HOME/.attrgate.yaml)")
	flags.StringVar(&f.RemoteAddr, "server", "", "Address of the remote attrgate server")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")
	flags.Bool("no-color", false, "Disable color output")

	for key, flag := range map[string]string{
		AddrKey:            "server",
		logging.LevelKey:   "log-level",
		logging.FormatKey:  "log-format",
		logging.NoColorKey: "no-color",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	viper.SetEnvPrefix("ATTRGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func initConfig() (string, error) {
	// reads in config file and ENV variables if set.
	switch userConfig {
	case "":
		viper.SetConfigType("yaml")
		viper.SetConfigName(".attrgate")
		for _, dir := range configSearchPath() {
			viper.AddConfigPath(dir)
		}
	default:
		viper.SetConfigFile(userConfig)
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		return "", nil
	case err != nil:
		return "", err
	}
	return viper.ConfigFileUsed(), nil
}

// configSearchPath lists the working directory, $HOME and $XDG_CONFIG_HOME/attrgate.
func configSearchPath() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	if cfg, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(cfg, "attrgate"))
	}
	return dirs
}
