package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/cliconfig"
	"github.com/darmiel/attrgate/pkg/client"
)

var loginIssuer string

var loginCmd = &cobra.Command{
	Use:   "login TOKEN",
	Short: "Authenticate with an attrgate server as admin",
	Long: `Exchanges a credential accepted by one of the server's issuers for an admin session token.
The server runs its flow for the admin client, so the user must pass it like any other login.
The session token is saved locally to allow future admin requests (like audit logs).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := args[0]
		if token == "" {
			return fmt.Errorf("token cannot be empty")
		}

		server, err := f.serverAddr()
		if err != nil {
			return err
		}

		log.Info().Msgf("Requesting admin session from %q...", server)
		session, correlation, err := client.New(server).Session(cmd.Context(), token, client.LoginOptions{
			Issuer: loginIssuer,
		})
		if client.IsAccessDenied(err) {
			log.Error().Msgf("%s Access Denied. The user did not pass the flow for the admin client.", redCross)
			log.Error().Msgf("Run %s on the server to see why.", bold("attrgate evaluate"))
			return BeQuietError{}
		}
		if err != nil {
			return logError(err, correlation, "failed to login")
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.SetCredential(server, &cliconfig.Credential{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
		}); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "login succeeded but could not save credentials")
		}

		logSuccess("saved credentials for %s (valid for %s)",
			bold(server), time.Until(session.ExpiresAt).Round(time.Minute))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginIssuer, "issuer", "", "Issuer name (optional, skips auto-discovery)")
}
