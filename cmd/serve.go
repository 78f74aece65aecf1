package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/api"
	"github.com/darmiel/attrgate/internal/api/middleware"
	"github.com/darmiel/attrgate/internal/audit"
	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/directory"
	"github.com/darmiel/attrgate/internal/engine"
	"github.com/darmiel/attrgate/internal/issuers"
	"github.com/darmiel/attrgate/internal/logging"
	"github.com/darmiel/attrgate/internal/metrics"
	"github.com/darmiel/attrgate/internal/service"
	"github.com/darmiel/attrgate/internal/source"
	"github.com/darmiel/attrgate/internal/tasks"
	"github.com/darmiel/attrgate/internal/validation"
)

const (
	// DirectorySyncTask is the name of the task refreshing the directory from its source.
	DirectorySyncTask = "directory-sync"

	// FlowReloadTask re-reads the config file and activates its flow. It only runs on demand.
	FlowReloadTask = "flow-reload"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the attrgate server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := f.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		m := metrics.New()

		log.Info().Msg("Initializing issuers...")
		issRegistry, err := issuers.BuildRegistry(ctx, cfg.Issuers)
		if err != nil {
			return fmt.Errorf("building issuer registry: %w", err)
		}

		log.Info().Msg("Initializing audit log...")
		baseAuditor, err := audit.New(cfg.Audit.Enabled, cfg.Audit.Type, cfg.Audit.Capacity)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		auditor := audit.NewInstrumented(baseAuditor, m)
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Warn().Err(err).Msg("closing auditor")
			}
		}()

		log.Info().Msg("Compiling flow...")
		flows, err := engine.NewManager(engine.DefaultRegistry(), cfg.Flow.Definition())
		if err != nil {
			return err
		}

		log.Info().Msg("Loading directory...")
		dir := directory.NewInMemoryDirectory(cfg.Directory)
		taskManager := tasks.NewManager()
		defer taskManager.Stop()

		if cfg.DirectorySource != nil {
			if err := registerDirectorySync(taskManager, cfg.DirectorySource, dir, m); err != nil {
				return err
			}
			// the server must not start with an empty directory
			if err := taskManager.RunNow(DirectorySyncTask); err != nil {
				return fmt.Errorf("initial directory sync: %w", err)
			}
		}
		registerFlowReload(taskManager, flows, func() (engine.FlowDefinition, error) {
			reloaded, err := f.LoadConfig()
			if err != nil {
				return engine.FlowDefinition{}, err
			}
			return reloaded.Flow.Definition(), nil
		})

		clients, roles, groups, users := dir.Stats()
		log.Info().Msgf("Directory ready: %d clients, %d roles, %d groups, %d users", clients, roles, groups, users)

		login := service.NewLoginService(issRegistry, dir, flows, auditor, m)

		var sessions *service.SessionIssuer
		if cfg.Admin.ClientID != "" {
			sessions = service.NewSessionIssuer(login, cfg.Admin.ClientID, []byte(cfg.Admin.SigningKey),
				middleware.SessionIssuer, middleware.AdminRole, cfg.Admin.SessionTTL)
		} else {
			log.Warn().Msg("admin.client_id not set, admin sessions are disabled")
		}

		queryable, _ := auditor.Queryable()
		srv := api.NewServer(login, sessions, engine.DefaultRegistry(), taskManager, queryable, nil)

		server := &http.Server{
			Addr:              addr,
			Handler:           srv.Routes([]byte(cfg.Admin.SigningKey)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server crashed: %w", err)
		case <-ctx.Done():
		}
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

// registerDirectorySync adds the task that fetches the directory, validates it and swaps it in.
// A failing sync keeps the previous directory.
func registerDirectorySync(
	manager *tasks.Manager,
	src *config.DirectorySource,
	dir *directory.InMemoryDirectory,
	m *metrics.Metrics,
) error {
	fetcher, err := source.New(src)
	if err != nil {
		return fmt.Errorf("building directory source: %w", err)
	}

	manager.Register(tasks.TaskDefinition{
		Name:     DirectorySyncTask,
		Interval: src.Sync.Interval,
		Handler: func(ctx context.Context, logger logging.InternalLogger) (err error) {
			defer func() {
				m.RecordDirectorySync(err)
			}()

			fetched, err := fetcher.Fetch(ctx, logger)
			if err != nil {
				return err
			}
			if err := validation.ValidateDirectory(fetched); err != nil {
				return fmt.Errorf("fetched directory is invalid: %w", err)
			}
			dir.Replace(fetched)
			logger.Info("Directory replaced: %d users", len(fetched.Users))
			return nil
		},
	})
	return nil
}

// registerFlowReload adds the task that swaps in the flow returned by load.
// A config that fails to load or compile keeps the active flow.
func registerFlowReload(manager *tasks.Manager, flows *engine.FlowManager, load func() (engine.FlowDefinition, error)) {
	manager.Register(tasks.TaskDefinition{
		Name: FlowReloadTask,
		Handler: func(_ context.Context, logger logging.InternalLogger) error {
			def, err := load()
			if err != nil {
				return fmt.Errorf("loading flow: %w", err)
			}
			if err := flows.Update(def); err != nil {
				return err
			}
			logger.Info("Flow '%s' activated with %d executions", def.Alias, len(def.Executions))
			return nil
		},
	})
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	f.bindConfigFlag(serveCmd.Flags())
}
