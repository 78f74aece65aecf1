package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/darmiel/attrgate/internal/audit"
	"github.com/darmiel/attrgate/internal/cliconfig"
	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/directory"
	"github.com/darmiel/attrgate/internal/engine"
	"github.com/darmiel/attrgate/internal/logging"
	"github.com/darmiel/attrgate/internal/source"
	"github.com/darmiel/attrgate/pkg/client"
)

// TokenEnv overrides the saved admin session token.
const TokenEnv = "ATTRGATE_TOKEN"

type Factory struct {
	// RemoteAddr is the address of the attrgate server to connect to.
	RemoteAddr string

	// ConfigPath is the server configuration used by local commands.
	ConfigPath string
}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) serverAddr() (string, error) {
	server := f.RemoteAddr // prio 1: command-line flag
	if server == "" {
		server = viper.GetString(AddrKey) // prio 2: config/env
	}
	if server == "" {
		return "", fmt.Errorf("server address not configured (use --server or set ATTRGATE_ADDR)")
	}
	return server, nil
}

// GetClient returns an HTTP client for remote operations, authenticated if a session is known.
func (f *Factory) GetClient() (*client.Client, error) {
	server, err := f.serverAddr()
	if err != nil {
		return nil, err
	}

	var token string
	if cfg, err := cliconfig.Load(); err == nil {
		if cred, err := cfg.GetCredential(server); err == nil { // token prio 1: saved credential
			token = cred.Token
		}
	}
	if envToken := os.Getenv(TokenEnv); envToken != "" { // token prio 2: env var
		token = envToken
	}

	return client.New(server, client.WithAuthToken(token)), nil
}

func (f *Factory) LoadConfig() (*config.Config, error) {
	if f.ConfigPath == "" {
		return nil, fmt.Errorf("config file not specified (use --config)")
	}
	return config.Load(f.ConfigPath)
}

func (f *Factory) bindConfigFlag(flags *pflag.FlagSet) {
	flags.StringVarP(&f.ConfigPath, "config", "c", "", "The attrgate server config file to use")
}

// localRuntime is everything needed to run the flow without the HTTP server.
type localRuntime struct {
	cfg       *config.Config
	directory *directory.InMemoryDirectory
	flows     *engine.FlowManager
	auditor   *audit.InMemoryAuditor
}

// loadDirectory returns the inline directory, or fetches it from the configured source.
func loadDirectory(ctx context.Context, cfg *config.Config) (*core.Directory, error) {
	if cfg.Directory != nil {
		return cfg.Directory, nil
	}
	fetcher, err := source.New(cfg.DirectorySource)
	if err != nil {
		return nil, err
	}
	return fetcher.Fetch(ctx, logging.NewZLogger(log.Logger))
}

func (f *Factory) localRuntime(ctx context.Context) (*localRuntime, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dir, err := loadDirectory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading directory: %w", err)
	}

	flows, err := engine.NewManager(engine.DefaultRegistry(), cfg.Flow.Definition())
	if err != nil {
		return nil, err
	}

	return &localRuntime{
		cfg:       cfg,
		directory: directory.NewInMemoryDirectory(dir),
		flows:     flows,
		auditor:   audit.NewInMemoryAuditor(audit.DefaultCapacity),
	}, nil
}
