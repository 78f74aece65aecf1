package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/engine"
	"github.com/darmiel/attrgate/internal/validation"
)

type Config struct {
	Issuers         []IssuerConfig   `yaml:"issuers"`
	Flow            FlowConfig       `yaml:"flow"`
	Directory       *core.Directory  `yaml:"directory"`
	DirectorySource *DirectorySource `yaml:"directory_source"`
	Audit           AuditConfig      `yaml:"audit"`
	Admin           AdminConfig      `yaml:"admin"`
}

// FlowConfig is the authentication flow, an ordered list of executions.
type FlowConfig struct {
	Alias      string            `yaml:"alias"`
	Executions []ExecutionConfig `yaml:"executions"`
}

// ExecutionConfig places a configured authenticator into the flow.
type ExecutionConfig struct {
	// Alias identifies the execution in logs, audit entries and traces.
	Alias string `yaml:"alias"`

	// Authenticator is the ID of the authenticator factory, e.g. "require-attribute".
	Authenticator string `yaml:"authenticator"`

	// Requirement is one of REQUIRED, ALTERNATIVE, OPTIONAL, DISABLED.
	Requirement string `yaml:"requirement"`

	// Config holds the raw authenticator configuration. Values are kept as strings
	// and interpreted by the authenticator factory, never rejected here.
	Config map[string]string `yaml:"config"`
}

// Definition converts the flow config for compilation. An empty requirement means REQUIRED.
// It assumes the config has been validated.
func (f FlowConfig) Definition() engine.FlowDefinition {
	def := engine.FlowDefinition{
		Alias:      f.Alias,
		Executions: make([]engine.ExecutionDefinition, 0, len(f.Executions)),
	}
	for _, e := range f.Executions {
		requirement := core.RequirementRequired
		if e.Requirement != "" {
			if r, err := core.ParseRequirement(e.Requirement); err == nil {
				requirement = r
			}
		}
		def.Executions = append(def.Executions, engine.ExecutionDefinition{
			Alias:         e.Alias,
			Authenticator: e.Authenticator,
			Requirement:   requirement,
			Config:        e.Config,
		})
	}
	return def
}

type DirectorySourceSync struct {
	Interval time.Duration `yaml:"interval"`
}

type FileSourceConfig struct {
	Path string `yaml:"path"`
}

func (c *FileSourceConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

type GitHubSourceConfig struct {
	// ServerURL is the GitHub Enterprise server URL.
	// For GitHub.com, this can be left empty.
	ServerURL string `yaml:"server"`

	// Token is a token with read access to the repository contents.
	Token string `yaml:"token"`

	// TokenEnv names an environment variable holding the token.
	TokenEnv string `yaml:"token_env"`

	// Owner of the GitHub repository.
	Owner string `yaml:"owner"`

	// Repo is the name of the GitHub repository.
	Repo string `yaml:"repo"`

	// Path is the directory path within the repository to load directory files from.
	// For example, "directory/".
	Path string `yaml:"path"`

	// Ref is the git reference to use (e.g. a branch).
	Ref string `yaml:"ref"`
}

// ResolveToken returns the configured token, preferring TokenEnv.
func (c *GitHubSourceConfig) ResolveToken() string {
	if c.TokenEnv != "" {
		if v := os.Getenv(c.TokenEnv); v != "" {
			return v
		}
	}
	return c.Token
}

func (c *GitHubSourceConfig) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if c.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if c.Token == "" && c.TokenEnv == "" {
		return fmt.Errorf("token or token_env is required")
	}
	return nil
}

// DirectorySource holds configuration for where to load users, roles and groups from.
type DirectorySource struct {
	File   *FileSourceConfig   `yaml:"file,omitempty"`
	GitHub *GitHubSourceConfig `yaml:"github,omitempty"`

	Sync DirectorySourceSync `yaml:"sync"`
}

func (s *DirectorySource) Validate() error {
	switch {
	case s.File != nil && s.GitHub != nil:
		return fmt.Errorf("only one of file, github may be configured")
	case s.File != nil:
		if err := s.File.Validate(); err != nil {
			return fmt.Errorf("validating file directory source: %w", err)
		}
	case s.GitHub != nil:
		if err := s.GitHub.Validate(); err != nil {
			return fmt.Errorf("validating GitHub directory source: %w", err)
		}
	default:
		return fmt.Errorf("no valid directory source configured")
	}
	if s.Sync.Interval < 0 {
		return fmt.Errorf("sync interval must not be negative")
	}
	return nil
}

// IssuerConfig holds configuration for a credential issuer.
type IssuerConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // e.g., "static", "jwt", "oidc"

	// Config captures the remaining fields, decoded by the issuer.
	Config map[string]any `yaml:"-"`
}

func (c *IssuerConfig) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	c.Name, _ = raw["name"].(string)
	c.Type, _ = raw["type"].(string)
	delete(raw, "name")
	delete(raw, "type")
	c.Config = raw
	return nil
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Type     string `yaml:"type"`     // e.g., "memory", "log", "noop"
	Capacity int    `yaml:"capacity"` // max entries kept by the memory auditor
}

// AdminConfig configures access to the admin API.
// Users that pass the flow for ClientID are handed an admin session token.
type AdminConfig struct {
	// SigningKey is the HMAC key admin session tokens are signed with.
	SigningKey string `yaml:"signing_key"`

	// ClientID is the client admins log in to.
	ClientID string `yaml:"client_id"`

	// SessionTTL is the lifetime of admin session tokens.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

// LoadDirectory reads a standalone directory file (clients, roles, groups, users).
func LoadDirectory(path string) (*core.Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory file: %w", err)
	}
	return ParseDirectory(data)
}

func ParseDirectory(data []byte) (*core.Directory, error) {
	var dir core.Directory
	if err := yaml.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("parsing directory file: %w", err)
	}
	return &dir, nil
}

func (c *Config) Validate() error {
	validIssuers := make(map[string]struct{})
	for idx, i := range c.Issuers {
		if i.Name == "" {
			return fmt.Errorf("issuer at index %d has empty name", idx)
		}
		if _, dup := validIssuers[i.Name]; dup {
			return fmt.Errorf("issuer name '%s' is not unique", i.Name)
		}
		validIssuers[i.Name] = struct{}{}
	}

	if c.Flow.Alias == "" {
		c.Flow.Alias = "browser"
	}
	executions := make([]validation.Execution, 0, len(c.Flow.Executions))
	for _, e := range c.Flow.Executions {
		executions = append(executions, validation.Execution{
			Alias:         e.Alias,
			Authenticator: e.Authenticator,
			Requirement:   e.Requirement,
		})
	}
	if err := validation.ValidateExecutions(executions); err != nil {
		return fmt.Errorf("validating flow '%s': %w", c.Flow.Alias, err)
	}

	if c.Directory != nil {
		if err := validation.ValidateDirectory(c.Directory); err != nil {
			return fmt.Errorf("validating directory: %w", err)
		}
	}
	if c.DirectorySource != nil {
		if err := c.DirectorySource.Validate(); err != nil {
			return fmt.Errorf("validating directory source: %w", err)
		}
	}
	if c.Directory == nil && c.DirectorySource == nil {
		return fmt.Errorf("either directory or directory_source must be configured")
	}

	switch c.Audit.Type {
	case "", "memory", "log", "noop":
	default:
		return fmt.Errorf("unknown audit type '%s'", c.Audit.Type)
	}
	if c.Audit.Capacity < 0 {
		return fmt.Errorf("audit capacity must not be negative")
	}

	if c.Admin.ClientID != "" && c.Admin.SigningKey == "" {
		return fmt.Errorf("admin client_id requires a signing_key")
	}
	if c.Admin.SessionTTL < 0 {
		return fmt.Errorf("admin session_ttl must not be negative")
	}

	return nil
}
