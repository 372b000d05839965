package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config is the top-level application configuration.
type Config struct {
	LogLevel    string    `yaml:"log_level"`
	Credentials string    `yaml:"credentials"`
	Auth        Auth      `yaml:"auth"`
	Fetch       Fetch     `yaml:"fetch"`
	Telemetry   Telemetry `yaml:"telemetry"`
}

// Auth configures token storage and the OAuth grant.
type Auth struct {
	TokenStore      string   `yaml:"token_store"` // "file" or "sqlite"
	TokenPath       string   `yaml:"token_path"`
	TokenKey        string   `yaml:"token_key"` // row key for the sqlite store
	Scopes          []string `yaml:"scopes"`
	PromptOnCorrupt *bool    `yaml:"prompt_on_corrupt"`
}

// Fetch configures the retrieval pipeline.
type Fetch struct {
	Query       string `yaml:"query"`
	Label       string `yaml:"label"`
	PageSize    int    `yaml:"page_size"`
	RPS         int    `yaml:"rps"`
	Concurrency int    `yaml:"concurrency"`
}

// Telemetry toggles the stdout OpenTelemetry exporters.
type Telemetry struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	dir := defaultDir()
	return &Config{
		LogLevel:    "info",
		Credentials: filepath.Join(dir, "credentials.json"),
		Auth: Auth{
			TokenStore: StoreFile,
			TokenPath:  filepath.Join(dir, "token.json"),
			TokenKey:   "default",
		},
		Fetch: Fetch{
			Label:    "INBOX",
			PageSize: 500,
		},
	}
}

// Load reads and parses a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(ExpandHome(path))) // #nosec G304 - path chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Normalize expands home-relative paths and lower-cases enum values.
func (c *Config) Normalize() {
	c.Credentials = ExpandHome(c.Credentials)
	c.Auth.TokenPath = ExpandHome(c.Auth.TokenPath)
	c.Auth.TokenStore = strings.ToLower(strings.TrimSpace(c.Auth.TokenStore))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Auth.TokenStore {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("auth.token_store must be %q or %q, got %q", StoreFile, StoreSQLite, c.Auth.TokenStore)
	}
	if strings.TrimSpace(c.Auth.TokenPath) == "" {
		return errors.New("auth.token_path must not be empty")
	}
	if c.Auth.TokenStore == StoreSQLite && strings.TrimSpace(c.Auth.TokenKey) == "" {
		return errors.New("auth.token_key must not be empty for the sqlite store")
	}
	if strings.TrimSpace(c.Credentials) == "" {
		return errors.New("credentials must not be empty")
	}
	if c.Fetch.PageSize < 0 || c.Fetch.PageSize > 500 {
		return fmt.Errorf("fetch.page_size must be between 0 and 500, got %d", c.Fetch.PageSize)
	}
	if c.Fetch.RPS < 0 {
		return fmt.Errorf("fetch.rps must not be negative, got %d", c.Fetch.RPS)
	}
	if c.Fetch.Concurrency < 0 {
		return fmt.Errorf("fetch.concurrency must not be negative, got %d", c.Fetch.Concurrency)
	}
	return nil
}

// PromptOnCorruptToken reports whether an unusable stored token should lead to
// a new interactive grant. Defaults to true.
func (a Auth) PromptOnCorruptToken() bool {
	return a.PromptOnCorrupt == nil || *a.PromptOnCorrupt
}

// TokenKeyFor returns the key tokens are stored under for the configured store.
func (a Auth) TokenKeyFor() string {
	if a.TokenStore == StoreSQLite {
		return a.TokenKey
	}
	return a.TokenPath
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func defaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "recentmail")
	}
	return filepath.Join(".", ".recentmail")
}
