// Package config loads per-project loreindex configuration.
//
// Configuration lives in .loreindex.yaml at the project root. A handful of
// environment variables override the file for scripting and CI:
//
//	LOREINDEX_ENABLED    overrides search.enabled ("true"/"false")
//	LOREINDEX_API_KEY    overrides the decoded provider credential
//	LOREINDEX_MODEL      overrides search.model
package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	lierrors "github.com/loreindex/loreindex/internal/errors"
)

// FileName is the project configuration file name.
const FileName = ".loreindex.yaml"

// Defaults applied when the config file is absent or fields are zero.
const (
	DefaultModel       = "voyage-3-lite"
	DefaultMaxResults  = 10
	DefaultTokenBudget = 2000
	DefaultTick        = 10 * time.Second
	DefaultQuietPeriod = 120 * time.Second
)

// Config is the complete loreindex configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// SearchConfig configures semantic search and the embedding provider.
type SearchConfig struct {
	// Enabled turns the semantic-search feature on.
	Enabled bool `yaml:"enabled"`

	// APIKeyEncoded is the base64-encoded provider credential.
	// An empty value means the feature is effectively disabled.
	APIKeyEncoded string `yaml:"api_key"`

	// Model is the embedding model identifier.
	Model string `yaml:"model"`

	// MaxResults is the default number of search results.
	MaxResults int `yaml:"max_results"`

	// TokenBudget is the default per-query token budget handed to the
	// prompt assembler along with the results.
	TokenBudget int `yaml:"token_budget"`

	// ExcludedPaths lists "do not use for AI context" path patterns.
	// Excluded files are still indexed but never returned from search.
	ExcludedPaths []string `yaml:"excluded_paths"`
}

// SchedulerConfig configures the background incremental indexer.
// Durations are strings like "10s" so the file stays hand-editable.
type SchedulerConfig struct {
	TickInterval string `yaml:"tick_interval"`
	QuietPeriod  string `yaml:"quiet_period"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Model:       DefaultModel,
			MaxResults:  DefaultMaxResults,
			TokenBudget: DefaultTokenBudget,
		},
	}
}

// Load reads the project configuration, applying defaults and environment
// overrides. A missing file is not an error.
func Load(projectDir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(projectDir, FileName)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, lierrors.New(lierrors.ErrCodeConfigInvalid, "cannot parse "+FileName, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, lierrors.New(lierrors.ErrCodeConfigInvalid, "cannot read "+FileName, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Search.Model == "" {
		c.Search.Model = DefaultModel
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = DefaultMaxResults
	}
	if c.Search.TokenBudget <= 0 {
		c.Search.TokenBudget = DefaultTokenBudget
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LOREINDEX_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Search.Enabled = b
		}
	}
	if v := os.Getenv("LOREINDEX_MODEL"); v != "" {
		c.Search.Model = v
	}
	if v := os.Getenv("LOREINDEX_API_KEY"); v != "" {
		// Env var carries the raw key; store it encoded so ResolveAPIKey
		// has a single decode path.
		c.Search.APIKeyEncoded = base64.StdEncoding.EncodeToString([]byte(v))
	}
}

// SearchAvailable reports whether semantic search can actually run:
// the feature flag is on and a credential is configured. An absent
// credential disables the feature rather than erroring.
func (c *Config) SearchAvailable() bool {
	return c.Search.Enabled && strings.TrimSpace(c.Search.APIKeyEncoded) != ""
}

// ResolveAPIKey decodes the stored credential. The core only ever sees
// the decoded key.
func (c *Config) ResolveAPIKey() (string, error) {
	encoded := strings.TrimSpace(c.Search.APIKeyEncoded)
	if encoded == "" {
		return "", lierrors.New(lierrors.ErrCodeCredentialMissing,
			"embedding credential not set; add search.api_key to "+FileName, nil)
	}
	return DecodeAPIKey(encoded)
}

// DecodeAPIKey decodes a base64-encoded credential string.
func DecodeAPIKey(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", lierrors.New(lierrors.ErrCodeCredentialInvalid, "malformed embedding credential", err)
	}
	return string(raw), nil
}

// TickInterval returns the scheduler tick, falling back to the default.
func (c *Config) TickInterval() time.Duration {
	return parseDuration(c.Scheduler.TickInterval, DefaultTick)
}

// QuietPeriod returns the per-file quiet period, falling back to the default.
func (c *Config) QuietPeriod() time.Duration {
	return parseDuration(c.Scheduler.QuietPeriod, DefaultQuietPeriod)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Save writes the configuration back to the project root.
func Save(projectDir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return lierrors.New(lierrors.ErrCodeConfigInvalid, "cannot encode configuration", err)
	}
	path := filepath.Join(projectDir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return lierrors.New(lierrors.ErrCodeConfigInvalid, "cannot write "+FileName, err)
	}
	return nil
}
