// Package config provides configuration loading and structs for tango.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/tango/internal/tfidf"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Reddit  RedditConfig  `yaml:"reddit"`
	Index   IndexConfig   `yaml:"index"`
	TFIDF   tfidf.Options `yaml:"tfidf"`
	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the run database location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// RedditConfig holds API credentials and the default search.
// Credentials are usually supplied through REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET and REDDIT_USER_AGENT.
type RedditConfig struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	UserAgent    string        `yaml:"user_agent"`
	Subreddit    string        `yaml:"subreddit"`
	Query        string        `yaml:"query"`
	Limit        int           `yaml:"limit"`
	Sort         string        `yaml:"sort"`
	TimeFilter   string        `yaml:"time_filter"`
	BaseURL      string        `yaml:"base_url"`
	AuthURL      string        `yaml:"auth_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

// IndexConfig holds vocabulary settings.
type IndexConfig struct {
	TopK int `yaml:"top_k"`
}

// OutputConfig holds the spreadsheet paths written by crawl and analyze.
type OutputConfig struct {
	ResultsPath    string `yaml:"results_path"`
	VocabularyPath string `yaml:"vocabulary_path"`
	ScoresPath     string `yaml:"scores_path"`
}

// WatchConfig lists input workbooks re-analyzed when they change.
type WatchConfig struct {
	Inputs []string `yaml:"inputs"`
}

// Environment variables that override Reddit credentials.
const (
	EnvClientID     = "REDDIT_CLIENT_ID"
	EnvClientSecret = "REDDIT_CLIENT_SECRET"
	EnvUserAgent    = "REDDIT_USER_AGENT"
)

// Default returns a config with every default applied, as used when no config file exists.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, applies defaults and environment overrides,
// expands paths, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	ApplyEnv(&cfg, os.Getenv)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Output.ResultsPath = expandPath(cfg.Output.ResultsPath, configDir)
	cfg.Output.VocabularyPath = expandPath(cfg.Output.VocabularyPath, configDir)
	cfg.Output.ScoresPath = expandPath(cfg.Output.ScoresPath, configDir)
	for i := range cfg.Watch.Inputs {
		cfg.Watch.Inputs[i] = expandPath(cfg.Watch.Inputs[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides Reddit credentials with non-empty values from getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvClientID); v != "" {
		cfg.Reddit.ClientID = v
	}
	if v := getenv(EnvClientSecret); v != "" {
		cfg.Reddit.ClientSecret = v
	}
	if v := getenv(EnvUserAgent); v != "" {
		cfg.Reddit.UserAgent = v
	}
}

// Validate rejects settings the engine or server cannot use.
func (c *Config) Validate() error {
	if c.Index.TopK <= 0 {
		return fmt.Errorf("invalid config: index.top_k must be positive, got %d", c.Index.TopK)
	}
	if err := c.TFIDF.Validate(); err != nil {
		return fmt.Errorf("invalid config: tfidf: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d out of range", c.Server.Port)
	}
	if c.Reddit.Limit <= 0 {
		return fmt.Errorf("invalid config: reddit.limit must be positive, got %d", c.Reddit.Limit)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
