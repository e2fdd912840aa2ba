package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lherron/listsync/internal/reconcile"
)

// Defaults
const (
	DefaultAPIURL       = "http://127.0.0.1:3000"
	DefaultPollInterval = 10 * time.Second
	DefaultAPITimeout   = 10 * time.Second
)

// Config represents the application configuration
type Config struct {
	APIURL       string        `yaml:"api_url"`
	Token        string        `yaml:"token"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Polling      bool          `yaml:"polling"`
	Prefetch     bool          `yaml:"prefetch"`
	APITimeout   time.Duration `yaml:"api_timeout"`
	LogLevel     string        `yaml:"log_level"`
	Output       string        `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:       DefaultAPIURL,
		PollInterval: DefaultPollInterval,
		Polling:      true,
		Prefetch:     true,
		APITimeout:   DefaultAPITimeout,
		LogLevel:     "info",
		Output:       "table",
	}
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/listsync/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := Default()

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Load ~/.config/listsync/config.yaml if it exists
	if err := loadYAMLConfig(cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	if apiURL := os.Getenv("LISTSYNC_API_URL"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if token := getEnvOrFile("LISTSYNC_TOKEN", "LISTSYNC_TOKEN_FILE"); token != "" {
		cfg.Token = token
	}
	if logLevel := os.Getenv("LISTSYNC_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if output := os.Getenv("LISTSYNC_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if err := envDuration("LISTSYNC_POLL_INTERVAL", &cfg.PollInterval); err != nil {
		return nil, err
	}
	if err := envDuration("LISTSYNC_API_TIMEOUT", &cfg.APITimeout); err != nil {
		return nil, err
	}
	if err := envBool("LISTSYNC_POLLING", &cfg.Polling); err != nil {
		return nil, err
	}
	if err := envBool("LISTSYNC_PREFETCH", &cfg.Prefetch); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the rest of the program
// cannot work with.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url must be set")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %s", c.APITimeout)
	}
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q (want table, json or yaml)", c.Output)
	}
	return nil
}

// Reconcile returns the reconciliation loop settings.
func (c *Config) Reconcile() reconcile.Config {
	return reconcile.Config{
		Interval: c.PollInterval,
		Polling:  c.Polling,
		Prefetch: c.Prefetch,
	}
}

// Path returns the location of the YAML config file.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "listsync", "config.yaml"), nil
}

// loadYAMLConfig loads configuration from ~/.config/listsync/config.yaml
func loadYAMLConfig(cfg *Config) error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func envDuration(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}

func envBool(name string, dst *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = b
	return nil
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
