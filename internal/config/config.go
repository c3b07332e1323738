package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vectormcp/internal/logging"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "vectormcp" // application name used for config directory

// DefaultBaseURL is the backend API root used when nothing else is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config holds the server configuration.
//
// The API key itself is never written to the config file; it comes from
// the environment or the OS keyring (see credentials.go).
type Config struct {
	// BaseURL is the root of the backend vector-store API.
	BaseURL string `yaml:"base_url"`
	// RequestTimeoutSeconds bounds every backend HTTP call.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	// EagerCredentialCheck makes session negotiation fail when no
	// credential resolves. Default false: credentials are checked
	// lazily at the first tool invocation.
	EagerCredentialCheck bool `yaml:"eager_credential_check"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	Version  string `yaml:"version"`   // Track config version
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// RequestTimeout returns the backend call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location, applying defaults
// and environment overrides. A missing file is not an error: the server
// is expected to run with nothing but environment variables set.
func Load() (*Config, error) {
	// Best effort; a missing .env file is the normal case.
	_ = godotenv.Load()

	configPath, exists := FindConfigFile()
	cfg := DefaultConfig()
	if exists {
		loaded, err := LoadFrom(configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:               DefaultBaseURL,
		RequestTimeoutSeconds: 30,
		EagerCredentialCheck:  false,
		LogLevel:              "warn",
		Version:               "1.0",
		InitTime:              0, // Will be set during first save
	}
}

// applyEnvOverrides lets environment variables win over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("VECTORMCP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeoutSeconds = n
		} else {
			logging.Warn("Ignoring invalid VECTORMCP_TIMEOUT_SECONDS", "value", v)
		}
	}
	if v := os.Getenv("VECTORMCP_EAGER_CREDENTIAL_CHECK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EagerCredentialCheck = b
		}
	}
	if v := os.Getenv("VECTORMCP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
