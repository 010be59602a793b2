package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	httpadapter "github.com/marmos91/embedhttp/pkg/adapter/http"
	"github.com/spf13/viper"
)

// Config represents the complete embedhttpd configuration.
//
// Configuration can be loaded from:
//   - YAML or TOML file
//   - Environment variables (EMBEDHTTP_* prefix)
//   - Default values
//
// The structure mirrors the runtime: one HTTP server, a set of named object
// stores, and the endpoints served from them.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server is the HTTP endpoint server configuration
	Server httpadapter.HTTPConfig `mapstructure:"server" yaml:"server"`

	// Metrics controls the Prometheus exposition server
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Stores lists the named object stores available to endpoints
	Stores []StoreConfig `mapstructure:"stores" validate:"dive" yaml:"stores"`

	// Endpoints lists the services registered at startup
	Endpoints []EndpointConfig `mapstructure:"endpoints" validate:"dive" yaml:"endpoints"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig contains metrics server configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics server runs
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the /metrics endpoint
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`
}

// StoreConfig describes one named object store.
//
// Options are decoded by the factory for the store type:
//   - memory: max_size_bytes
//   - badger: path, in_memory, sync_writes, block_cache_size_mb, index_cache_size_mb
//   - filesystem: path, file_perm
//   - s3: region, bucket, key_prefix, endpoint, access_key_id, secret_access_key, max_retries
type StoreConfig struct {
	// Name identifies the store for endpoints
	Name string `mapstructure:"name" validate:"required" yaml:"name"`

	// Type selects the backend
	Type string `mapstructure:"type" validate:"required,oneof=memory badger filesystem s3" yaml:"type"`

	// Options holds backend-specific settings
	Options map[string]any `mapstructure:"options" yaml:"options,omitempty"`
}

// EndpointConfig describes one endpoint registered at startup.
//
// Options are decoded per type:
//   - static: payload
//   - echo: none
//   - health: none
//   - docs: format (yaml or json)
//   - object: key, read_only
//   - keys: prefix
type EndpointConfig struct {
	// Path is the request path, matched case-insensitively
	Path string `mapstructure:"path" validate:"required,startswith=/" yaml:"path"`

	// Type selects the built-in service
	Type string `mapstructure:"type" validate:"required,oneof=static echo health docs object keys" yaml:"type"`

	// Kind is "text" or "binary", used by static and echo endpoints
	Kind string `mapstructure:"kind" validate:"omitempty,oneof=text binary" yaml:"kind,omitempty"`

	// Description overrides the service's default documentation text
	Description string `mapstructure:"description" yaml:"description,omitempty"`

	// Store names the backing store for object and keys endpoints
	Store string `mapstructure:"store" yaml:"store,omitempty"`

	// Options holds type-specific settings
	Options map[string]any `mapstructure:"options" yaml:"options,omitempty"`
}

// Load loads configuration from file, environment variables, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (EMBEDHTTP_*)
//  2. Configuration file
//  3. Default values
//
// Environment variables use the EMBEDHTTP_ prefix and underscores for nesting:
//   - EMBEDHTTP_LOGGING_LEVEL=DEBUG
//   - EMBEDHTTP_SERVER_PORT=9000
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: EMBEDHTTP_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("EMBEDHTTP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/embedhttp/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// A missing file means defaults; an explicit path that does not
		// exist is reported by the filesystem rather than by viper.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, iofs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "embedhttp")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "embedhttp")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
