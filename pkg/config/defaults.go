package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultServerPort is the HTTP port used when none is configured.
	DefaultServerPort = 8080

	// DefaultMetricsPort is the metrics port used when none is configured.
	DefaultMetricsPort = 9090
)

// setViperDefaults registers defaults that must survive an explicit zero
// value in the configuration file.
//
// Booleans that default to true cannot be defaulted in ApplyDefaults: after
// unmarshalling, an explicit "false" is indistinguishable from "unset".
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("server.log_faults", true)
}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by the store factories
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(cfg)
	applyMetricsDefaults(&cfg.Metrics)

	// Serve a health probe and the docs page if nothing is configured
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = []EndpointConfig{
			{Path: "/health", Type: "health"},
			{Path: "/docs", Type: "docs", Options: map[string]any{"format": "yaml"}},
		}
	}

	applyStoreDefaults(cfg.Stores)
	applyEndpointDefaults(cfg.Endpoints)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets HTTP server defaults.
func applyServerDefaults(cfg *Config) {
	// The library treats port 0 as "ephemeral"; the daemon needs a
	// predictable port instead.
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	cfg.Server.ApplyDefaults()
}

// applyMetricsDefaults sets metrics server defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}

// applyStoreDefaults initializes option maps.
func applyStoreDefaults(stores []StoreConfig) {
	for i := range stores {
		if stores[i].Options == nil {
			stores[i].Options = make(map[string]any)
		}
		stores[i].Type = strings.ToLower(stores[i].Type)
	}
}

// applyEndpointDefaults normalizes endpoint types and kinds.
func applyEndpointDefaults(endpoints []EndpointConfig) {
	for i := range endpoints {
		ep := &endpoints[i]
		ep.Type = strings.ToLower(ep.Type)
		ep.Kind = strings.ToLower(ep.Kind)

		if ep.Options == nil {
			ep.Options = make(map[string]any)
		}

		if ep.Type == "docs" {
			if _, ok := ep.Options["format"]; !ok {
				ep.Options["format"] = "yaml"
			}
		}
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Stores: []StoreConfig{
			{
				Name: "default",
				Type: "memory",
				Options: map[string]any{
					"max_size_bytes": int64(64 << 20), // 64MB
				},
			},
		},
		Endpoints: []EndpointConfig{
			{Path: "/health", Type: "health"},
			{Path: "/docs", Type: "docs", Options: map[string]any{"format": "yaml"}},
			{Path: "/echo", Type: "echo", Kind: "text"},
			{Path: "/objects", Type: "object", Store: "default"},
			{Path: "/keys", Type: "keys", Store: "default"},
		},
	}
	cfg.Server.LogFaults = true

	ApplyDefaults(cfg)
	return cfg
}
