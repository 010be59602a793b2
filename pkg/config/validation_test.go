package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "invalid log level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "INVALID" },
			wantErr: "oneof",
		},
		{
			name:    "invalid log format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "oneof",
		},
		{
			name:    "negative port",
			mutate:  func(cfg *Config) { cfg.Server.Port = -1 },
			wantErr: "min",
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: "max",
		},
		{
			name:    "invalid framing",
			mutate:  func(cfg *Config) { cfg.Server.Framing = "chunked" },
			wantErr: "oneof",
		},
		{
			name:    "zero poll interval",
			mutate:  func(cfg *Config) { cfg.Server.PollInterval = 0 },
			wantErr: "gt",
		},
		{
			name:    "negative max connections",
			mutate:  func(cfg *Config) { cfg.Server.MaxConnections = -1 },
			wantErr: "min",
		},
		{
			name:    "invalid store type",
			mutate:  func(cfg *Config) { cfg.Stores[0].Type = "redis" },
			wantErr: "oneof",
		},
		{
			name:    "empty store name",
			mutate:  func(cfg *Config) { cfg.Stores[0].Name = "" },
			wantErr: "required",
		},
		{
			name: "duplicate store names",
			mutate: func(cfg *Config) {
				cfg.Stores = append(cfg.Stores, StoreConfig{Name: "default", Type: "memory"})
			},
			wantErr: "duplicate store name",
		},
		{
			name:    "endpoint path without slash",
			mutate:  func(cfg *Config) { cfg.Endpoints[0].Path = "health" },
			wantErr: "startswith",
		},
		{
			name:    "invalid endpoint type",
			mutate:  func(cfg *Config) { cfg.Endpoints[0].Type = "proxy" },
			wantErr: "oneof",
		},
		{
			name:    "invalid endpoint kind",
			mutate:  func(cfg *Config) { cfg.Endpoints[0].Kind = "json" },
			wantErr: "oneof",
		},
		{
			name: "duplicate endpoint paths differing in case",
			mutate: func(cfg *Config) {
				cfg.Endpoints = append(cfg.Endpoints, EndpointConfig{Path: "/HEALTH", Type: "health"})
			},
			wantErr: "duplicate endpoint path",
		},
		{
			name: "object endpoint without store",
			mutate: func(cfg *Config) {
				cfg.Endpoints = append(cfg.Endpoints, EndpointConfig{Path: "/blob", Type: "object"})
			},
			wantErr: "requires a store",
		},
		{
			name: "endpoint with unknown store",
			mutate: func(cfg *Config) {
				cfg.Endpoints = append(cfg.Endpoints, EndpointConfig{Path: "/blob", Type: "keys", Store: "missing"})
			},
			wantErr: "unknown store",
		},
		{
			name:    "store on an endpoint that does not use one",
			mutate:  func(cfg *Config) { cfg.Endpoints[0].Store = "default" },
			wantErr: "does not use a store",
		},
		{
			name: "metrics port collides with server",
			mutate: func(cfg *Config) {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Port = cfg.Server.Port
			},
			wantErr: "already used",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "ERROR"} {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		if err := Validate(cfg); err != nil {
			t.Errorf("Expected level %q to be accepted, got: %v", level, err)
		}
	}
}

func TestValidate_MetricsPortIgnoredWhenDisabled(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = false
	cfg.Metrics.Port = cfg.Server.Port

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected disabled metrics to skip the port check, got: %v", err)
	}
}
