package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultConfig(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "INFO"

server:
  port: 9000
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if !cfg.Server.LogFaults {
		t.Error("Expected log_faults enabled by default")
	}
	if len(cfg.Endpoints) != 2 {
		t.Errorf("Expected 2 default endpoints, got %d", len(cfg.Endpoints))
	}
}

func TestLoad_ExplicitFalseSurvivesDefaults(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
server:
  log_faults: false
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.LogFaults {
		t.Error("Expected explicit log_faults: false to be preserved")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// An explicit path keeps the user's ~/.config/embedhttp out of the test
	nonExistentPath := filepath.Join(t.TempDir(), "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Expected default port %d, got %d", DefaultServerPort, cfg.Server.Port)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid.yaml", `
logging:
  level: INFO
  invalid yaml here [[[
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
[logging]
level = "WARN"
format = "json"

[server]
port = 9001
framing = "content-length"

[[stores]]
name = "blobs"
type = "memory"

[[endpoints]]
path = "/blob"
type = "object"
store = "blobs"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if cfg.Server.Framing != "content-length" {
		t.Errorf("Expected framing 'content-length', got %q", cfg.Server.Framing)
	}
	if len(cfg.Stores) != 1 || cfg.Stores[0].Name != "blobs" {
		t.Errorf("Expected store 'blobs', got %+v", cfg.Stores)
	}
	if len(cfg.Endpoints) != 1 || cfg.Endpoints[0].Store != "blobs" {
		t.Errorf("Expected one object endpoint on 'blobs', got %+v", cfg.Endpoints)
	}
}

func TestLoad_Durations(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
server:
  max_connection_duration: 2s
  poll_interval: 25ms
  shutdown_timeout: 1m
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.MaxConnectionDuration != 2*time.Second {
		t.Errorf("Expected max_connection_duration 2s, got %v", cfg.Server.MaxConnectionDuration)
	}
	if cfg.Server.PollInterval != 25*time.Millisecond {
		t.Errorf("Expected poll_interval 25ms, got %v", cfg.Server.PollInterval)
	}
	if cfg.Server.ShutdownTimeout != time.Minute {
		t.Errorf("Expected shutdown_timeout 1m, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
endpoints:
  - path: /blob
    type: object
    store: missing
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected validation error for unknown store")
	}
	if !strings.Contains(err.Error(), "unknown store") {
		t.Errorf("Expected 'unknown store' error, got: %v", err)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Expected default port %d, got %d", DefaultServerPort, cfg.Server.Port)
	}
	if cfg.Server.Framing != "burst" {
		t.Errorf("Expected default framing 'burst', got %q", cfg.Server.Framing)
	}
	if !cfg.Server.LogFaults {
		t.Error("Expected log_faults enabled by default")
	}
	if len(cfg.Stores) != 1 || cfg.Stores[0].Type != "memory" {
		t.Errorf("Expected one memory store, got %+v", cfg.Stores)
	}
	if len(cfg.Endpoints) != 5 {
		t.Errorf("Expected 5 default endpoints, got %d", len(cfg.Endpoints))
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != "embedhttp" {
		t.Errorf("Expected parent directory 'embedhttp', got %q", filepath.Dir(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	if dir := GetConfigDir(); dir != filepath.Join("/tmp/xdg", "embedhttp") {
		t.Errorf("Expected XDG config dir, got %q", dir)
	}
}

func TestConfigExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if ConfigExists() {
		t.Fatal("Expected no config in a fresh directory")
	}
	if _, err := InitConfig(false); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if !ConfigExists() {
		t.Error("Expected config to exist after InitConfig")
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("EMBEDHTTP_LOGGING_LEVEL", "ERROR")
	t.Setenv("EMBEDHTTP_SERVER_PORT", "9500")

	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "INFO"

server:
  port: 9000
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Server.Port != 9500 {
		t.Errorf("Expected port 9500 from env var, got %d", cfg.Server.Port)
	}
}
