package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configHeader = `# embedhttpd Configuration File
#
# Values can be overridden with environment variables using the EMBEDHTTP_
# prefix and underscores for nesting, e.g. EMBEDHTTP_SERVER_PORT=9000.
#
# A JSON schema for this file can be generated with cmd/generate-schema.

`

// configSection is one top-level block of the generated file.
type configSection struct {
	comment string
	key     string
	value   any
}

// InitConfig writes a sample configuration file to the default location.
//
// Returns the path of the written file. Fails if the file already exists
// unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration file to path, creating
// parent directories as needed.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	content, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateYAMLWithComments renders cfg as YAML, one commented section per
// top-level key.
func generateYAMLWithComments(cfg *Config) (string, error) {
	sections := []configSection{
		{
			comment: "# Logging: level is DEBUG, INFO, WARN or ERROR; format is text or json;\n" +
				"# output is stdout, stderr or a file path.\n",
			key:   "logging",
			value: cfg.Logging,
		},
		{
			comment: "# HTTP server. Each connection carries exactly one request and is closed\n" +
				"# after the response. A request ends when the peer pauses for poll_interval\n" +
				"# (framing: burst) or once Content-Length bytes arrived (framing: content-length).\n",
			key:   "server",
			value: cfg.Server,
		},
		{
			comment: "# Prometheus metrics, served at http://<host>:<port>/metrics when enabled.\n",
			key:     "metrics",
			value:   cfg.Metrics,
		},
		{
			comment: "# Named object stores. Types: memory, badger, filesystem, s3.\n",
			key:     "stores",
			value:   cfg.Stores,
		},
		{
			comment: "# Endpoints registered at startup.\n" +
				"# Types: static, echo, health, docs, object, keys.\n" +
				"# object and keys endpoints name a store. An object endpoint without a key\n" +
				"# reads the object name from the X-Object-Key request header.\n",
			key:   "endpoints",
			value: cfg.Endpoints,
		},
	}

	var b strings.Builder
	b.WriteString(configHeader)

	for i, s := range sections {
		out, err := yaml.Marshal(map[string]any{s.key: s.value})
		if err != nil {
			return "", fmt.Errorf("marshal %s: %w", s.key, err)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.comment)
		b.Write(out)
	}

	return b.String(), nil
}
