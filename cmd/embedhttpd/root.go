package main

import (
	"fmt"

	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/pkg/config"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

var (
	// configFile is the --config flag value; empty means the default location
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "embedhttpd",
	Short: "embedhttpd - embeddable HTTP/1.1 endpoint server",
	Long: `embedhttpd serves a table of named endpoints over a minimal HTTP/1.1
subset: one request per connection, GET and POST only, fixed error bodies.

Endpoints, the object stores behind them and the server limits are read from
a YAML or TOML configuration file. Run 'embedhttpd init' to write a sample.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("embedhttpd version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		fmt.Sprintf("Config file (default %s)", config.GetDefaultConfigPath()))
}

// loadConfig loads the configuration and applies its logging section.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		return nil, fmt.Errorf("configure log output: %w", err)
	}

	return cfg, nil
}
