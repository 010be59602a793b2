package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/pkg/config"
	"github.com/spf13/cobra"
)

var (
	servePort int
	serveBind string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the endpoint server",
	Long: `Start the endpoint server with the configured stores and endpoints.

The server runs until SIGINT or SIGTERM, then stops accepting connections and
waits up to server.shutdown_timeout for in-flight requests to finish.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides server.port)")
	serveCmd.Flags().StringVar(&serveBind, "bind", "", "Interface to bind (overrides server.bind)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("bind") {
		cfg.Server.Bind = serveBind
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("embedhttpd %s (commit %s)", version, commit)

	m := config.InitializeMetrics(cfg)

	reg, err := config.InitializeRegistry(ctx, cfg, m.StoreMetrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := reg.CloseAll(); err != nil {
			logger.Error("Failed to close stores: %v", err)
		}
	}()

	srv, err := config.CreateServer(cfg, reg, m.HTTPMetrics)
	if err != nil {
		return err
	}

	metricsDone := make(chan error, 1)
	if m.Server != nil {
		if err := m.Server.Listen(); err != nil {
			return err
		}
		go func() { metricsDone <- m.Server.Start(ctx) }()
	} else {
		close(metricsDone)
	}

	logger.Info("Serving %d endpoint(s). Press Ctrl+C to stop.", len(srv.Services()))

	serveErr := srv.Serve(ctx)

	// Serve only returns after ctx is done or on startup failure; make
	// sure the metrics server follows it down.
	stop()
	metricsErr := <-metricsDone

	if err := errors.Join(serveErr, metricsErr); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
