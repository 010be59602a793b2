package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/pkg/adapter"
	httpadapter "github.com/marmos91/embedhttp/pkg/adapter/http"
	"github.com/marmos91/embedhttp/pkg/endpoint"
	"github.com/marmos91/embedhttp/pkg/metrics"
)

// Server is the host-facing API: it owns the endpoint table and the HTTP
// adapter serving it.
//
// Lifecycle:
//  1. Creation: New() with the HTTP configuration
//  2. Registration: AddService()/AddServiceAt() for each endpoint
//  3. Startup: Start(port) binds and begins accepting in the background
//  4. Shutdown: Stop() closes the listener and waits for in-flight connections
//
// Registering before Start is recommended. The table is guarded by a RWMutex,
// so services may still be added or removed while serving; a request sees the
// table either before or after each change, never in between.
//
// Thread safety:
// All methods are safe for concurrent use.
//
// Example usage:
//
//	srv := server.New(httpadapter.HTTPConfig{}, nil)
//	srv.AddServiceAt("/ping", endpoint.Descriptor{
//	    Kind: endpoint.KindText,
//	    Text: func(ctx context.Context, call *endpoint.Call) (string, error) { return "pong", nil },
//	})
//	if err := srv.Start(8080); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(context.Background())
type Server struct {
	table   *endpoint.Table
	config  httpadapter.HTTPConfig
	metrics metrics.HTTPMetrics

	// mu protects adapter and serveDone
	mu sync.Mutex

	// adapter is the running adapter, nil when stopped
	adapter adapter.Adapter

	// serveDone receives the adapter's Serve result
	serveDone chan error
}

// New creates a stopped Server with an empty endpoint table.
//
// Parameters:
//   - config: HTTP adapter configuration; Port is overridden by Start
//   - httpMetrics: Optional metrics collector (nil for no metrics)
func New(config httpadapter.HTTPConfig, httpMetrics metrics.HTTPMetrics) *Server {
	return &Server{
		table:   endpoint.NewTable(),
		config:  config,
		metrics: httpMetrics,
	}
}

// AddService registers every endpoint src provides, all or nothing, and
// returns the registered (lower-cased) paths.
func (s *Server) AddService(src endpoint.Source) ([]string, error) {
	paths, err := s.table.AddSource(src)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		logger.Debug("Registered endpoint %s", p)
	}
	return paths, nil
}

// AddServiceAt registers d under path. It fails with
// endpoint.ErrDuplicateEndpoint if the lower-cased path is taken.
func (s *Server) AddServiceAt(path string, d endpoint.Descriptor) error {
	if err := s.table.Add(path, d); err != nil {
		return err
	}
	logger.Debug("Registered endpoint %s", endpoint.NormalizePath(path))
	return nil
}

// TryGetService returns the descriptor registered at path.
func (s *Server) TryGetService(path string) (endpoint.Descriptor, bool) {
	return s.table.Lookup(path)
}

// RemoveService unregisters path, reporting whether it was registered.
func (s *Server) RemoveService(path string) bool {
	removed := s.table.Remove(path)
	if removed {
		logger.Debug("Removed endpoint %s", endpoint.NormalizePath(path))
	}
	return removed
}

// Services returns every registered descriptor sorted by path.
func (s *Server) Services() []endpoint.Descriptor {
	return s.table.Snapshot()
}

// Table returns the server's endpoint table.
func (s *Server) Table() *endpoint.Table {
	return s.table
}

// Start binds port (0 for an ephemeral port) and accepts connections in the
// background. Calling Start on a running server is a no-op.
//
// The listener is bound before Start returns, so Addr() is valid and bind
// errors are reported here, as is an out-of-range port or other invalid
// configuration.
func (s *Server) Start(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.adapter != nil {
		logger.Debug("Server already started on %s", s.adapter.Addr())
		return nil
	}

	cfg := s.config
	cfg.Port = port
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid HTTP config: %w", err)
	}

	a := httpadapter.New(cfg, s.table, s.metrics)
	if err := a.Listen(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		err := a.Serve(context.Background())
		if err != nil {
			logger.Warn("%s adapter stopped with error: %v", a.Protocol(), err)
		} else {
			logger.Info("%s adapter stopped", a.Protocol())
		}
		done <- err
	}()

	s.adapter = a
	s.serveDone = done
	logger.Info("Server started with %d endpoint(s) on %s", s.table.Len(), a.Addr())
	return nil
}

// Stop closes the listener and waits, until ctx is done, for in-flight
// connections to finish. Connections are never force-closed. Stopping a
// stopped server is a no-op. A stopped server can be started again.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	a, done := s.adapter, s.serveDone
	s.adapter, s.serveDone = nil, nil
	s.mu.Unlock()

	if a == nil {
		return nil
	}

	logger.Info("Stopping %s adapter (port %d)", a.Protocol(), a.Port())
	if err := a.Stop(ctx); err != nil {
		return fmt.Errorf("stop %s adapter: %w", a.Protocol(), err)
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Serve starts the server on the configured port and blocks until ctx is
// cancelled, then stops it within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(s.config.Port); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received (reason: %v)", ctx.Err())

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = httpadapter.DefaultShutdownTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.Stop(stopCtx)
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapter != nil
}

// Addr returns the bound address, or nil when stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter == nil {
		return nil
	}
	return s.adapter.Addr()
}

// Port returns the bound port, or 0 when stopped.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter == nil {
		return 0
	}
	return s.adapter.Port()
}
