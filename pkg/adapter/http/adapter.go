// Package http serves registered endpoints over a minimal HTTP/1.1 subset:
// one request per TCP connection, GET and POST only, and responses framed by
// closing the connection.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/internal/ratelimiter"
	"github.com/marmos91/embedhttp/pkg/adapter"
	"github.com/marmos91/embedhttp/pkg/endpoint"
	"github.com/marmos91/embedhttp/pkg/metrics"
)

var _ adapter.Adapter = (*HTTPAdapter)(nil)

// HTTPAdapter implements the adapter.Adapter interface for the endpoint
// protocol.
//
// Architecture:
// HTTPAdapter owns the TCP listener and the accept loop. Each accepted
// connection is handed to an HTTPConnection running in its own goroutine, so
// a slow peer never holds up the loop. Endpoints are resolved through the
// shared endpoint.Table on every request.
//
// Shutdown flow:
//  1. Context cancelled or Stop() called
//  2. Listener closed (no new connections)
//  3. Wait for active connections to complete (up to ShutdownTimeout)
//
// In-flight connections are never force-closed; each is already bounded by
// MaxConnectionDuration.
//
// Thread safety:
// All methods are safe for concurrent use. The shutdown mechanism uses
// sync.Once so Stop() may be called any number of times.
type HTTPAdapter struct {
	config  HTTPConfig
	table   *endpoint.Table
	metrics metrics.HTTPMetrics

	// limiter throttles the accept loop when AcceptRate > 0
	limiter *ratelimiter.RateLimiter

	// listenMu guards listener creation
	listenMu sync.Mutex
	listener net.Listener

	// port is the bound port, 0 before Listen
	port atomic.Int32

	// activeConns tracks all currently active connections for graceful shutdown
	activeConns sync.WaitGroup

	// shutdownOnce ensures shutdown is only initiated once
	shutdownOnce sync.Once

	// shutdown is closed by initiateShutdown(), monitored by Serve()
	shutdown chan struct{}

	// connCount tracks the current number of active connections
	connCount atomic.Int32

	// connSemaphore limits concurrent connections if MaxConnections > 0
	// nil if MaxConnections is 0 (unlimited)
	connSemaphore chan struct{}

	// shutdownCtx is cancelled during shutdown to release the accept loop
	// from rate limiter waits
	shutdownCtx    context.Context
	cancelRequests context.CancelFunc
}

// New creates a new HTTPAdapter serving the endpoints in table.
//
// Configuration:
//   - Zero values in config are replaced with sensible defaults
//   - Invalid configurations cause a panic (indicates programmer error)
//
// Parameters:
//   - config: Server configuration (port, timeouts, limits)
//   - table: Endpoint table consulted for every request
//   - httpMetrics: Optional metrics collector (nil for no metrics)
//
// Panics if config validation fails or table is nil.
func New(config HTTPConfig, table *endpoint.Table, httpMetrics metrics.HTTPMetrics) *HTTPAdapter {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("invalid HTTP config: %v", err))
	}
	if table == nil {
		panic("HTTP adapter requires an endpoint table")
	}

	var connSemaphore chan struct{}
	if config.MaxConnections > 0 {
		connSemaphore = make(chan struct{}, config.MaxConnections)
		logger.Debug("HTTP connection limit: %d", config.MaxConnections)
	} else {
		logger.Debug("HTTP connection limit: unlimited")
	}

	if httpMetrics == nil {
		httpMetrics = metrics.NewNoopHTTPMetrics()
	}

	shutdownCtx, cancelRequests := context.WithCancel(context.Background())

	return &HTTPAdapter{
		config:         config,
		table:          table,
		metrics:        httpMetrics,
		limiter:        ratelimiter.New(config.AcceptRate, config.AcceptBurst),
		shutdown:       make(chan struct{}),
		connSemaphore:  connSemaphore,
		shutdownCtx:    shutdownCtx,
		cancelRequests: cancelRequests,
	}
}

// Listen binds the TCP listener. It is a no-op if already bound.
func (s *HTTPAdapter) Listen() error {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()

	select {
	case <-s.shutdown:
		return fmt.Errorf("HTTP adapter already stopped")
	default:
	}

	if s.listener != nil {
		return nil
	}

	addr := net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create HTTP listener on %s: %w", addr, err)
	}

	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port.Store(int32(tcpAddr.Port))
	}

	logger.Info("HTTP server listening on %s", listener.Addr())
	logger.Debug("HTTP config: max_connection_duration=%v poll_interval=%v framing=%s max_request_bytes=%d max_connections=%d",
		s.config.MaxConnectionDuration, s.config.PollInterval, s.config.Framing,
		s.config.MaxRequestBytes, s.config.MaxConnections)
	if s.config.LogTraffic && !logger.Enabled(logger.LevelInfo) {
		logger.Warn("HTTP log_traffic is enabled but the log level is above INFO: traffic dumps will not be written")
	}
	return nil
}

// Serve accepts connections until the context is cancelled or Stop() is
// called, then waits up to ShutdownTimeout for active connections.
//
// Accept faults are logged and counted; the loop keeps accepting.
//
// Returns:
//   - nil on graceful shutdown
//   - ErrShutdownTimeout if connections outlived ShutdownTimeout
//   - error if the listener fails to start
//
// Thread safety:
// Serve() should only be called once per HTTPAdapter instance.
func (s *HTTPAdapter) Serve(ctx context.Context) error {
	// A listener bound before Stop ran is still served: Accept fails on the
	// closed socket and Serve returns through the graceful shutdown path.
	s.listenMu.Lock()
	bound := s.listener != nil
	s.listenMu.Unlock()
	if !bound {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("HTTP shutdown signal received: %v", ctx.Err())
			s.initiateShutdown()
		case <-s.shutdown:
		}
	}()

	if s.config.MetricsLogInterval > 0 {
		go s.logMetrics()
	}

	var tempDelay time.Duration
	for {
		if s.connSemaphore != nil {
			select {
			case s.connSemaphore <- struct{}{}:
			case <-s.shutdown:
				return s.gracefulShutdown()
			}
		}

		if !s.limiter.Unlimited() {
			if err := s.limiter.Wait(s.shutdownCtx); err != nil {
				s.releaseSlot()
				return s.gracefulShutdown()
			}
		}

		tcpConn, err := s.listener.Accept()
		if err != nil {
			s.releaseSlot()

			select {
			case <-s.shutdown:
				return s.gracefulShutdown()
			default:
			}

			s.recordFault(fmt.Errorf("%w: %w", ErrAcceptFault, err))

			// Back off on repeated failures (e.g. file descriptor exhaustion)
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay = min(tempDelay*2, time.Second)
			}
			select {
			case <-time.After(tempDelay):
			case <-s.shutdown:
				return s.gracefulShutdown()
			}
			continue
		}
		tempDelay = 0

		s.activeConns.Add(1)
		s.connCount.Add(1)

		s.metrics.RecordConnectionAccepted()
		currentConns := s.connCount.Load()
		s.metrics.SetActiveConnections(currentConns)

		logger.Debug("HTTP connection accepted from %s (active: %d)",
			tcpConn.RemoteAddr(), currentConns)

		conn := NewHTTPConnection(s, tcpConn)
		go func() {
			defer func() {
				currentConns := s.connCount.Add(-1)
				s.metrics.RecordConnectionClosed()
				s.metrics.SetActiveConnections(currentConns)

				logger.Debug("HTTP connection closed from %s (active: %d)",
					conn.RemoteAddr(), currentConns)

				s.releaseSlot()
				s.activeConns.Done()
			}()

			conn.Serve()
		}()
	}
}

func (s *HTTPAdapter) releaseSlot() {
	if s.connSemaphore != nil {
		<-s.connSemaphore
	}
}

// initiateShutdown closes the shutdown channel and the listener.
// Safe to call multiple times and from multiple goroutines.
func (s *HTTPAdapter) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		logger.Debug("HTTP shutdown initiated")

		close(s.shutdown)

		s.listenMu.Lock()
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logger.Debug("Error closing HTTP listener: %v", err)
			}
		}
		s.listenMu.Unlock()

		s.cancelRequests()
	})
}

// gracefulShutdown waits for active connections to complete or for
// ShutdownTimeout to expire. Remaining connections are left to finish on
// their own deadlines.
func (s *HTTPAdapter) gracefulShutdown() error {
	activeCount := s.connCount.Load()
	logger.Info("HTTP graceful shutdown: waiting for %d active connection(s) (timeout: %v)",
		activeCount, s.config.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.waitForConnections(ctx); err != nil {
		remaining := s.connCount.Load()
		logger.Warn("HTTP shutdown timeout exceeded: %d connection(s) still active after %v",
			remaining, s.config.ShutdownTimeout)
		return fmt.Errorf("%w: %d connection(s) still active", ErrShutdownTimeout, remaining)
	}

	logger.Info("HTTP graceful shutdown complete: all connections closed")
	return nil
}

func (s *HTTPAdapter) waitForConnections(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the listener and waits for active connections until ctx is
// done. Connections still running when ctx expires keep running.
//
// Stop is safe to call multiple times and concurrently with Serve().
func (s *HTTPAdapter) Stop(ctx context.Context) error {
	s.initiateShutdown()

	activeCount := s.connCount.Load()
	logger.Debug("HTTP stop: waiting for %d active connection(s)", activeCount)

	if err := s.waitForConnections(ctx); err != nil {
		remaining := s.connCount.Load()
		logger.Warn("HTTP stop context done: %d connection(s) still active: %v", remaining, err)
		return err
	}
	return nil
}

// logMetrics periodically logs the active connection count until shutdown.
func (s *HTTPAdapter) logMetrics() {
	ticker := time.NewTicker(s.config.MetricsLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			logger.Info("HTTP metrics: active_connections=%d endpoints=%d",
				s.connCount.Load(), s.table.Len())
		}
	}
}

// recordFault counts a fault and logs it when LogFaults is enabled.
func (s *HTTPAdapter) recordFault(err error) {
	if kind := faultKind(err); kind != "" {
		s.metrics.RecordFault(kind)
	}
	if s.config.LogFaults {
		logger.Error("HTTP %v", err)
	} else {
		logger.Debug("HTTP %v", err)
	}
}

// GetActiveConnections returns the current number of active connections.
func (s *HTTPAdapter) GetActiveConnections() int32 {
	return s.connCount.Load()
}

// Port returns the bound TCP port, or 0 before Listen().
func (s *HTTPAdapter) Port() int {
	return int(s.port.Load())
}

// Addr returns the bound address, or nil before Listen().
func (s *HTTPAdapter) Addr() net.Addr {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Protocol returns "HTTP" as the protocol identifier.
func (s *HTTPAdapter) Protocol() string {
	return "HTTP"
}

// Table returns the endpoint table the adapter dispatches through.
func (s *HTTPAdapter) Table() *endpoint.Table {
	return s.table
}

// Config returns the effective configuration, defaults applied.
func (s *HTTPAdapter) Config() HTTPConfig {
	return s.config
}

// isTimeout reports whether err is a deadline expiry on a net.Conn.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
