package adapter

import (
	"context"
	"net"
)

// Adapter represents a protocol server that can be managed by server.Server.
//
// Lifecycle:
//  1. Creation: Adapter is created with protocol-specific configuration
//  2. Binding: Listen() opens the socket so the port is known up front
//  3. Startup: Serve() runs the accept loop and blocks until shutdown
//  4. Shutdown: Stop() closes the listener and waits for in-flight work
//
// Thread safety:
// Implementations must be safe for concurrent use. Stop() may be called
// concurrently with Serve().
type Adapter interface {
	// Listen binds the listening socket without accepting connections yet.
	//
	// Calling Listen more than once is a no-op. Serve calls Listen itself if
	// it has not been called.
	Listen() error

	// Serve accepts connections and blocks until the context is cancelled,
	// Stop is called, or an unrecoverable error occurs.
	//
	// When the context is cancelled, Serve must initiate graceful shutdown:
	//   - Stop accepting new connections
	//   - Wait for active connections to finish (bounded by a timeout)
	//   - Return nil, or an error if connections were still active
	Serve(ctx context.Context) error

	// Stop initiates graceful shutdown of the protocol server.
	//
	// Implementations must:
	//   - Be safe to call multiple times (idempotent)
	//   - Be safe to call concurrently with Serve()
	//   - Respect the context timeout while waiting for connections
	//
	// Returns:
	//   - nil if every connection finished
	//   - error if the context expired first
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging and metrics.
	Protocol() string

	// Port returns the TCP port the adapter is listening on.
	//
	// Returns 0 before Listen() has bound the socket.
	Port() int

	// Addr returns the bound address, or nil before Listen().
	Addr() net.Addr
}
