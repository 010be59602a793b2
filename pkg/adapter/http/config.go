package http

import (
	"fmt"
	"time"
)

// Framing values for HTTPConfig.Framing.
const (
	// FramingBurst ends a request when the peer stops sending for one
	// PollInterval, or half-closes the connection.
	FramingBurst = "burst"

	// FramingContentLength additionally ends a request as soon as the header
	// block and the declared Content-Length bytes have arrived.
	FramingContentLength = "content-length"
)

// DefaultShutdownTimeout is applied when ShutdownTimeout is zero.
const DefaultShutdownTimeout = 30 * time.Second

// HTTPConfig holds configuration parameters for the HTTP endpoint server.
//
// Default values (applied by New if zero):
//   - Bind: "" (all interfaces)
//   - Port: 0 (ephemeral, read the bound port from Port())
//   - MaxConnectionDuration: 5s
//   - PollInterval: 10ms
//   - Framing: "burst"
//   - MaxRequestBytes: 1 MiB
//   - MaxConnections: 0 (unlimited)
//   - AcceptRate: 0 (unlimited)
//   - WriteTimeout: 30s
//   - ShutdownTimeout: 30s
//   - MetricsLogInterval: 5m (0 disables)
type HTTPConfig struct {
	// Bind is the interface address to listen on. Empty means all interfaces.
	Bind string `mapstructure:"bind" yaml:"bind"`

	// Port is the TCP port to listen on. 0 picks an ephemeral port.
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// MaxConnectionDuration bounds a connection's whole life, measured from
	// acceptance. A peer that sends nothing within it is disconnected
	// without a response; a peer still sending when it expires is answered
	// from whatever has been parsed.
	MaxConnectionDuration time.Duration `mapstructure:"max_connection_duration" validate:"gt=0" yaml:"max_connection_duration"`

	// PollInterval is the quiet period after which buffered input is
	// considered a complete request.
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0" yaml:"poll_interval"`

	// Framing selects how the end of a request is detected: "burst" or
	// "content-length".
	Framing string `mapstructure:"framing" validate:"oneof=burst content-length" yaml:"framing"`

	// MaxRequestBytes caps the bytes buffered per request. Larger requests
	// are answered with 400.
	MaxRequestBytes int `mapstructure:"max_request_bytes" validate:"gt=0" yaml:"max_request_bytes"`

	// MaxConnections limits concurrent connections. When reached, the accept
	// loop waits for a slot. 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0" yaml:"max_connections"`

	// AcceptRate limits accepted connections per second. 0 means unlimited.
	AcceptRate uint `mapstructure:"accept_rate" yaml:"accept_rate"`

	// AcceptBurst is the number of connections accepted back to back before
	// AcceptRate applies. Defaults to AcceptRate.
	AcceptBurst uint `mapstructure:"accept_burst" yaml:"accept_burst"`

	// WriteTimeout bounds writing the response. 0 means no timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0" yaml:"write_timeout"`

	// ShutdownTimeout is how long Serve waits for in-flight connections
	// after shutdown begins. Connections are never force-closed.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0" yaml:"shutdown_timeout"`

	// MetricsLogInterval is the interval for logging the active connection
	// count. 0 disables it.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" validate:"min=0" yaml:"metrics_log_interval"`

	// LogTraffic dumps each request and response at info level. The dumps
	// follow the logger level like any other message, so a level of WARN or
	// above suppresses them; Listen warns when that is the case.
	LogTraffic bool `mapstructure:"log_traffic" yaml:"log_traffic"`

	// LogFaults logs handler, accept and connection faults at error level.
	LogFaults bool `mapstructure:"log_faults" yaml:"log_faults"`
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *HTTPConfig) ApplyDefaults() {
	// LogFaults defaults are handled in pkg/config/defaults.go
	// to allow explicit false values from configuration files.

	if c.MaxConnectionDuration == 0 {
		c.MaxConnectionDuration = 5 * time.Second
	}
	if c.PollInterval == 0 {
		c.PollInterval = 10 * time.Millisecond
	}
	if c.Framing == "" {
		c.Framing = FramingBurst
	}
	if c.MaxRequestBytes == 0 {
		c.MaxRequestBytes = 1 << 20
	}
	if c.AcceptRate > 0 && c.AcceptBurst == 0 {
		c.AcceptBurst = c.AcceptRate
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MetricsLogInterval == 0 {
		c.MetricsLogInterval = 5 * time.Minute
	}
}

// Validate checks that the configuration is usable.
func (c *HTTPConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0-65535", c.Port)
	}
	if c.MaxConnectionDuration <= 0 {
		return fmt.Errorf("invalid MaxConnectionDuration %v: must be > 0", c.MaxConnectionDuration)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid PollInterval %v: must be > 0", c.PollInterval)
	}
	if c.Framing != FramingBurst && c.Framing != FramingContentLength {
		return fmt.Errorf("invalid Framing %q: must be %q or %q", c.Framing, FramingBurst, FramingContentLength)
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("invalid MaxRequestBytes %d: must be > 0", c.MaxRequestBytes)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid MaxConnections %d: must be >= 0", c.MaxConnections)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("invalid WriteTimeout %v: must be >= 0", c.WriteTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid ShutdownTimeout %v: must be > 0", c.ShutdownTimeout)
	}
	if c.MetricsLogInterval < 0 {
		return fmt.Errorf("invalid MetricsLogInterval %v: must be >= 0", c.MetricsLogInterval)
	}
	return nil
}
