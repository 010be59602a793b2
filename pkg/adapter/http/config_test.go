package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPConfigDefaults(t *testing.T) {
	var cfg HTTPConfig
	cfg.ApplyDefaults()

	assert.Equal(t, 5*time.Second, cfg.MaxConnectionDuration)
	assert.Equal(t, 10*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, FramingBurst, cfg.Framing)
	assert.Equal(t, 1<<20, cfg.MaxRequestBytes)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Zero(t, cfg.AcceptBurst)
	require.NoError(t, cfg.Validate())

	limited := HTTPConfig{AcceptRate: 50}
	limited.ApplyDefaults()
	assert.Equal(t, uint(50), limited.AcceptBurst)
}

func TestHTTPConfigValidate(t *testing.T) {
	valid := func() HTTPConfig {
		var c HTTPConfig
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*HTTPConfig)
	}{
		{"PortTooLarge", func(c *HTTPConfig) { c.Port = 70000 }},
		{"NegativePort", func(c *HTTPConfig) { c.Port = -1 }},
		{"ZeroDuration", func(c *HTTPConfig) { c.MaxConnectionDuration = -time.Second }},
		{"UnknownFraming", func(c *HTTPConfig) { c.Framing = "chunked" }},
		{"NegativeMaxConnections", func(c *HTTPConfig) { c.MaxConnections = -1 }},
		{"NegativeWriteTimeout", func(c *HTTPConfig) { c.WriteTimeout = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
