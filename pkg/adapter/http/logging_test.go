package http

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/pkg/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level string) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	logger.SetWriter(&buf)
	logger.SetLevel(level)
	t.Cleanup(func() {
		logger.SetWriter(os.Stdout)
		logger.SetLevel("INFO")
	})
	return &buf
}

func TestLogTrafficSuppressedByLevel(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logTraffic bool
		wantWarn   bool
	}{
		{"WarnLevelWithTraffic", "WARN", true, true},
		{"InfoLevelWithTraffic", "INFO", true, false},
		{"WarnLevelWithoutTraffic", "WARN", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t, tt.level)

			cfg := testConfig()
			cfg.LogTraffic = tt.logTraffic
			a := New(cfg, endpoint.NewTable(), nil)
			require.NoError(t, a.Listen())
			require.NoError(t, a.Stop(context.Background()))

			if tt.wantWarn {
				assert.Contains(t, buf.String(), "traffic dumps will not be written")
			} else {
				assert.NotContains(t, buf.String(), "traffic dumps")
			}
		})
	}
}
