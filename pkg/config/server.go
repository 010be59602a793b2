package config

import (
	"fmt"

	"github.com/marmos91/embedhttp/pkg/metrics"
	"github.com/marmos91/embedhttp/pkg/registry"
	"github.com/marmos91/embedhttp/pkg/server"
)

// CreateServer creates a stopped server with every configured endpoint
// registered.
//
// Parameters:
//   - cfg: The complete configuration
//   - reg: Registry holding the configured stores (from InitializeRegistry)
//   - httpMetrics: Optional HTTP metrics collector (nil = no metrics)
//
// Returns:
//   - *server.Server: Server ready for Start or Serve
//   - error: Any error building or registering an endpoint
func CreateServer(cfg *Config, reg *registry.Registry, httpMetrics metrics.HTTPMetrics) (*server.Server, error) {
	descriptors, err := CreateEndpoints(reg, cfg.Endpoints)
	if err != nil {
		return nil, err
	}

	srv := server.New(cfg.Server, httpMetrics)
	for _, d := range descriptors {
		if err := srv.AddServiceAt(d.Path, d); err != nil {
			return nil, fmt.Errorf("register endpoint %q: %w", d.Path, err)
		}
	}

	return srv, nil
}
