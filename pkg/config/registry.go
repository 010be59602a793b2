package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/pkg/metrics"
	"github.com/marmos91/embedhttp/pkg/registry"
	"github.com/marmos91/embedhttp/pkg/store"
)

// InitializeRegistry creates a Registry holding every configured store.
//
// Each store is created by CreateStore and wrapped with storeMetrics (nil
// means no-op) before registration. If any store fails to initialize, the
// stores created so far are closed and the error is returned.
//
// Endpoint bindings are added later, by CreateEndpoints.
//
// Example:
//
//	cfg, _ := config.Load("config.yaml")
//	reg, err := config.InitializeRegistry(ctx, cfg, nil)
//	if err != nil {
//	    log.Fatalf("Failed to initialize registry: %v", err)
//	}
//	defer reg.CloseAll()
func InitializeRegistry(ctx context.Context, cfg *Config, storeMetrics metrics.StoreMetrics) (*registry.Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}

	logger.Debug("Initializing registry from configuration")

	reg := registry.NewRegistry()

	if err := registerStores(ctx, reg, cfg, storeMetrics); err != nil {
		if closeErr := reg.CloseAll(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, fmt.Errorf("failed to register stores: %w", err)
	}
	logger.Debug("Registered %d store(s)", reg.CountStores())

	return reg, nil
}

// registerStores creates and registers all configured stores.
func registerStores(ctx context.Context, reg *registry.Registry, cfg *Config, storeMetrics metrics.StoreMetrics) error {
	for i, storeCfg := range cfg.Stores {
		st, err := CreateStore(ctx, storeCfg)
		if err != nil {
			return fmt.Errorf("stores[%d] %q: %w", i, storeCfg.Name, err)
		}

		if err := reg.RegisterStore(storeCfg.Name, store.Instrument(storeCfg.Name, st, storeMetrics)); err != nil {
			_ = st.Close()
			return fmt.Errorf("stores[%d]: %w", i, err)
		}

		logger.Info("Store %q initialized (type=%s)", storeCfg.Name, storeCfg.Type)
	}
	return nil
}
