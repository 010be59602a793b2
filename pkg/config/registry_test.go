package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeRegistry(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Stores = append(cfg.Stores,
		StoreConfig{Name: "fast", Type: "badger", Options: map[string]any{"in_memory": true}},
		StoreConfig{Name: "files", Type: "filesystem", Options: map[string]any{"path": t.TempDir()}},
	)

	reg, err := InitializeRegistry(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, reg.CloseAll()) }()

	assert.Equal(t, []string{"default", "fast", "files"}, reg.ListStores())
	assert.Zero(t, reg.CountBindings(), "bindings are added by CreateEndpoints")
}

func TestInitializeRegistry_FailureClosesCreatedStores(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Stores = append(cfg.Stores, StoreConfig{Name: "broken", Type: "filesystem", Options: map[string]any{}})

	reg, err := InitializeRegistry(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, reg)
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestInitializeRegistry_NilConfig(t *testing.T) {
	_, err := InitializeRegistry(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestInitializeMetrics_Disabled(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = false

	result := InitializeMetrics(cfg)
	assert.Nil(t, result.Server)
	assert.Nil(t, result.StoreMetrics)
	require.NotNil(t, result.HTTPMetrics)
}
