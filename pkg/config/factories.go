package config

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/pkg/endpoint"
	"github.com/marmos91/embedhttp/pkg/registry"
	"github.com/marmos91/embedhttp/pkg/services"
	"github.com/marmos91/embedhttp/pkg/store"
	storeBadger "github.com/marmos91/embedhttp/pkg/store/badger"
	storeFs "github.com/marmos91/embedhttp/pkg/store/fs"
	storeMemory "github.com/marmos91/embedhttp/pkg/store/memory"
	storeS3 "github.com/marmos91/embedhttp/pkg/store/s3"
	"github.com/mitchellh/mapstructure"
)

// decodeOptions decodes a type-specific option map into out.
//
// Values coming from YAML, TOML and environment variables arrive with loose
// types, so weak typing is enabled and durations may be written as strings.
func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}

// ============================================================================
// Stores
// ============================================================================

// CreateStore creates an object store based on configuration.
//
// This factory function uses the Type field to determine which store implementation
// to create, then decodes the type-specific configuration from the Options map
// and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/store/memory (volatile, optionally bounded)
//   - "badger": Uses pkg/store/badger (BadgerDB storage, persistent)
//   - "filesystem": Uses pkg/store/fs (one file per object)
//   - "s3": Uses pkg/store/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Store configuration
//
// Returns:
//   - store.Store: Initialized store
//   - error: Configuration or initialization error
func CreateStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "memory":
		return createMemoryStore(cfg.Options)
	case "badger":
		return createBadgerStore(ctx, cfg.Options)
	case "filesystem":
		return createFilesystemStore(cfg.Options)
	case "s3":
		return createS3Store(ctx, cfg.Options)
	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Type)
	}
}

// createMemoryStore creates an in-memory store.
func createMemoryStore(options map[string]any) (store.Store, error) {
	type MemoryStoreConfig struct {
		MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	}

	var storeCfg MemoryStoreConfig
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode memory store config: %w", err)
	}

	if storeCfg.MaxSizeBytes < 0 {
		return nil, fmt.Errorf("memory store: max_size_bytes must be >= 0")
	}

	return storeMemory.New(storeCfg.MaxSizeBytes), nil
}

// createBadgerStore creates a BadgerDB-backed store.
func createBadgerStore(ctx context.Context, options map[string]any) (store.Store, error) {
	type BadgerStoreConfig struct {
		Path             string `mapstructure:"path"`
		InMemory         bool   `mapstructure:"in_memory"`
		SyncWrites       bool   `mapstructure:"sync_writes"`
		BlockCacheSizeMB int64  `mapstructure:"block_cache_size_mb"`
		IndexCacheSizeMB int64  `mapstructure:"index_cache_size_mb"`
	}

	var storeCfg BadgerStoreConfig
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger store config: %w", err)
	}

	if storeCfg.Path == "" && !storeCfg.InMemory {
		return nil, fmt.Errorf("badger store: path is required unless in_memory is set")
	}

	st, err := storeBadger.New(ctx, storeBadger.Config{
		DBPath:           storeCfg.Path,
		InMemory:         storeCfg.InMemory,
		SyncWrites:       storeCfg.SyncWrites,
		BlockCacheSizeMB: storeCfg.BlockCacheSizeMB,
		IndexCacheSizeMB: storeCfg.IndexCacheSizeMB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger store: %w", err)
	}

	return st, nil
}

// createFilesystemStore creates a filesystem-backed store.
func createFilesystemStore(options map[string]any) (store.Store, error) {
	type FilesystemStoreConfig struct {
		Path     string `mapstructure:"path"`
		FilePerm uint32 `mapstructure:"file_perm"`
	}

	var storeCfg FilesystemStoreConfig
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("filesystem store: path is required")
	}

	st, err := storeFs.New(storeFs.Config{
		BasePath: storeCfg.Path,
		FilePerm: os.FileMode(storeCfg.FilePerm),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem store: %w", err)
	}

	return st, nil
}

// createS3Store creates an S3-backed store.
func createS3Store(ctx context.Context, options map[string]any) (store.Store, error) {
	type S3StoreConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeCfg S3StoreConfig
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 store config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 store: region is required")
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	configOptions := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(storeCfg.Region),
	}

	// Static credentials if provided, otherwise the default credential chain
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(storeCfg.AccessKeyID, storeCfg.SecretAccessKey, ""),
		))
	}

	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		// Custom endpoints (MinIO, Localstack) need path-style addressing
		if storeCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(storeCfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create S3 Store
	// ========================================================================

	st, err := storeS3.New(storeS3.Config{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 store: %w", err)
	}

	logger.Info("S3 store initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return st, nil
}

// ============================================================================
// Endpoints
// ============================================================================

// CreateEndpoint builds the descriptor for one configured endpoint.
//
// Object and keys endpoints resolve their store through reg and record a
// binding, so the registry knows which endpoints depend on which store.
func CreateEndpoint(reg *registry.Registry, cfg EndpointConfig) (endpoint.Descriptor, error) {
	kind, err := endpoint.ParseKind(cfg.Kind)
	if err != nil {
		return endpoint.Descriptor{}, fmt.Errorf("endpoint %q: %w", cfg.Path, err)
	}

	var d endpoint.Descriptor

	switch cfg.Type {
	case "static":
		var opts struct {
			Payload string `mapstructure:"payload"`
		}
		if err := decodeOptions(cfg.Options, &opts); err != nil {
			return d, fmt.Errorf("endpoint %q: failed to decode static options: %w", cfg.Path, err)
		}
		if opts.Payload == "" {
			return d, fmt.Errorf("endpoint %q: static endpoint requires a payload", cfg.Path)
		}
		d = services.Static(cfg.Path, kind, []byte(opts.Payload))

	case "echo":
		if err := decodeOptions(cfg.Options, &struct{}{}); err != nil {
			return d, fmt.Errorf("endpoint %q: %w", cfg.Path, err)
		}
		d = services.Echo(cfg.Path, kind)

	case "health":
		if err := decodeOptions(cfg.Options, &struct{}{}); err != nil {
			return d, fmt.Errorf("endpoint %q: %w", cfg.Path, err)
		}
		d = services.Health(cfg.Path)

	case "docs":
		var opts struct {
			Format string `mapstructure:"format"`
		}
		if err := decodeOptions(cfg.Options, &opts); err != nil {
			return d, fmt.Errorf("endpoint %q: failed to decode docs options: %w", cfg.Path, err)
		}
		if opts.Format == "" {
			opts.Format = "yaml"
		}
		d, err = services.Docs(cfg.Path, opts.Format)
		if err != nil {
			return d, fmt.Errorf("endpoint %q: %w", cfg.Path, err)
		}

	case "object":
		var opts struct {
			Key      string `mapstructure:"key"`
			ReadOnly bool   `mapstructure:"read_only"`
		}
		if err := decodeOptions(cfg.Options, &opts); err != nil {
			return d, fmt.Errorf("endpoint %q: failed to decode object options: %w", cfg.Path, err)
		}
		st, err := bindStore(reg, cfg, opts.ReadOnly)
		if err != nil {
			return d, err
		}
		d = services.Object(cfg.Path, st, opts.Key, services.ReadOnly(opts.ReadOnly))

	case "keys":
		var opts struct {
			Prefix string `mapstructure:"prefix"`
		}
		if err := decodeOptions(cfg.Options, &opts); err != nil {
			return d, fmt.Errorf("endpoint %q: failed to decode keys options: %w", cfg.Path, err)
		}
		st, err := bindStore(reg, cfg, true)
		if err != nil {
			return d, err
		}
		d = services.Keys(cfg.Path, st, opts.Prefix)

	default:
		return d, fmt.Errorf("endpoint %q: unknown endpoint type %q", cfg.Path, cfg.Type)
	}

	if cfg.Description != "" {
		d.Description = cfg.Description
	}

	return d, nil
}

// bindStore resolves the endpoint's store and records the binding.
func bindStore(reg *registry.Registry, cfg EndpointConfig, readOnly bool) (store.Store, error) {
	if reg == nil {
		return nil, fmt.Errorf("endpoint %q: no registry to resolve store %q", cfg.Path, cfg.Store)
	}

	if err := reg.Bind(&registry.Binding{
		Path:     cfg.Path,
		Store:    cfg.Store,
		ReadOnly: readOnly,
	}); err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", cfg.Path, err)
	}

	return reg.GetStoreForEndpoint(cfg.Path)
}

// CreateEndpoints builds descriptors for every configured endpoint, in
// configuration order.
func CreateEndpoints(reg *registry.Registry, cfgs []EndpointConfig) ([]endpoint.Descriptor, error) {
	descriptors := make([]endpoint.Descriptor, 0, len(cfgs))
	for _, cfg := range cfgs {
		d, err := CreateEndpoint(reg, cfg)
		if err != nil {
			return nil, err
		}
		logger.Debug("Endpoint %s: type=%s kind=%s", cfg.Path, cfg.Type, d.Kind)
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}
