package config

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marmos91/embedhttp/pkg/endpoint"
	"github.com/marmos91/embedhttp/pkg/registry"
	"github.com/marmos91/embedhttp/pkg/services"
	storeMemory "github.com/marmos91/embedhttp/pkg/store/memory"
)

// ============================================================================
// Stores
// ============================================================================

func TestCreateStore_Memory(t *testing.T) {
	st, err := CreateStore(context.Background(), StoreConfig{
		Name:    "m",
		Type:    "memory",
		Options: map[string]any{"max_size_bytes": "1024"},
	})
	if err != nil {
		t.Fatalf("Failed to create memory store: %v", err)
	}
	defer func() { _ = st.Close() }()

	if _, ok := st.(*storeMemory.MemoryStore); !ok {
		t.Errorf("Expected *memory.MemoryStore, got %T", st)
	}
}

func TestCreateStore_MemoryNegativeSize(t *testing.T) {
	_, err := CreateStore(context.Background(), StoreConfig{
		Type:    "memory",
		Options: map[string]any{"max_size_bytes": -1},
	})
	if err == nil {
		t.Fatal("Expected error for negative max_size_bytes")
	}
}

func TestCreateStore_Filesystem(t *testing.T) {
	st, err := CreateStore(context.Background(), StoreConfig{
		Type:    "filesystem",
		Options: map[string]any{"path": t.TempDir(), "file_perm": 0600},
	})
	if err != nil {
		t.Fatalf("Failed to create filesystem store: %v", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	if err := st.Put(ctx, "greeting", []byte("hello")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := st.Get(ctx, "greeting")
	if err != nil || string(got) != "hello" {
		t.Errorf("Expected 'hello', got %q (err %v)", got, err)
	}
}

func TestCreateStore_FilesystemMissingPath(t *testing.T) {
	_, err := CreateStore(context.Background(), StoreConfig{
		Type:    "filesystem",
		Options: map[string]any{},
	})
	if err == nil {
		t.Fatal("Expected error for missing path")
	}
	if !strings.Contains(err.Error(), "path is required") {
		t.Errorf("Expected 'path is required' error, got: %v", err)
	}
}

func TestCreateStore_BadgerInMemory(t *testing.T) {
	st, err := CreateStore(context.Background(), StoreConfig{
		Type:    "badger",
		Options: map[string]any{"in_memory": true},
	})
	if err != nil {
		t.Fatalf("Failed to create badger store: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestCreateStore_BadgerOnDisk(t *testing.T) {
	st, err := CreateStore(context.Background(), StoreConfig{
		Type:    "badger",
		Options: map[string]any{"path": filepath.Join(t.TempDir(), "db")},
	})
	if err != nil {
		t.Fatalf("Failed to create badger store: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestCreateStore_BadgerMissingPath(t *testing.T) {
	_, err := CreateStore(context.Background(), StoreConfig{
		Type:    "badger",
		Options: map[string]any{},
	})
	if err == nil {
		t.Fatal("Expected error for missing path")
	}
	if !strings.Contains(err.Error(), "path is required") {
		t.Errorf("Expected 'path is required' error, got: %v", err)
	}
}

func TestCreateStore_S3(t *testing.T) {
	// Keep the host's AWS profile out of the test
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")

	st, err := CreateStore(context.Background(), StoreConfig{
		Type: "s3",
		Options: map[string]any{
			"region":            "us-east-1",
			"bucket":            "objects",
			"key_prefix":        "embedhttp/",
			"endpoint":          "http://127.0.0.1:9000",
			"access_key_id":     "minio",
			"secret_access_key": "minio123",
			"max_retries":       "3",
		},
	})
	if err != nil {
		t.Fatalf("Failed to create S3 store: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestCreateStore_S3MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]any
		wantErr string
	}{
		{"missing bucket", map[string]any{"region": "us-east-1"}, "bucket is required"},
		{"missing region", map[string]any{"bucket": "objects"}, "region is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateStore(context.Background(), StoreConfig{Type: "s3", Options: tt.options})
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected %q error, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateStore_UnknownOption(t *testing.T) {
	_, err := CreateStore(context.Background(), StoreConfig{
		Type:    "memory",
		Options: map[string]any{"max_size": 10},
	})
	if err == nil {
		t.Fatal("Expected error for unknown option")
	}
	if !strings.Contains(err.Error(), "max_size") {
		t.Errorf("Expected error naming the unknown option, got: %v", err)
	}
}

func TestCreateStore_UnknownType(t *testing.T) {
	_, err := CreateStore(context.Background(), StoreConfig{Type: "redis"})
	if err == nil {
		t.Fatal("Expected error for unknown store type")
	}
	if !strings.Contains(err.Error(), "unknown store type") {
		t.Errorf("Expected 'unknown store type' error, got: %v", err)
	}
}

func TestCreateStore_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CreateStore(ctx, StoreConfig{Type: "memory"})
	if err == nil {
		t.Fatal("Expected error with canceled context")
	}
}

// ============================================================================
// Endpoints
// ============================================================================

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	if err := reg.RegisterStore("default", storeMemory.New(0)); err != nil {
		t.Fatalf("RegisterStore failed: %v", err)
	}
	t.Cleanup(func() { _ = reg.CloseAll() })
	return reg
}

func invoke(t *testing.T, d endpoint.Descriptor, call *endpoint.Call) string {
	t.Helper()
	out, err := d.Invoke(context.Background(), call)
	if err != nil {
		t.Fatalf("Invoke %s failed: %v", d.Path, err)
	}
	return string(out)
}

func TestCreateEndpoint_Static(t *testing.T) {
	d, err := CreateEndpoint(nil, EndpointConfig{
		Path:    "/motd",
		Type:    "static",
		Kind:    "binary",
		Options: map[string]any{"payload": "welcome"},
	})
	if err != nil {
		t.Fatalf("CreateEndpoint failed: %v", err)
	}

	if d.Kind != endpoint.KindBinary {
		t.Errorf("Expected binary kind, got %s", d.Kind)
	}
	if got := invoke(t, d, &endpoint.Call{Method: "GET"}); got != "welcome" {
		t.Errorf("Expected 'welcome', got %q", got)
	}
}

func TestCreateEndpoint_StaticRequiresPayload(t *testing.T) {
	_, err := CreateEndpoint(nil, EndpointConfig{Path: "/motd", Type: "static"})
	if err == nil {
		t.Fatal("Expected error for missing payload")
	}
	if !strings.Contains(err.Error(), "requires a payload") {
		t.Errorf("Expected 'requires a payload' error, got: %v", err)
	}
}

func TestCreateEndpoint_EchoAndHealth(t *testing.T) {
	echo, err := CreateEndpoint(nil, EndpointConfig{Path: "/echo", Type: "echo"})
	if err != nil {
		t.Fatalf("CreateEndpoint echo failed: %v", err)
	}
	if got := invoke(t, echo, &endpoint.Call{Method: "POST", Body: []byte("hi")}); got != "hi" {
		t.Errorf("Expected echo 'hi', got %q", got)
	}

	health, err := CreateEndpoint(nil, EndpointConfig{Path: "/health", Type: "health", Description: "probe"})
	if err != nil {
		t.Fatalf("CreateEndpoint health failed: %v", err)
	}
	if health.Description != "probe" {
		t.Errorf("Expected description override, got %q", health.Description)
	}
	if got := invoke(t, health, &endpoint.Call{Method: "GET"}); got != "ok" {
		t.Errorf("Expected 'ok', got %q", got)
	}
}

func TestCreateEndpoint_Docs(t *testing.T) {
	d, err := CreateEndpoint(nil, EndpointConfig{
		Path:    "/docs",
		Type:    "docs",
		Options: map[string]any{"format": "json"},
	})
	if err != nil {
		t.Fatalf("CreateEndpoint failed: %v", err)
	}
	if !d.Meta {
		t.Error("Expected docs endpoint to be meta")
	}

	got := invoke(t, d, &endpoint.Call{Method: "GET", Endpoints: []endpoint.Descriptor{d}})
	if !strings.Contains(got, `"/docs"`) {
		t.Errorf("Expected docs to list /docs, got %s", got)
	}

	if _, err := CreateEndpoint(nil, EndpointConfig{
		Path:    "/docs",
		Type:    "docs",
		Options: map[string]any{"format": "xml"},
	}); err == nil {
		t.Error("Expected error for unsupported docs format")
	}
}

func TestCreateEndpoint_ObjectBindsStore(t *testing.T) {
	reg := newTestRegistry(t)

	d, err := CreateEndpoint(reg, EndpointConfig{
		Path:    "/greeting",
		Type:    "object",
		Store:   "default",
		Options: map[string]any{"key": "greeting"},
	})
	if err != nil {
		t.Fatalf("CreateEndpoint failed: %v", err)
	}

	if got := invoke(t, d, &endpoint.Call{Method: "POST", Body: []byte("hello")}); got != "stored" {
		t.Errorf("Expected 'stored', got %q", got)
	}
	if got := invoke(t, d, &endpoint.Call{Method: "GET"}); got != "hello" {
		t.Errorf("Expected 'hello', got %q", got)
	}

	binding, err := reg.GetBinding("/greeting")
	if err != nil {
		t.Fatalf("Expected binding for /greeting: %v", err)
	}
	if binding.Store != "default" || binding.ReadOnly {
		t.Errorf("Unexpected binding %+v", binding)
	}
}

func TestCreateEndpoint_ReadOnlyObject(t *testing.T) {
	reg := newTestRegistry(t)

	d, err := CreateEndpoint(reg, EndpointConfig{
		Path:    "/frozen",
		Type:    "object",
		Store:   "default",
		Options: map[string]any{"key": "frozen", "read_only": "true"},
	})
	if err != nil {
		t.Fatalf("CreateEndpoint failed: %v", err)
	}

	if _, err := d.Invoke(context.Background(), &endpoint.Call{Method: "POST", Body: []byte("x")}); err == nil {
		t.Error("Expected read-only endpoint to reject POST")
	}
	if binding, _ := reg.GetBinding("/frozen"); binding == nil || !binding.ReadOnly {
		t.Errorf("Expected read-only binding, got %+v", binding)
	}
}

func TestCreateEndpoint_Keys(t *testing.T) {
	reg := newTestRegistry(t)
	st, _ := reg.GetStore("default")
	ctx := context.Background()
	for _, k := range []string{"logs/a", "logs/b", "other"} {
		if err := st.Put(ctx, k, []byte("v")); err != nil {
			t.Fatalf("Put %s failed: %v", k, err)
		}
	}

	d, err := CreateEndpoint(reg, EndpointConfig{
		Path:    "/logs",
		Type:    "keys",
		Store:   "default",
		Options: map[string]any{"prefix": "logs/"},
	})
	if err != nil {
		t.Fatalf("CreateEndpoint failed: %v", err)
	}

	if got := invoke(t, d, &endpoint.Call{Method: "GET"}); got != "logs/a\nlogs/b" {
		t.Errorf("Expected two log keys, got %q", got)
	}
}

func TestCreateEndpoint_Errors(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		name    string
		reg     *registry.Registry
		cfg     EndpointConfig
		wantErr string
	}{
		{"unknown type", reg, EndpointConfig{Path: "/x", Type: "proxy"}, "unknown endpoint type"},
		{"invalid kind", reg, EndpointConfig{Path: "/x", Type: "echo", Kind: "json"}, "unknown kind"},
		{"unknown store", reg, EndpointConfig{Path: "/x", Type: "object", Store: "missing"}, "not found"},
		{"no registry", nil, EndpointConfig{Path: "/x", Type: "keys", Store: "default"}, "no registry"},
		{"unknown option", reg, EndpointConfig{Path: "/x", Type: "health", Options: map[string]any{"bogus": 1}}, "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateEndpoint(tt.reg, tt.cfg)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateEndpoints_PreservesOrder(t *testing.T) {
	reg := newTestRegistry(t)

	descriptors, err := CreateEndpoints(reg, GetDefaultConfig().Endpoints)
	if err != nil {
		t.Fatalf("CreateEndpoints failed: %v", err)
	}

	want := []string{"/health", "/docs", "/echo", "/objects", "/keys"}
	if len(descriptors) != len(want) {
		t.Fatalf("Expected %d descriptors, got %d", len(want), len(descriptors))
	}
	for i, d := range descriptors {
		if d.Path != want[i] {
			t.Errorf("descriptors[%d]: expected %s, got %s", i, want[i], d.Path)
		}
	}

	// The default object endpoint has no fixed key and documents the header
	object := descriptors[3]
	if object.Input == nil || len(object.Input.Children) != 1 || object.Input.Children[0].Name != services.ObjectKeyHeader {
		t.Errorf("Expected object endpoint input to document %s, got %+v", services.ObjectKeyHeader, object.Input)
	}
	if reg.CountBindings() != 2 {
		t.Errorf("Expected 2 bindings, got %d", reg.CountBindings())
	}
}
