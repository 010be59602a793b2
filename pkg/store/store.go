// Package store defines the object store services can read and write through,
// plus the instrumentation wrapper shared by every backend.
//
// Backends live in subpackages: memory, badger, fs and s3. Each maps its own
// "missing object" condition onto ErrNotFound so endpoint handlers can treat
// all backends alike.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// Standard Store Errors
// ============================================================================

// Implementations wrap these with context:
//
//	return nil, fmt.Errorf("object %q: %w", key, store.ErrNotFound)

var (
	// ErrNotFound indicates the requested key has no object.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey indicates a key that no backend accepts: empty, or
	// containing a NUL byte or a ".." path segment.
	ErrInvalidKey = errors.New("invalid object key")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
)

// Store is a flat key/value object store.
//
// Keys are slash-separated strings; List filters them by prefix. Values are
// opaque bytes. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the object stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous object.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key returns ErrNotFound.
	Delete(ctx context.Context, key string) error

	// List returns every key starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// ValidateKey checks key against the rules shared by every backend.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return fmt.Errorf("%w: %q escapes its prefix", ErrInvalidKey, key)
		}
	}
	return nil
}
