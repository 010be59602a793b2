// Package memory is a volatile, in-process store.Store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/embedhttp/pkg/store"
)

// MemoryStore implements store.Store with an in-process map.
//
// Characteristics:
//   - Volatile: data is lost on restart
//   - Bounded: MaxBytes caps the sum of stored values (0 means unlimited)
//   - Thread-safe: protected by a RWMutex; values are copied in and out so
//     callers never share buffers with the store
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	size     int64
	maxBytes int64
	closed   bool
}

// ErrCapacityExceeded is returned by Put when MaxBytes would be exceeded.
var ErrCapacityExceeded = errors.New("memory store capacity exceeded")

// New creates an empty MemoryStore. maxBytes of 0 means unlimited.
func New(maxBytes int64) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrClosed
	}
	value, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", key, store.ErrNotFound)
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}

	newSize := s.size - int64(len(s.data[key])) + int64(len(value))
	if s.maxBytes > 0 && newSize > s.maxBytes {
		return fmt.Errorf("put %q (%d bytes): %w", key, len(value), ErrCapacityExceeded)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	s.size = newSize
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	value, ok := s.data[key]
	if !ok {
		return fmt.Errorf("object %q: %w", key, store.ErrNotFound)
	}
	s.size -= int64(len(value))
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrClosed
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Size returns the total bytes currently stored.
func (s *MemoryStore) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.data = nil
	s.size = 0
	return nil
}
