// Package fs is a store.Store that keeps one file per object in a directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/pkg/store"
)

const (
	objectPrefix = "o-"
	tempPattern  = "tmp-*"
)

// FSStore implements store.Store on the local filesystem.
//
// Keys are path-escaped into flat file names under BasePath, so "a" and
// "a/b" never collide as file and directory. Object files carry an "o-"
// prefix; anything else in the directory is ignored. Writes go to a temp file and
// are renamed into place.
type FSStore struct {
	basePath string
	perm     os.FileMode

	mu     sync.RWMutex
	closed bool
}

// Config configures an FSStore.
type Config struct {
	BasePath string

	// FilePerm applies to created object files. Defaults to 0644.
	FilePerm os.FileMode
}

// New creates an FSStore rooted at config.BasePath, creating the directory if needed.
func New(config Config) (*FSStore, error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("fs store: base_path is required")
	}
	perm := config.FilePerm
	if perm == 0 {
		perm = 0644
	}
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	logger.Debug("Filesystem store opened at %s", config.BasePath)
	return &FSStore{basePath: config.BasePath, perm: perm}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.basePath, objectPrefix+url.PathEscape(key))
}

func (s *FSStore) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if s.closed {
		return store.ErrClosed
	}
	return nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("object %q: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return data, nil
}

func (s *FSStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object %q: %w", key, err)
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		return fmt.Errorf("chmod object %q: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("commit object %q: %w", key, err)
	}
	return nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, key); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("object %q: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (s *FSStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrClosed
	}
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("list store directory: %w", err)
	}

	keys := []string{}
	for _, e := range entries {
		name, ok := strings.CutPrefix(e.Name(), objectPrefix)
		if e.IsDir() || !ok {
			continue
		}
		key, err := url.PathUnescape(name)
		if err != nil {
			logger.Warn("Skipping unexpected file in store directory: %s", e.Name())
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FSStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
