package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/embedhttp/pkg/store"
	"github.com/marmos91/embedhttp/pkg/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore(t *testing.T) {
	suite := &storetest.Suite{
		NewStore: func(t *testing.T) store.Store {
			s, err := New(Config{BasePath: t.TempDir()})
			require.NoError(t, err)
			return s
		},
	}
	suite.Run(t)
}

func TestFSStoreKeyAndNestedKeyCoexist(t *testing.T) {
	ctx := context.Background()
	s, err := New(Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a", []byte("file")))
	require.NoError(t, s.Put(ctx, "a/b", []byte("nested")))

	got, err := s.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, []byte("nested"), got)
}

func TestFSStoreIgnoresStrayFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(Config{BasePath: dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-123"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, objectPrefix+"subdir"), 0755))
	require.NoError(t, s.Put(ctx, "real", []byte("y")))

	keys, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"real"}, keys)
}

func TestFSStoreDotKey(t *testing.T) {
	ctx := context.Background()
	s, err := New(Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, ".", []byte("dot")))
	got, err := s.Get(ctx, ".")
	require.NoError(t, err)
	assert.Equal(t, []byte("dot"), got)
}

func TestFSStoreRequiresBasePath(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
