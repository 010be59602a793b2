// Package storetest is a conformance suite for store.Store implementations.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/marmos91/embedhttp/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Suite tests the store.Store contract, not implementation details, so the
// same checks run against every backend.
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//	    suite := &storetest.Suite{
//	        NewStore: func(t *testing.T) store.Store { return mystore.New() },
//	    }
//	    suite.Run(t)
//	}
type Suite struct {
	// NewStore creates a fresh, empty store for each subtest.
	NewStore func(t *testing.T) store.Store
}

// Run executes all tests in the suite.
func (s *Suite) Run(t *testing.T) {
	t.Run("PutGet", s.testPutGet)
	t.Run("Overwrite", s.testOverwrite)
	t.Run("NotFound", s.testNotFound)
	t.Run("Delete", s.testDelete)
	t.Run("List", s.testList)
	t.Run("InvalidKeys", s.testInvalidKeys)
	t.Run("BinaryValues", s.testBinaryValues)
	t.Run("Concurrent", s.testConcurrent)
	t.Run("CancelledContext", s.testCancelledContext)
}

func (s *Suite) open(t *testing.T) store.Store {
	t.Helper()
	st := s.NewStore(t)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func (s *Suite) testPutGet(t *testing.T) {
	ctx := context.Background()
	st := s.open(t)

	require.NoError(t, st.Put(ctx, "greeting", []byte("hello")))

	got, err := st.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func (s *Suite) testOverwrite(t *testing.T) {
	ctx := context.Background()
	st := s.open(t)

	require.NoError(t, st.Put(ctx, "k", []byte("first")))
	require.NoError(t, st.Put(ctx, "k", []byte("second")))

	got, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func (s *Suite) testNotFound(t *testing.T) {
	ctx := context.Background()
	st := s.open(t)

	_, err := st.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func (s *Suite) testDelete(t *testing.T) {
	ctx := context.Background()
	st := s.open(t)

	require.NoError(t, st.Put(ctx, "gone", []byte("x")))
	require.NoError(t, st.Delete(ctx, "gone"))

	_, err := st.Get(ctx, "gone")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, "gone"), store.ErrNotFound)
}

func (s *Suite) testList(t *testing.T) {
	ctx := context.Background()
	st := s.open(t)

	for _, k := range []string{"users/b", "users/a", "groups/x", "usersx"} {
		require.NoError(t, st.Put(ctx, k, []byte(k)))
	}

	keys, err := st.List(ctx, "users/")
	require.NoError(t, err)
	assert.Equal(t, []string{"users/a", "users/b"}, keys)

	all, err := st.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"groups/x", "users/a", "users/b", "usersx"}, all)

	none, err := st.List(ctx, "nothing/")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func (s *Suite) testInvalidKeys(t *testing.T) {
	ctx := context.Background()
	st := s.open(t)

	for _, key := range []string{"", "a/../b", "..", "nul\x00"} {
		assert.ErrorIs(t, st.Put(ctx, key, []byte("x")), store.ErrInvalidKey, "%q", key)
		_, err := st.Get(ctx, key)
		assert.ErrorIs(t, err, store.ErrInvalidKey, "%q", key)
	}
}

func (s *Suite) testBinaryValues(t *testing.T) {
	ctx := context.Background()
	st := s.open(t)

	value := make([]byte, 256)
	for i := range value {
		value[i] = byte(i)
	}
	require.NoError(t, st.Put(ctx, "bin", value))

	got, err := st.Get(ctx, "bin")
	require.NoError(t, err)
	assert.Equal(t, value, got)

	// Mutating the returned slice must not change the stored object.
	got[0] = 0xff
	again, err := st.Get(ctx, "bin")
	require.NoError(t, err)
	assert.Equal(t, byte(0), again[0])
}

func (s *Suite) testConcurrent(t *testing.T) {
	ctx := context.Background()
	st := s.open(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("c/%02d", i)
			assert.NoError(t, st.Put(ctx, key, []byte(key)))
			got, err := st.Get(ctx, key)
			assert.NoError(t, err)
			assert.Equal(t, []byte(key), got)
		}(i)
	}
	wg.Wait()

	keys, err := st.List(ctx, "c/")
	require.NoError(t, err)
	assert.Len(t, keys, 16)
}

func (s *Suite) testCancelledContext(t *testing.T) {
	st := s.open(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, st.Put(ctx, "k", []byte("v")))
	_, err := st.Get(ctx, "k")
	assert.Error(t, err)
}
