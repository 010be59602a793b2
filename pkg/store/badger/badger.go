// Package badger is a persistent store.Store backed by BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/pkg/store"
)

// keyPrefix namespaces objects so the database can later hold other records.
const keyPrefix = "obj:"

// BadgerStore implements store.Store on an embedded BadgerDB.
//
// Each object is a single Badger key. Reads run in View transactions and
// writes in Update transactions, so every operation is atomic on its own.
type BadgerStore struct {
	db *badgerdb.DB
}

// Config configures a BadgerStore.
type Config struct {
	// DBPath is the directory holding the database. Required unless InMemory.
	DBPath string

	// InMemory keeps the whole database in RAM (useful for tests).
	InMemory bool

	// SyncWrites fsyncs every write before it returns.
	SyncWrites bool

	// BlockCacheSizeMB sets Badger's block cache; 0 keeps Badger's default.
	BlockCacheSizeMB int64

	// IndexCacheSizeMB sets Badger's index cache; 0 keeps Badger's default.
	IndexCacheSizeMB int64
}

// New opens (creating if needed) a BadgerStore.
func New(ctx context.Context, config Config) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config.DBPath == "" && !config.InMemory {
		return nil, fmt.Errorf("badger store: db_path is required")
	}

	var opts badgerdb.Options
	if config.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badgerdb.DefaultOptions(config.DBPath)
	}
	opts = opts.WithLoggingLevel(badgerdb.WARNING).WithSyncWrites(config.SyncWrites)
	if config.BlockCacheSizeMB > 0 {
		opts = opts.WithBlockCacheSize(config.BlockCacheSizeMB << 20)
	}
	if config.IndexCacheSizeMB > 0 {
		opts = opts.WithIndexCacheSize(config.IndexCacheSizeMB << 20)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug("Badger store opened (path=%q, in_memory=%v)", config.DBPath, config.InMemory)
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, fmt.Errorf("object %q: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return nil, s.wrap("get", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *BadgerStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyPrefix+key), value)
	})
	if err != nil {
		return s.wrap("put", key, err)
	}
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		k := []byte(keyPrefix + key)
		if _, err := txn.Get(k); err != nil {
			return err
		}
		return txn.Delete(k)
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return fmt.Errorf("object %q: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return s.wrap("delete", key, err)
	}
	return nil
}

func (s *BadgerStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := []string{}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix + prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(it.Item().Key()[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap("list", prefix, err)
	}
	// Badger iterates in byte order, which is already sorted.
	return keys, nil
}

func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	return nil
}

func (s *BadgerStore) wrap(op, key string, err error) error {
	if errors.Is(err, badgerdb.ErrDBClosed) {
		return fmt.Errorf("%s %q: %w", op, key, store.ErrClosed)
	}
	return fmt.Errorf("badger %s %q: %w", op, key, err)
}
