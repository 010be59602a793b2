package store

import (
	"context"
	"time"

	"github.com/marmos91/embedhttp/pkg/metrics"
)

// instrumented decorates a Store with operation metrics.
type instrumented struct {
	Store
	name    string
	metrics metrics.StoreMetrics
}

// Instrument wraps s so that every call is reported to m under name.
// A nil m returns s unchanged.
func Instrument(name string, s Store, m metrics.StoreMetrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{Store: s, name: name, metrics: m}
}

func (i *instrumented) Get(ctx context.Context, key string) (value []byte, err error) {
	start := time.Now()
	defer func() {
		i.metrics.ObserveOperation(i.name, "get", time.Since(start), err)
		if err == nil {
			i.metrics.RecordBytes(i.name, "get", int64(len(value)))
		}
	}()
	return i.Store.Get(ctx, key)
}

func (i *instrumented) Put(ctx context.Context, key string, value []byte) (err error) {
	start := time.Now()
	defer func() {
		i.metrics.ObserveOperation(i.name, "put", time.Since(start), err)
		if err == nil {
			i.metrics.RecordBytes(i.name, "put", int64(len(value)))
		}
	}()
	return i.Store.Put(ctx, key, value)
}

func (i *instrumented) Delete(ctx context.Context, key string) (err error) {
	start := time.Now()
	defer func() {
		i.metrics.ObserveOperation(i.name, "delete", time.Since(start), err)
	}()
	return i.Store.Delete(ctx, key)
}

func (i *instrumented) List(ctx context.Context, prefix string) (keys []string, err error) {
	start := time.Now()
	defer func() {
		i.metrics.ObserveOperation(i.name, "list", time.Since(start), err)
	}()
	return i.Store.List(ctx, prefix)
}
