package endpoint

import (
	"fmt"
	"sort"
	"sync"
)

// Source supplies a batch of descriptors, typically everything one component
// of the host wants to expose.
type Source interface {
	Endpoints() []Descriptor
}

// SourceFunc adapts a function to Source.
type SourceFunc func() []Descriptor

func (f SourceFunc) Endpoints() []Descriptor { return f() }

// Descriptors adapts a fixed list to Source.
type Descriptors []Descriptor

func (d Descriptors) Endpoints() []Descriptor { return d }

// Table maps lower-cased paths to descriptors.
//
// Registration is expected to happen before serving starts, but the table is
// guarded by a RWMutex so that late Add or Remove calls never expose a
// half-updated map to connection goroutines.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
}

func NewTable() *Table {
	return &Table{entries: make(map[string]Descriptor)}
}

// Add registers d under path. The path argument overrides d.Path and is
// stored lower-cased.
func (t *Table) Add(path string, d Descriptor) error {
	d.Path = NormalizePath(path)
	if err := d.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[d.Path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEndpoint, d.Path)
	}
	t.entries[d.Path] = d
	return nil
}

// AddSource registers every descriptor src provides and returns their
// normalized paths in the order given. Either all are registered or, on any
// invalid or duplicate entry, none are.
func (t *Table) AddSource(src Source) ([]string, error) {
	batch := append([]Descriptor(nil), src.Endpoints()...)
	paths := make([]string, 0, len(batch))
	seen := make(map[string]struct{}, len(batch))

	for i := range batch {
		d := batch[i]
		d.Path = NormalizePath(d.Path)
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[d.Path]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEndpoint, d.Path)
		}
		seen[d.Path] = struct{}{}
		batch[i] = d
		paths = append(paths, d.Path)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range paths {
		if _, exists := t.entries[p]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEndpoint, p)
		}
	}
	for _, d := range batch {
		t.entries[d.Path] = d
	}
	return paths, nil
}

// Remove deletes the descriptor at path, reporting whether one existed.
func (t *Table) Remove(path string) bool {
	key := NormalizePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[key]; !exists {
		return false
	}
	delete(t.entries, key)
	return true
}

// Lookup finds the descriptor for path, ignoring case.
func (t *Table) Lookup(path string) (Descriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.entries[NormalizePath(path)]
	return d, ok
}

// Snapshot returns every descriptor sorted by path.
func (t *Table) Snapshot() []Descriptor {
	t.mu.RLock()
	out := make([]Descriptor, 0, len(t.entries))
	for _, d := range t.entries {
		out = append(out, d)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of registered descriptors.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
