package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/marmos91/embedhttp/pkg/store"
)

// Registry manages named object stores and the endpoints bound to them.
// It provides thread-safe registration and lookup.
//
// Example usage:
//
//	reg := NewRegistry()
//	reg.RegisterStore("scratch", memory.New(0))
//	reg.Bind(&Binding{Path: "/notes", Store: "scratch"})
//
//	st, _ := reg.GetStoreForEndpoint("/notes")
type Registry struct {
	mu       sync.RWMutex
	stores   map[string]store.Store
	bindings map[string]*Binding // key: endpoint path
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		stores:   make(map[string]store.Store),
		bindings: make(map[string]*Binding),
	}
}

// RegisterStore adds a named store to the registry.
// Returns an error if a store with the same name already exists.
func (r *Registry) RegisterStore(name string, s store.Store) error {
	if s == nil {
		return fmt.Errorf("cannot register nil store")
	}
	if name == "" {
		return fmt.Errorf("cannot register store with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("store %q already registered", name)
	}

	r.stores[name] = s
	return nil
}

// RemoveStore unregisters and closes a store.
// Returns an error if the store doesn't exist or endpoints are still bound to it.
func (r *Registry) RemoveStore(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.stores[name]
	if !exists {
		return fmt.Errorf("store %q not found", name)
	}
	if users := r.endpointsUsing(name); len(users) > 0 {
		return fmt.Errorf("store %q still bound to endpoints %v", name, users)
	}

	delete(r.stores, name)
	return s.Close()
}

// GetStore retrieves a store by name.
// Returns nil, error if not found.
func (r *Registry) GetStore(name string) (store.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.stores[name]
	if !exists {
		return nil, fmt.Errorf("store %q not found", name)
	}
	return s, nil
}

// Bind records that an endpoint reads and writes through a registered store.
func (r *Registry) Bind(b *Binding) error {
	if b == nil || b.Path == "" {
		return fmt.Errorf("cannot bind endpoint with empty path")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bindings[b.Path]; exists {
		return fmt.Errorf("endpoint %q already bound", b.Path)
	}
	if _, exists := r.stores[b.Store]; !exists {
		return fmt.Errorf("store %q not found", b.Store)
	}

	copied := *b
	r.bindings[b.Path] = &copied
	return nil
}

// Unbind removes an endpoint binding.
// Returns true if a binding was removed, false if none existed.
func (r *Registry) Unbind(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bindings[path]; !exists {
		return false
	}
	delete(r.bindings, path)
	return true
}

// GetBinding retrieves the binding for an endpoint path.
func (r *Registry) GetBinding(path string) (*Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.bindings[path]
	if !exists {
		return nil, fmt.Errorf("endpoint %q not bound", path)
	}
	copied := *b
	return &copied, nil
}

// GetStoreForEndpoint retrieves the store used by the specified endpoint.
// Returns nil, error if the binding or store doesn't exist.
func (r *Registry) GetStoreForEndpoint(path string) (store.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.bindings[path]
	if !exists {
		return nil, fmt.Errorf("endpoint %q not bound", path)
	}

	s, exists := r.stores[b.Store]
	if !exists {
		return nil, fmt.Errorf("store %q not found for endpoint %q", b.Store, path)
	}
	return s, nil
}

// ListStores returns all registered store names, sorted.
// The returned slice is a copy and safe to modify.
func (r *Registry) ListStores() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListEndpointsUsingStore returns all endpoint paths bound to the specified store, sorted.
func (r *Registry) ListEndpointsUsingStore(storeName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endpointsUsing(storeName)
}

func (r *Registry) endpointsUsing(storeName string) []string {
	var paths []string
	for _, b := range r.bindings {
		if b.Store == storeName {
			paths = append(paths, b.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// CountStores returns the number of registered stores.
func (r *Registry) CountStores() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// CountBindings returns the number of bound endpoints.
func (r *Registry) CountBindings() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// CloseAll closes every registered store and empties the registry.
// All stores are closed even if some fail; the errors are joined.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, s := range r.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store %q: %w", name, err))
		}
	}
	r.stores = make(map[string]store.Store)
	r.bindings = make(map[string]*Binding)
	return errors.Join(errs...)
}
