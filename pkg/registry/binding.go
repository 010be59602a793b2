package registry

// Binding ties an endpoint path to the named store its handler uses.
//
// Multiple endpoints can reference the same store.
type Binding struct {
	Path  string
	Store string // Name of the store

	// ReadOnly endpoints may read from the store but never write to it.
	ReadOnly bool
}
