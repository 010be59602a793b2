package endpoint

import "errors"

var (
	// ErrDuplicateEndpoint is returned when a path (compared lower-cased) is
	// already registered. The existing registration is left untouched.
	ErrDuplicateEndpoint = errors.New("endpoint already registered")

	// ErrInvalidEndpoint is returned for descriptors that cannot be served:
	// empty path, unknown kind, or a handler missing for the declared kind.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)
