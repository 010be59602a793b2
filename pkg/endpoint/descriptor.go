// Package endpoint defines the services an embedded server exposes and the
// table that maps request paths to them.
//
// A service is described by a Descriptor: the path it answers on, whether it
// produces text or raw bytes, the handler itself and host-written schema
// fields used only for documentation. Descriptors are registered explicitly;
// nothing is discovered by reflection.
package endpoint

import (
	"context"
	"fmt"
	"strings"
)

// Kind selects how a handler's result is produced.
type Kind int

const (
	// KindText handlers return a string, sent as UTF-8.
	KindText Kind = iota
	// KindBinary handlers return raw bytes.
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts "text" or "binary" (any case) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return KindText, nil
	case "binary":
		return KindBinary, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidEndpoint, s)
	}
}

// Call carries one request into a handler.
type Call struct {
	Method  string
	Version string
	Headers map[string]string
	Body    []byte

	// Endpoints is a snapshot of the table, populated only for Meta
	// descriptors.
	Endpoints []Descriptor
}

// Header returns a header value, matching the name case-insensitively when
// there is no exact match.
func (c *Call) Header(name string) string {
	if v, ok := c.Headers[name]; ok {
		return v
	}
	for k, v := range c.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// TextFunc handles a KindText endpoint.
type TextFunc func(ctx context.Context, call *Call) (string, error)

// BinaryFunc handles a KindBinary endpoint.
type BinaryFunc func(ctx context.Context, call *Call) ([]byte, error)

// Field is one node of a documentation schema. Hosts describe a service's
// input and output with a tree of Fields; the tree is never consulted while
// serving.
type Field struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Children    []*Field `json:"children,omitempty" yaml:"children,omitempty"`
}

// Descriptor is a registered service.
//
// Exactly one of Text or Binary must be set, matching Kind. Meta services
// additionally receive a snapshot of every registered descriptor, which is
// how self-describing endpoints such as a documentation page are built.
type Descriptor struct {
	Path        string
	Kind        Kind
	Text        TextFunc
	Binary      BinaryFunc
	Meta        bool
	Description string
	Input       *Field
	Output      *Field
}

// NormalizePath returns the table key for path.
func NormalizePath(path string) string {
	return strings.ToLower(path)
}

// Validate reports whether the descriptor can be registered.
func (d Descriptor) Validate() error {
	if d.Path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidEndpoint)
	}
	switch d.Kind {
	case KindText:
		if d.Text == nil {
			return fmt.Errorf("%w: %s: text endpoint without text handler", ErrInvalidEndpoint, d.Path)
		}
	case KindBinary:
		if d.Binary == nil {
			return fmt.Errorf("%w: %s: binary endpoint without binary handler", ErrInvalidEndpoint, d.Path)
		}
	default:
		return fmt.Errorf("%w: %s: %s", ErrInvalidEndpoint, d.Path, d.Kind)
	}
	return nil
}

// Invoke runs the handler and returns its result as bytes. An empty text
// result and an empty byte slice both come back as a zero-length result.
func (d Descriptor) Invoke(ctx context.Context, call *Call) ([]byte, error) {
	if d.Kind == KindBinary {
		return d.Binary(ctx, call)
	}
	s, err := d.Text(ctx, call)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
