// Package services provides ready-made endpoint descriptors: fixed replies,
// echo, health, self-documentation and object store access.
//
// Every constructor returns an endpoint.Descriptor ready for
// server.AddServiceAt or server.AddService.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marmos91/embedhttp/pkg/docs"
	"github.com/marmos91/embedhttp/pkg/endpoint"
	"github.com/marmos91/embedhttp/pkg/store"
)

// ObjectKeyHeader names the object for Object endpoints registered without a
// fixed key.
const ObjectKeyHeader = "X-Object-Key"

// ErrReadOnly is returned when a write reaches a read-only Object endpoint.
var ErrReadOnly = errors.New("endpoint is read-only")

// Static always replies with payload.
func Static(path string, kind endpoint.Kind, payload []byte) endpoint.Descriptor {
	reply := append([]byte(nil), payload...)
	d := endpoint.Descriptor{
		Path:        path,
		Kind:        kind,
		Description: "Fixed reply",
		Output:      &endpoint.Field{Name: "output", Type: kind.String(), Description: "The configured payload"},
	}
	if kind == endpoint.KindBinary {
		d.Binary = func(ctx context.Context, call *endpoint.Call) ([]byte, error) {
			return append([]byte(nil), reply...), nil
		}
	} else {
		s := string(reply)
		d.Text = func(ctx context.Context, call *endpoint.Call) (string, error) { return s, nil }
	}
	return d
}

// Echo replies with the request body. An empty body yields an empty result.
func Echo(path string, kind endpoint.Kind) endpoint.Descriptor {
	d := endpoint.Descriptor{
		Path:        path,
		Kind:        kind,
		Description: "Replies with the request body",
		Input:       &endpoint.Field{Name: "input", Type: kind.String(), Description: "Any body"},
		Output:      &endpoint.Field{Name: "output", Type: kind.String(), Description: "The same body"},
	}
	if kind == endpoint.KindBinary {
		d.Binary = func(ctx context.Context, call *endpoint.Call) ([]byte, error) {
			return append([]byte(nil), call.Body...), nil
		}
	} else {
		d.Text = func(ctx context.Context, call *endpoint.Call) (string, error) {
			return string(call.Body), nil
		}
	}
	return d
}

// Health replies "ok".
func Health(path string) endpoint.Descriptor {
	return endpoint.Descriptor{
		Path:        path,
		Kind:        endpoint.KindText,
		Description: "Liveness probe",
		Output:      &endpoint.Field{Name: "output", Type: "text", Description: `Always "ok"`},
		Text: func(ctx context.Context, call *endpoint.Call) (string, error) {
			return "ok", nil
		},
	}
}

// Docs renders the documentation tree of every registered endpoint in
// format ("yaml" or "json").
func Docs(path, format string) (endpoint.Descriptor, error) {
	// Fail at registration rather than on the first request.
	if _, err := docs.Render(docs.Generate(nil), format); err != nil {
		return endpoint.Descriptor{}, err
	}

	return endpoint.Descriptor{
		Path:        path,
		Kind:        endpoint.KindText,
		Meta:        true,
		Description: "Describes every registered endpoint",
		Output:      &endpoint.Field{Name: "output", Type: format, Description: "Endpoint documentation tree"},
		Text: func(ctx context.Context, call *endpoint.Call) (string, error) {
			out, err := docs.Render(docs.Generate(call.Endpoints), format)
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	}, nil
}

// ObjectOption configures an Object endpoint.
type ObjectOption func(*objectEndpoint)

// ReadOnly rejects POST requests with ErrReadOnly.
func ReadOnly(readOnly bool) ObjectOption {
	return func(o *objectEndpoint) { o.readOnly = readOnly }
}

type objectEndpoint struct {
	st       store.Store
	key      string
	readOnly bool
}

// Object exposes one object of st. GET returns it; POST replaces it with the
// request body and replies "stored".
//
// With an empty key the object is named per request by the X-Object-Key
// header. A missing object or key yields an empty result.
func Object(path string, st store.Store, key string, opts ...ObjectOption) endpoint.Descriptor {
	o := &objectEndpoint{st: st, key: key}
	for _, opt := range opts {
		opt(o)
	}

	input := &endpoint.Field{Name: "input", Type: "binary", Description: "POST: the new object contents"}
	if key == "" {
		input.Children = []*endpoint.Field{
			{Name: ObjectKeyHeader, Type: "header", Description: "Object key"},
		}
	}

	return endpoint.Descriptor{
		Path:        path,
		Kind:        endpoint.KindBinary,
		Binary:      o.handle,
		Description: "Reads (GET) or writes (POST) a stored object",
		Input:       input,
		Output:      &endpoint.Field{Name: "output", Type: "binary", Description: `GET: the object; POST: "stored"`},
	}
}

func (o *objectEndpoint) handle(ctx context.Context, call *endpoint.Call) ([]byte, error) {
	key := o.key
	if key == "" {
		key = call.Header(ObjectKeyHeader)
		if key == "" {
			return nil, nil
		}
	}

	if call.Method == "POST" {
		if o.readOnly {
			return nil, fmt.Errorf("put %q: %w", key, ErrReadOnly)
		}
		if err := o.st.Put(ctx, key, call.Body); err != nil {
			return nil, err
		}
		return []byte("stored"), nil
	}

	value, err := o.st.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return value, err
}

// Keys lists the keys of st under prefix, one per line. A request body, if
// present, narrows the listing further.
func Keys(path string, st store.Store, prefix string) endpoint.Descriptor {
	return endpoint.Descriptor{
		Path:        path,
		Kind:        endpoint.KindText,
		Description: "Lists stored object keys",
		Input:       &endpoint.Field{Name: "input", Type: "text", Description: "Optional additional key prefix"},
		Output:      &endpoint.Field{Name: "output", Type: "text", Description: "Newline separated keys"},
		Text: func(ctx context.Context, call *endpoint.Call) (string, error) {
			keys, err := st.List(ctx, prefix+string(call.Body))
			if err != nil {
				return "", err
			}
			return strings.Join(keys, "\n"), nil
		},
	}
}
