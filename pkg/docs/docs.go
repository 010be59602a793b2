// Package docs turns registered endpoint descriptors into a nested field tree
// and renders it for humans. It only reads descriptors and is never on the
// request path unless a host registers a documentation endpoint.
package docs

import (
	"encoding/json"
	"fmt"

	"github.com/marmos91/embedhttp/pkg/endpoint"
	"gopkg.in/yaml.v3"
)

// RootName is the name of the tree's root field.
const RootName = "endpoints"

// Generate builds the documentation tree for endpoints.
//
// The root has one child per endpoint, named by path and typed by kind. Each
// endpoint node carries the host-written input and output schemas (copied,
// never shared) and a "meta" marker child when the endpoint receives the
// table snapshot.
func Generate(endpoints []endpoint.Descriptor) *endpoint.Field {
	root := &endpoint.Field{
		Name:     RootName,
		Type:     "object",
		Children: make([]*endpoint.Field, 0, len(endpoints)),
	}

	for _, d := range endpoints {
		node := &endpoint.Field{
			Name:        d.Path,
			Type:        d.Kind.String(),
			Description: d.Description,
		}
		if d.Input != nil {
			node.Children = append(node.Children, rename(d.Input, "input"))
		}
		if d.Output != nil {
			node.Children = append(node.Children, rename(d.Output, "output"))
		}
		if d.Meta {
			node.Children = append(node.Children, &endpoint.Field{
				Name:        "meta",
				Type:        "bool",
				Description: "receives the list of registered endpoints",
			})
		}
		root.Children = append(root.Children, node)
	}
	return root
}

// rename deep-copies f under a new name.
func rename(f *endpoint.Field, name string) *endpoint.Field {
	c := copyField(f)
	c.Name = name
	return c
}

func copyField(f *endpoint.Field) *endpoint.Field {
	c := &endpoint.Field{Name: f.Name, Type: f.Type, Description: f.Description}
	for _, child := range f.Children {
		if child != nil {
			c.Children = append(c.Children, copyField(child))
		}
	}
	return c
}

// RenderYAML encodes a tree as YAML.
func RenderYAML(root *endpoint.Field) ([]byte, error) {
	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("render docs yaml: %w", err)
	}
	return out, nil
}

// RenderJSON encodes a tree as indented JSON.
func RenderJSON(root *endpoint.Field) ([]byte, error) {
	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render docs json: %w", err)
	}
	return out, nil
}

// Render encodes a tree in the named format: "yaml" or "json".
func Render(root *endpoint.Field, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml", "":
		return RenderYAML(root)
	case "json":
		return RenderJSON(root)
	default:
		return nil, fmt.Errorf("unknown docs format %q", format)
	}
}
