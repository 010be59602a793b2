// Command generate-schema writes the JSON schema of the embedhttpd config
// file, for editor completion and validation of config.yaml.
//
//	go run ./cmd/generate-schema [output.json]
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/marmos91/embedhttp/pkg/config"
)

const defaultOutput = "config.schema.json"

func main() {
	out := defaultOutput
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	if err := writeSchema(out); err != nil {
		fmt.Fprintf(os.Stderr, "generate-schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", out)
}

func writeSchema(path string) error {
	// Keys follow the yaml tags so the schema matches the file users write.
	r := jsonschema.Reflector{
		FieldNameTag:   "yaml",
		DoNotReference: true,
	}

	s := r.Reflect(&config.Config{})
	s.Title = "embedhttpd Configuration"
	s.Description = "Server, logging, metrics, stores and endpoints of an embedhttpd instance"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
