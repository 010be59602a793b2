package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, writeSchema(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var schema struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "embedhttpd Configuration", schema.Title)
	for _, key := range []string{"logging", "server", "metrics", "stores", "endpoints"} {
		assert.Contains(t, schema.Properties, key)
	}
	assert.Contains(t, string(schema.Properties["server"]), "max_connection_duration")
}

func TestWriteSchemaBadPath(t *testing.T) {
	err := writeSchema(filepath.Join(t.TempDir(), "missing", "schema.json"))
	assert.Error(t, err)
}
