// manifest_test.go: test coverage for manifest parsing and validation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifestJSON(t *testing.T) {
	data := []byte(`{
		"id": "cache",
		"name": "LRU Cache",
		"pluginType": "storage",
		"version": "1.2.3",
		"description": "in-memory cache",
		"module": "dist/module.go",
		"main": "dist/main.go",
		"dependencies": [
			{"id": "logger", "version": "^1.0.0"},
			{"id": "metrics", "version": "~0.4.0"}
		]
	}`)

	m, err := ParseManifest(data, "plugin.json")
	require.NoError(t, err)
	assert.Equal(t, "cache", m.ID)
	assert.Equal(t, "LRU Cache", m.Name)
	assert.Equal(t, "storage", m.PluginType)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, "dist/module.go", m.Module)
	assert.Equal(t, "dist/main.go", m.Main)
	require.Len(t, m.Dependencies, 2)
	assert.Equal(t, Dependency{ID: "logger", VersionRange: "^1.0.0"}, m.Dependencies[0])
	assert.Equal(t, Dependency{ID: "metrics", VersionRange: "~0.4.0"}, m.Dependencies[1])
}

func TestParseManifestYAML(t *testing.T) {
	data := []byte(`
id: auth
pluginType: security
version: 2.0.0
main: auth.go
dependencies:
  - id: cache
    version: ">=1.0.0 <2.0.0"
`)

	m, err := ParseManifest(data, "plugin.yaml")
	require.NoError(t, err)
	assert.Equal(t, "auth", m.ID)
	assert.Equal(t, "security", m.PluginType)
	assert.Equal(t, "", m.Module)
	assert.Equal(t, "auth.go", m.Main)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, ">=1.0.0 <2.0.0", m.Dependencies[0].VersionRange)
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"empty data", "", "plugin.json"},
		{"invalid json", "{not json", "plugin.json"},
		{"invalid yaml", ":\n\t- broken", "plugin.yaml"},
		{"missing id", `{"pluginType": "x", "version": "1.0.0"}`, "plugin.json"},
		{"missing pluginType", `{"id": "a", "version": "1.0.0"}`, "plugin.json"},
		{"missing version", `{"id": "a", "pluginType": "x"}`, "plugin.json"},
		{"malformed version", `{"id": "a", "pluginType": "x", "version": "one.two"}`, "plugin.json"},
		{"dependency without id", `{"id": "a", "pluginType": "x", "version": "1.0.0", "dependencies": [{"version": "^1.0.0"}]}`, "plugin.json"},
		{"dependency with bad range", `{"id": "a", "pluginType": "x", "version": "1.0.0", "dependencies": [{"id": "b", "version": "%%"}]}`, "plugin.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data), tt.path)
			require.Error(t, err)
			assert.True(t, HasErrorCode(err, ErrCodeInvalidManifest),
				"expected invalid-manifest code, got %v", err)
		})
	}
}

func TestManifestValidateAcceptsOptionalFields(t *testing.T) {
	m := &Manifest{ID: "bare", PluginType: "tool", Version: "0.1.0"}
	require.NoError(t, m.Validate())

	// An empty dependency range means any version.
	m.Dependencies = []Dependency{{ID: "other"}}
	require.NoError(t, m.Validate())
}

func TestManifestEntryPoints(t *testing.T) {
	t.Run("module before main", func(t *testing.T) {
		m := &Manifest{Module: "a.go", Main: "b.go"}
		assert.Equal(t, []string{"a.go", "b.go"}, m.entryPoints())
	})

	t.Run("main only", func(t *testing.T) {
		m := &Manifest{Main: "b.go"}
		assert.Equal(t, []string{"b.go"}, m.entryPoints())
	})

	t.Run("none", func(t *testing.T) {
		m := &Manifest{}
		assert.Empty(t, m.entryPoints())
	})
}
