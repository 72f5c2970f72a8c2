// discovery_test.go: test coverage for filesystem manifest discovery
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePluginDir creates dir/<name>/<fileName> with the given manifest body
// and returns the plugin directory.
func writePluginDir(t *testing.T, root, name, fileName, body string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(body), 0o600))
	return dir
}

func TestDiscoveryEngineDiscover(t *testing.T) {
	t.Run("finds manifests across formats", func(t *testing.T) {
		root := t.TempDir()
		writePluginDir(t, root, "cache", "plugin.json",
			`{"id": "cache", "pluginType": "storage", "version": "1.0.0", "main": "main.go"}`)
		writePluginDir(t, root, "auth", "plugin.yaml",
			"id: auth\npluginType: security\nversion: 2.0.0\nmain: main.go\n")

		engine := NewDiscoveryEngine(nil)
		results, err := engine.Discover(filepath.Join(root, "*"))
		require.NoError(t, err)
		require.Len(t, results, 2)

		ids := []string{results[0].Manifest.ID, results[1].Manifest.ID}
		assert.ElementsMatch(t, []string{"cache", "auth"}, ids)
		for _, result := range results {
			assert.True(t, filepath.IsAbs(result.Manifest.Dir))
			assert.NotZero(t, result.DiscoveredAt)
			assert.NotEmpty(t, result.Source)
		}
	})

	t.Run("nonexistent pattern yields empty result", func(t *testing.T) {
		engine := NewDiscoveryEngine(nil)
		results, err := engine.Discover(filepath.Join(t.TempDir(), "nothing", "*"))
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("directories without manifests are skipped", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-plugin"), 0o750))
		writePluginDir(t, root, "real", "plugin.json",
			`{"id": "real", "pluginType": "tool", "version": "1.0.0", "main": "main.go"}`)

		engine := NewDiscoveryEngine(nil)
		results, err := engine.Discover(filepath.Join(root, "*"))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "real", results[0].Manifest.ID)
	})

	t.Run("invalid manifests are skipped not fatal", func(t *testing.T) {
		root := t.TempDir()
		writePluginDir(t, root, "broken", "plugin.json", `{"id": ""}`)
		writePluginDir(t, root, "ok", "plugin.json",
			`{"id": "ok", "pluginType": "tool", "version": "1.0.0", "main": "main.go"}`)

		engine := NewDiscoveryEngine(nil)
		results, err := engine.Discover(filepath.Join(root, "*"))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "ok", results[0].Manifest.ID)
	})

	t.Run("pattern may target a manifest file directly", func(t *testing.T) {
		root := t.TempDir()
		dir := writePluginDir(t, root, "cache", "plugin.json",
			`{"id": "cache", "pluginType": "storage", "version": "1.0.0", "main": "main.go"}`)

		engine := NewDiscoveryEngine(nil)
		results, err := engine.Discover(filepath.Join(dir, "plugin.json"))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "cache", results[0].Manifest.ID)
	})

	t.Run("overlapping patterns deduplicate by directory", func(t *testing.T) {
		root := t.TempDir()
		writePluginDir(t, root, "cache", "plugin.json",
			`{"id": "cache", "pluginType": "storage", "version": "1.0.0", "main": "main.go"}`)

		engine := NewDiscoveryEngine(nil)
		results, err := engine.Discover(filepath.Join(root, "*"), filepath.Join(root, "cache"))
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("json takes precedence over yaml in one directory", func(t *testing.T) {
		root := t.TempDir()
		dir := writePluginDir(t, root, "dual", "plugin.json",
			`{"id": "from-json", "pluginType": "tool", "version": "1.0.0", "main": "main.go"}`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.yaml"),
			[]byte("id: from-yaml\npluginType: tool\nversion: 1.0.0\nmain: main.go\n"), 0o600))

		engine := NewDiscoveryEngine(nil)
		results, err := engine.Discover(filepath.Join(root, "*"))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "from-json", results[0].Manifest.ID)
	})
}

func TestDiscoveryEngineDiscoverByType(t *testing.T) {
	root := t.TempDir()
	writePluginDir(t, root, "cache", "plugin.json",
		`{"id": "cache", "pluginType": "storage", "version": "1.0.0", "main": "main.go"}`)
	writePluginDir(t, root, "auth", "plugin.json",
		`{"id": "auth", "pluginType": "security", "version": "1.0.0", "main": "main.go"}`)

	engine := NewDiscoveryEngine(nil)
	results, err := engine.DiscoverByType("storage", filepath.Join(root, "*"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cache", results[0].Manifest.ID)

	none, err := engine.DiscoverByType("network", filepath.Join(root, "*"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDiscoveryEngineDiscoverDir(t *testing.T) {
	t.Run("reads the manifest in a directory", func(t *testing.T) {
		root := t.TempDir()
		dir := writePluginDir(t, root, "cache", "plugin.yml",
			"id: cache\npluginType: storage\nversion: 1.0.0\nmain: main.go\n")

		engine := NewDiscoveryEngine(nil)
		result, err := engine.DiscoverDir(dir)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "cache", result.Manifest.ID)
	})

	t.Run("missing manifest yields nil result", func(t *testing.T) {
		engine := NewDiscoveryEngine(nil)
		result, err := engine.DiscoverDir(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("invalid manifest is an error", func(t *testing.T) {
		root := t.TempDir()
		dir := writePluginDir(t, root, "broken", "plugin.json", `{"version": "1.0.0"}`)

		engine := NewDiscoveryEngine(nil)
		_, err := engine.DiscoverDir(dir)
		require.Error(t, err)
		assert.True(t, HasErrorCode(err, ErrCodeInvalidManifest))
	})
}
