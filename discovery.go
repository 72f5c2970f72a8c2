// discovery.go: filesystem discovery of plugin manifests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"os"
	"path/filepath"
	"time"

	"github.com/agilira/go-timecache"
)

// DiscoveryResult is one discovered plugin: its parsed manifest, the path of
// the descriptor file it came from, and when discovery saw it.
type DiscoveryResult struct {
	Manifest     *Manifest `json:"manifest"`
	Source       string    `json:"source"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// DiscoveryEngine discovers plugins through filesystem scanning.
//
// Each pattern is a glob that matches plugin directories (or descriptor files
// directly). A directory counts as a plugin when it contains one of the
// descriptor file names (plugin.json, plugin.yaml, plugin.yml, in precedence
// order). Patterns that match nothing, or that name nonexistent paths, yield
// no results rather than an error; invalid manifests are logged and skipped
// so that one broken plugin does not hide the rest.
type DiscoveryEngine struct {
	logger Logger
}

// NewDiscoveryEngine creates a discovery engine. A nil logger silences it.
func NewDiscoveryEngine(logger any) *DiscoveryEngine {
	return &DiscoveryEngine{logger: NewLogger(logger)}
}

// Discover scans all patterns and returns every valid plugin manifest found,
// in glob order. The only error condition is a malformed glob pattern.
func (e *DiscoveryEngine) Discover(patterns ...string) ([]*DiscoveryResult, error) {
	var results []*DiscoveryResult
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, NewDiscoveryError("invalid pattern "+pattern, err)
		}

		for _, match := range matches {
			result := e.examine(match)
			if result == nil || seen[result.Manifest.Dir] {
				continue
			}
			seen[result.Manifest.Dir] = true
			results = append(results, result)
		}
	}

	return results, nil
}

// DiscoverByType scans patterns like Discover and keeps only manifests whose
// PluginType equals pluginType.
func (e *DiscoveryEngine) DiscoverByType(pluginType string, patterns ...string) ([]*DiscoveryResult, error) {
	all, err := e.Discover(patterns...)
	if err != nil {
		return nil, err
	}

	filtered := make([]*DiscoveryResult, 0, len(all))
	for _, result := range all {
		if result.Manifest.PluginType == pluginType {
			filtered = append(filtered, result)
		}
	}
	return filtered, nil
}

// DiscoverDir reads the single plugin manifest in dir. It returns (nil, nil)
// when no descriptor file exists there; reload maps that to a
// manifest-not-found diagnostic.
func (e *DiscoveryEngine) DiscoverDir(dir string) (*DiscoveryResult, error) {
	path, exists := findManifestFile(dir)
	if !exists {
		return nil, nil
	}
	return e.load(path, dir)
}

// examine inspects one glob match, which may be a plugin directory or a
// descriptor file. Unreadable or invalid candidates are skipped with a log.
func (e *DiscoveryEngine) examine(match string) *DiscoveryResult {
	info, err := os.Stat(match)
	if err != nil {
		e.logger.Debug("skipping unreadable discovery match", "path", match, "error", err)
		return nil
	}

	var manifestPath, dir string
	if info.IsDir() {
		path, exists := findManifestFile(match)
		if !exists {
			e.logger.Debug("skipping directory without plugin manifest", "dir", match)
			return nil
		}
		manifestPath, dir = path, match
	} else {
		manifestPath, dir = match, filepath.Dir(match)
	}

	result, err := e.load(manifestPath, dir)
	if err != nil {
		e.logger.Warn("skipping plugin with invalid manifest", "path", manifestPath, "error", err)
		return nil
	}
	return result
}

// load parses and validates the descriptor at path, resolving dir to an
// absolute path on the manifest.
func (e *DiscoveryEngine) load(path, dir string) (*DiscoveryResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from discovery globs
	if err != nil {
		return nil, NewInvalidManifestError(path, err)
	}

	manifest, err := ParseManifest(data, path)
	if err != nil {
		return nil, err
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}
	manifest.Dir = absDir

	return &DiscoveryResult{
		Manifest:     manifest,
		Source:       path,
		DiscoveredAt: timecache.CachedTime(),
	}, nil
}

// findManifestFile returns the first descriptor file present in dir, in the
// precedence order of manifestFileNames.
func findManifestFile(dir string) (string, bool) {
	for _, name := range manifestFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
