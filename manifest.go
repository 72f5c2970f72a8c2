// manifest.go: plugin manifest parsing and validation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dependency declares a requirement on another plugin, by id and by the
// semantic version range the requester accepts.
type Dependency struct {
	ID           string `json:"id" yaml:"id"`
	VersionRange string `json:"version" yaml:"version"`
}

// Manifest represents a plugin descriptor file (plugin.json / plugin.yaml).
//
// The manifest is how plugins declare their identity, version, dependencies,
// and entry points. Both JSON and YAML formats are supported.
//
// Example JSON manifest:
//
//	{
//	  "id": "cache",
//	  "name": "LRU Cache",
//	  "pluginType": "storage",
//	  "version": "1.2.3",
//	  "module": "dist/module.go",
//	  "main": "dist/main.go",
//	  "dependencies": [
//	    {"id": "logger", "version": "^1.0.0"}
//	  ]
//	}
type Manifest struct {
	// Core plugin identity
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	PluginType  string `json:"pluginType" yaml:"pluginType"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Entry points. Module is attempted first, Main is the fallback.
	// At least one must be present for the plugin to be loadable.
	Module string `json:"module,omitempty" yaml:"module,omitempty"`
	Main   string `json:"main,omitempty" yaml:"main,omitempty"`

	// Declared dependencies, in declaration order.
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Dir is the plugin's resolved absolute directory, filled in at discovery
	// time. It is not part of the on-disk descriptor.
	Dir string `json:"-" yaml:"-"`
}

// manifestFileNames are the descriptor file names discovery looks for, in
// precedence order.
var manifestFileNames = []string{"plugin.json", "plugin.yaml", "plugin.yml"}

// ParseManifest parses and validates a plugin descriptor. The format is
// chosen from the file extension: .json uses JSON, everything else YAML.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	if len(data) == 0 {
		return nil, NewInvalidManifestError(path, fmt.Errorf("manifest data is empty"))
	}

	var m Manifest
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, NewInvalidManifestError(path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, NewInvalidManifestError(path, err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, NewInvalidManifestError(path, err)
	}

	return &m, nil
}

// Validate checks manifest constraints: required fields, a well-formed
// semantic version, and well-formed dependency ranges. Entry points are not
// required here; loadability is enforced by the module loader, so that
// resolution-only callers can still work with module-less descriptors.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("id is required")
	}
	if m.PluginType == "" {
		return fmt.Errorf("pluginType is required")
	}
	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if _, err := parseVersion(m.Version); err != nil {
		return fmt.Errorf("version %q is not a valid semantic version: %w", m.Version, err)
	}

	for _, dep := range m.Dependencies {
		if dep.ID == "" {
			return fmt.Errorf("dependency of %q is missing an id", m.ID)
		}
		if dep.VersionRange == "" {
			continue // no range means any version
		}
		if _, err := parseRange(dep.VersionRange); err != nil {
			return fmt.Errorf("dependency %q of %q has invalid version range %q: %w",
				dep.ID, m.ID, dep.VersionRange, err)
		}
	}

	return nil
}
