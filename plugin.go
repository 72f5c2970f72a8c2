// plugin.go: core plugin, instance, and factory types
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"context"
	"time"
)

// Instance is a loaded plugin's full surface: its public API plus optional
// lifecycle hooks. Hooks are independently optional; a nil hook is simply
// skipped. Hooks take a context because they may perform blocking work.
type Instance struct {
	// API is the plugin's public surface, returned by GetPlugin lookups.
	API any

	// OnLoad runs once after the plugin is registered. A failure aborts the
	// remainder of the surrounding batch load.
	OnLoad func(ctx context.Context) error

	// OnUnload runs before the plugin is removed from the registry.
	OnUnload func(ctx context.Context) error
}

// Factory is the loaded, not-yet-instantiated constructor for a plugin.
//
// A module's resolved export must satisfy this shape to be loadable; the
// check is performed once at load time via AsFactory.
type Factory interface {
	// ID returns the plugin id the factory constructs.
	ID() string

	// PluginType returns the plugin's type tag.
	PluginType() string

	// Create builds the plugin instance. The registry passed in is bound to
	// the host, with the plugin's resolved dependencies already registered.
	Create(ctx context.Context, registry *Registry) (*Instance, error)
}

// FactoryFunc is a convenience Factory implementation for modules defined in
// host code.
type FactoryFunc struct {
	PluginID string
	Type     string
	Build    func(ctx context.Context, registry *Registry) (*Instance, error)
}

// ID implements Factory.
func (f *FactoryFunc) ID() string { return f.PluginID }

// PluginType implements Factory.
func (f *FactoryFunc) PluginType() string { return f.Type }

// Create implements Factory.
func (f *FactoryFunc) Create(ctx context.Context, registry *Registry) (*Instance, error) {
	return f.Build(ctx, registry)
}

// AsFactory performs the structural capability check on a loaded module's
// export: the value must satisfy the Factory shape, carry a non-empty id, and
// be constructible. It is the single place a module export is validated.
func AsFactory(v any) (Factory, bool) {
	f, ok := v.(Factory)
	if !ok || f == nil {
		return nil, false
	}
	if ff, isFunc := f.(*FactoryFunc); isFunc && (ff == nil || ff.Build == nil) {
		return nil, false
	}
	if f.ID() == "" {
		return nil, false
	}
	return f, true
}

// Metadata is the registry's immutable snapshot of a plugin's descriptor,
// taken at registration time. A reload replaces it wholesale; it is never
// patched in place.
type Metadata struct {
	ID           string       `json:"id"`
	Name         string       `json:"name,omitempty"`
	PluginType   string       `json:"pluginType"`
	Version      string       `json:"version"`
	Description  string       `json:"description,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
	Dir          string       `json:"dir"`
	RegisteredAt time.Time    `json:"registeredAt"`
}

// metadataFromManifest derives the registration-time snapshot for a manifest.
func metadataFromManifest(m *Manifest, registeredAt time.Time) Metadata {
	deps := make([]Dependency, len(m.Dependencies))
	copy(deps, m.Dependencies)
	return Metadata{
		ID:           m.ID,
		Name:         m.Name,
		PluginType:   m.PluginType,
		Version:      m.Version,
		Description:  m.Description,
		Dependencies: deps,
		Dir:          m.Dir,
		RegisteredAt: registeredAt,
	}
}
