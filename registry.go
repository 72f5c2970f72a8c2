// registry.go: in-memory plugin registry with metadata queries
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"sync"
)

// registeredPlugin is one live registry entry: the plugin's full instance
// plus the metadata snapshot taken at registration time.
type registeredPlugin struct {
	instance *Instance
	metadata Metadata
}

// Registry is the live mapping from plugin id to loaded instance and
// metadata. It enforces id uniqueness and answers lookup and metadata
// queries. Multi-entry query results follow registration order.
//
// The registry is safe for concurrent readers; mutations are guarded by a
// mutex so register and unregister remain atomic even when the host is used
// from multiple goroutines.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*registeredPlugin
	order   []string
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]*registeredPlugin),
	}
}

// Register inserts a plugin under id. It fails with a duplicate-plugin
// diagnostic if id is already present; the check and insert are atomic.
func (r *Registry) Register(id string, instance *Instance, metadata Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[id]; exists {
		return NewDuplicatePluginError(id)
	}

	r.plugins[id] = &registeredPlugin{instance: instance, metadata: metadata}
	r.order = append(r.order, id)
	return nil
}

// Unregister removes id and returns the stored instance. An absent id is not
// an error: the second return reports presence, and callers that need an
// error on a missing id enforce that themselves.
func (r *Registry) Unregister(id string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.plugins[id]
	if !exists {
		return nil, false
	}

	delete(r.plugins, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return entry.instance, true
}

// GetPlugin returns the public API of the plugin registered under id, or a
// plugin-not-found diagnostic. Lifecycle hooks are not exposed here; the
// coordinator reaches them through GetPluginInstance.
func (r *Registry) GetPlugin(id string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.plugins[id]
	if !exists {
		return nil, NewPluginNotFoundError(id)
	}
	return entry.instance.API, nil
}

// HasPlugin reports whether id is currently registered.
func (r *Registry) HasPlugin(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.plugins[id]
	return exists
}

// GetPluginInstance returns the full stored instance, hooks included. Used
// by the lifecycle coordinator; API consumers should prefer GetPlugin.
func (r *Registry) GetPluginInstance(id string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.plugins[id]
	if !exists {
		return nil, false
	}
	return entry.instance, true
}

// GetPluginMetadata returns the metadata snapshot stored for id.
func (r *Registry) GetPluginMetadata(id string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.plugins[id]
	if !exists {
		return Metadata{}, false
	}
	return entry.metadata, true
}

// AllMetadata returns metadata for every registered plugin, in registration
// order.
func (r *Registry) AllMetadata() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Metadata, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.plugins[id].metadata)
	}
	return result
}

// PluginsByType returns metadata for every registered plugin whose
// PluginType equals pluginType, in registration order. No matches yields an
// empty slice.
func (r *Registry) PluginsByType(pluginType string) []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Metadata, 0)
	for _, id := range r.order {
		if meta := r.plugins[id].metadata; meta.PluginType == pluginType {
			result = append(result, meta)
		}
	}
	return result
}

// PluginIDs returns the ids of all registered plugins, in registration order.
func (r *Registry) PluginIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.plugins)
}
