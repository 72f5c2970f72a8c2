// host.go: plugin lifecycle coordination - load, unload, reload, shutdown
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// LifecycleState describes where a plugin id is in its lifecycle. Loading and
// Unloading are transient phases during which lifecycle hooks execute.
type LifecycleState string

// Lifecycle states, in the order a plugin moves through them.
const (
	StateUnloaded  LifecycleState = "unloaded"
	StateLoading   LifecycleState = "loading"
	StateLoaded    LifecycleState = "loaded"
	StateUnloading LifecycleState = "unloading"
)

// HostConfig configures a plugin host.
type HostConfig struct {
	// Logger receives structured lifecycle logs. nil means silent.
	Logger any

	// Loader resolves manifests to factories. Defaults to a fresh
	// HostModuleLoader, populated through Host.RegisterModule.
	Loader ModuleLoader

	// WatchPollInterval is how often the file watcher polls manifest files.
	WatchPollInterval time.Duration

	// WatchCacheTTL bounds how long the watcher caches file stat results.
	WatchCacheTTL time.Duration
}

// setConfigDefaults fills in zero-valued configuration fields.
func setConfigDefaults(config *HostConfig) {
	if config.WatchPollInterval == 0 {
		config.WatchPollInterval = 2 * time.Second
	}
	if config.WatchCacheTTL == 0 {
		config.WatchCacheTTL = time.Second
	}
}

// HostMetrics is a point-in-time snapshot of host activity counters.
type HostMetrics struct {
	PluginsLoaded   int64 `json:"plugins_loaded"`
	PluginsUnloaded int64 `json:"plugins_unloaded"`
	PluginsReloaded int64 `json:"plugins_reloaded"`
	LoadFailures    int64 `json:"load_failures"`
	ReloadFailures  int64 `json:"reload_failures"`
}

// hostMetrics is the live atomic counter set behind HostMetrics.
type hostMetrics struct {
	pluginsLoaded   atomic.Int64
	pluginsUnloaded atomic.Int64
	pluginsReloaded atomic.Int64
	loadFailures    atomic.Int64
	reloadFailures  atomic.Int64
}

// Host coordinates the plugin lifecycle: it discovers manifests, resolves
// their dependency order, loads modules, registers instances, and fires
// lifecycle hooks. Removal runs the same steps in reverse.
//
// All lifecycle operations (LoadPlugins, UnloadPlugin, ReloadPlugin,
// Shutdown) are serialized by an internal mutex, so the registry's
// register/unregister atomicity holds even with concurrent callers. Lookup
// and metadata queries go straight to the registry and never block behind a
// running load.
type Host struct {
	logger    Logger
	config    HostConfig
	registry  *Registry
	loader    ModuleLoader
	discovery *DiscoveryEngine

	// mu serializes lifecycle mutations. states and loadOrder are guarded
	// by it.
	mu        sync.Mutex
	states    map[string]LifecycleState
	loadOrder []string

	// watchMu guards the single active watcher slot.
	watchMu sync.Mutex
	watcher *PluginWatcher

	metrics hostMetrics
}

// NewHost creates a plugin host.
func NewHost(config HostConfig) *Host {
	setConfigDefaults(&config)
	logger := NewLogger(config.Logger)

	loader := config.Loader
	if loader == nil {
		loader = NewHostModuleLoader(logger)
	}

	return &Host{
		logger:    logger,
		config:    config,
		registry:  NewRegistry(),
		loader:    loader,
		discovery: NewDiscoveryEngine(logger),
		states:    make(map[string]LifecycleState),
	}
}

// Registry exposes the host's plugin registry for direct registration and
// lookup by callers standing in for the coordinator.
func (h *Host) Registry() *Registry {
	return h.registry
}

// RegisterModule binds a module provider to an entry point on the default
// loader. It is a no-op with an error log when a custom ModuleLoader is in
// use; custom loaders manage their own module sources.
func (h *Host) RegisterModule(entry string, provider ModuleProvider) {
	if loader, ok := h.loader.(*HostModuleLoader); ok {
		loader.RegisterModule(entry, provider)
		return
	}
	h.logger.Error("RegisterModule ignored: host uses a custom ModuleLoader", "entry", entry)
}

// LoadPlugins discovers every plugin matching the patterns, resolves their
// dependency order, and loads them one by one: module load, factory
// invocation, registration, then the OnLoad hook, awaiting each step before
// the next plugin starts. Topological order guarantees a plugin's
// dependencies are registered before its factory runs.
//
// Resolution errors abort the batch before anything is instantiated. Load
// errors abort the remaining batch but never roll back plugins that already
// loaded.
func (h *Host) LoadPlugins(ctx context.Context, patterns ...string) error {
	results, err := h.discovery.Discover(patterns...)
	if err != nil {
		return err
	}

	manifests := make([]*Manifest, 0, len(results))
	for _, result := range results {
		manifests = append(manifests, result.Manifest)
	}

	sorted, err := ResolveDependencies(manifests)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, manifest := range sorted {
		if err := h.loadOne(ctx, manifest); err != nil {
			return err
		}
	}

	h.logger.Info("plugin batch loaded", "count", len(sorted))
	return nil
}

// loadOne runs the load sequence for a single resolved manifest. Callers
// hold h.mu.
func (h *Host) loadOne(ctx context.Context, manifest *Manifest) error {
	id := manifest.ID
	h.states[id] = StateLoading

	factory, err := h.loader.Load(ctx, manifest)
	if err != nil {
		h.states[id] = StateUnloaded
		h.metrics.loadFailures.Add(1)
		return err
	}

	instance, err := factory.Create(ctx, h.registry)
	if err != nil {
		h.states[id] = StateUnloaded
		h.metrics.loadFailures.Add(1)
		return NewPluginLoadError(id, err)
	}
	if instance == nil {
		h.states[id] = StateUnloaded
		h.metrics.loadFailures.Add(1)
		return NewPluginLoadError(id, fmt.Errorf("factory returned a nil instance"))
	}

	metadata := metadataFromManifest(manifest, timecache.CachedTime())
	if err := h.registry.Register(id, instance, metadata); err != nil {
		h.states[id] = StateUnloaded
		h.metrics.loadFailures.Add(1)
		return err
	}
	h.loadOrder = append(h.loadOrder, id)

	if instance.OnLoad != nil {
		if err := instance.OnLoad(ctx); err != nil {
			// The plugin stays registered: the batch has no rollback, and
			// shutdown will still run its OnUnload in reverse order.
			h.states[id] = StateLoaded
			h.metrics.loadFailures.Add(1)
			return NewPluginLoadError(id, err)
		}
	}

	h.states[id] = StateLoaded
	h.metrics.pluginsLoaded.Add(1)
	h.logger.Info("plugin loaded",
		"plugin", id,
		"type", manifest.PluginType,
		"version", manifest.Version)
	return nil
}

// UnloadPlugin runs id's OnUnload hook, awaits it, and removes the plugin
// from the registry. It fails with a plugin-not-found diagnostic when id was
// never loaded, and leaves the plugin registered when its hook fails.
func (h *Host) UnloadPlugin(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unloadLocked(ctx, id)
}

// unloadLocked is UnloadPlugin without the lock. Callers hold h.mu.
func (h *Host) unloadLocked(ctx context.Context, id string) error {
	instance, exists := h.registry.GetPluginInstance(id)
	if !exists {
		return NewPluginNotFoundError(id)
	}

	h.states[id] = StateUnloading
	if instance.OnUnload != nil {
		if err := instance.OnUnload(ctx); err != nil {
			h.states[id] = StateLoaded
			return NewPluginUnloadError(id, err)
		}
	}

	h.registry.Unregister(id)
	for i, existing := range h.loadOrder {
		if existing == id {
			h.loadOrder = append(h.loadOrder[:i], h.loadOrder[i+1:]...)
			break
		}
	}
	delete(h.states, id)

	h.metrics.pluginsUnloaded.Add(1)
	h.logger.Info("plugin unloaded", "plugin", id)
	return nil
}

// ReloadPlugin hot-reloads id: it invalidates cached module state, unloads
// the running instance (firing OnUnload), re-reads the manifest from the
// plugin's original directory, and runs the load sequence for the fresh
// descriptor. It fails with a manifest-not-found diagnostic when the on-disk
// descriptor has disappeared.
func (h *Host) ReloadPlugin(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	metadata, exists := h.registry.GetPluginMetadata(id)
	if !exists {
		return NewPluginNotFoundError(id)
	}

	h.loader.Invalidate(id)

	if err := h.unloadLocked(ctx, id); err != nil {
		h.metrics.reloadFailures.Add(1)
		return err
	}

	result, err := h.discovery.DiscoverDir(metadata.Dir)
	if err != nil {
		h.metrics.reloadFailures.Add(1)
		return err
	}
	if result == nil {
		h.metrics.reloadFailures.Add(1)
		return NewManifestNotFoundError(id, metadata.Dir)
	}

	if result.Manifest.ID != id {
		h.logger.Warn("manifest id changed across reload",
			"plugin", id, "new_id", result.Manifest.ID)
	}

	if err := h.loadOne(ctx, result.Manifest); err != nil {
		h.metrics.reloadFailures.Add(1)
		return err
	}

	h.metrics.pluginsReloaded.Add(1)
	h.logger.Info("plugin reloaded", "plugin", id)
	return nil
}

// Shutdown stops any active watch and unloads every loaded plugin in the
// reverse of its load order, so dependents come down before the dependencies
// they used. Each unload is attempted independently: a failing OnUnload is
// logged and does not stop the remaining unloads. The first error is
// returned after the sweep completes.
func (h *Host) Shutdown(ctx context.Context) error {
	h.StopWatching()

	h.mu.Lock()
	defer h.mu.Unlock()

	order := make([]string, len(h.loadOrder))
	copy(order, h.loadOrder)

	var firstErr error
	for i := len(order) - 1; i >= 0; i-- {
		if err := h.unloadLocked(ctx, order[i]); err != nil {
			h.logger.Error("plugin unload failed during shutdown",
				"plugin", order[i], "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	h.logger.Info("plugin host shut down", "unloaded", len(order))
	return firstErr
}

// GetPlugin returns the public API registered under id.
func (h *Host) GetPlugin(id string) (any, error) {
	return h.registry.GetPlugin(id)
}

// HasPlugin reports whether id is currently loaded.
func (h *Host) HasPlugin(id string) bool {
	return h.registry.HasPlugin(id)
}

// PluginIDs returns the ids of all loaded plugins in registration order.
func (h *Host) PluginIDs() []string {
	return h.registry.PluginIDs()
}

// GetPluginMetadata returns the metadata snapshot stored for id.
func (h *Host) GetPluginMetadata(id string) (Metadata, bool) {
	return h.registry.GetPluginMetadata(id)
}

// AllMetadata returns metadata for every loaded plugin in registration order.
func (h *Host) AllMetadata() []Metadata {
	return h.registry.AllMetadata()
}

// PluginsByType returns metadata for loaded plugins of the given type, in
// registration order.
func (h *Host) PluginsByType(pluginType string) []Metadata {
	return h.registry.PluginsByType(pluginType)
}

// PluginState returns id's current lifecycle state.
func (h *Host) PluginState(id string) LifecycleState {
	h.mu.Lock()
	defer h.mu.Unlock()

	if state, exists := h.states[id]; exists {
		return state
	}
	return StateUnloaded
}

// Metrics returns a snapshot of the host's activity counters.
func (h *Host) Metrics() HostMetrics {
	return HostMetrics{
		PluginsLoaded:   h.metrics.pluginsLoaded.Load(),
		PluginsUnloaded: h.metrics.pluginsUnloaded.Load(),
		PluginsReloaded: h.metrics.pluginsReloaded.Load(),
		LoadFailures:    h.metrics.loadFailures.Load(),
		ReloadFailures:  h.metrics.reloadFailures.Load(),
	}
}

// WatchPlugins starts file-driven auto-reload for the loaded plugins whose
// manifests match the patterns. On a manifest file change the host reloads
// the owning plugin and reports the outcome through callback; reload
// failures stay inside the callback's error channel and keep the watch
// alive. Starting a new watch stops the previous one first.
func (h *Host) WatchPlugins(callback WatchCallback, patterns ...string) error {
	if callback == nil {
		return NewWatcherError("watch callback is required", nil)
	}

	results, err := h.discovery.Discover(patterns...)
	if err != nil {
		return err
	}

	targets := make(map[string]string)
	for _, result := range results {
		if h.registry.HasPlugin(result.Manifest.ID) {
			targets[result.Source] = result.Manifest.ID
		}
	}

	h.watchMu.Lock()
	defer h.watchMu.Unlock()

	if h.watcher != nil {
		h.watcher.Stop()
		h.watcher = nil
	}

	watcher := newPluginWatcher(h, targets, callback,
		h.config.WatchPollInterval, h.config.WatchCacheTTL, h.logger)
	if err := watcher.Start(); err != nil {
		return err
	}

	h.watcher = watcher
	h.logger.Info("plugin watch started", "manifests", len(targets))
	return nil
}

// StopWatching stops the active watch, if any. It is idempotent.
func (h *Host) StopWatching() {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()

	if h.watcher != nil {
		h.watcher.Stop()
		h.watcher = nil
	}
}
