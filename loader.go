// loader.go: module loading with entry-point fallback and reload invalidation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// ModuleProvider produces a module's exported value. Providers stand in for
// dynamic code loading: Go links plugin code at build time, so the host
// registers one provider per entry point and the loader resolves manifests
// against that table. A provider may return anything; the loader applies the
// factory shape check to whatever comes back.
type ModuleProvider func() (any, error)

// ModuleLoader maps a discovered manifest to a constructible plugin factory.
//
// Load must attempt the manifest's primary entry point (module) first and
// fall back to the secondary one (main) if the first is absent or fails. It
// fails with a plugin-load diagnostic carrying the last underlying error when
// neither succeeds, and with an invalid-export diagnostic when a module
// resolves but its export does not match the factory shape.
type ModuleLoader interface {
	Load(ctx context.Context, manifest *Manifest) (Factory, error)

	// Invalidate drops any cached module state for id so the next Load
	// observes fresh code. Reload calls this before re-discovering.
	Invalidate(id string)
}

// HostModuleLoader is the default ModuleLoader. Entry points are resolved
// against the provider table first by the path joined with the plugin's
// directory, then by the bare entry string, so hosts can register providers
// either per absolute location or per logical entry name.
//
// Resolved factories are cached per plugin id; Invalidate busts the cache so
// a reload re-runs the provider.
type HostModuleLoader struct {
	mu        sync.RWMutex
	providers map[string]ModuleProvider
	cache     map[string]Factory
	logger    Logger
}

// NewHostModuleLoader creates an empty loader. A nil logger silences it.
func NewHostModuleLoader(logger any) *HostModuleLoader {
	return &HostModuleLoader{
		providers: make(map[string]ModuleProvider),
		cache:     make(map[string]Factory),
		logger:    NewLogger(logger),
	}
}

// RegisterModule binds a provider to an entry point path. Registering the
// same entry again replaces the previous provider; cached factories built
// from it stay valid until invalidated.
func (l *HostModuleLoader) RegisterModule(entry string, provider ModuleProvider) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.providers[entry] = provider
}

// Load implements ModuleLoader.
func (l *HostModuleLoader) Load(_ context.Context, manifest *Manifest) (Factory, error) {
	l.mu.RLock()
	if factory, cached := l.cache[manifest.ID]; cached {
		l.mu.RUnlock()
		return factory, nil
	}
	l.mu.RUnlock()

	entries := manifest.entryPoints()
	if len(entries) == 0 {
		return nil, NewPluginLoadError(manifest.ID,
			fmt.Errorf("manifest declares no module or main entry point"))
	}

	var lastErr error
	for _, entry := range entries {
		export, err := l.resolve(manifest.Dir, entry)
		if err != nil {
			lastErr = err
			l.logger.Debug("entry point failed, trying fallback",
				"plugin", manifest.ID, "entry", entry, "error", err)
			continue
		}

		factory, ok := AsFactory(export)
		if !ok {
			return nil, NewPluginInvalidExportError(manifest.ID)
		}

		l.mu.Lock()
		l.cache[manifest.ID] = factory
		l.mu.Unlock()
		return factory, nil
	}

	return nil, NewPluginLoadError(manifest.ID, lastErr)
}

// Invalidate implements ModuleLoader.
func (l *HostModuleLoader) Invalidate(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, id)
}

// resolve runs the provider registered for entry, preferring the
// directory-qualified key.
func (l *HostModuleLoader) resolve(dir, entry string) (any, error) {
	l.mu.RLock()
	provider, ok := l.providers[filepath.Join(dir, entry)]
	if !ok {
		provider, ok = l.providers[entry]
	}
	l.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no module provider registered for entry %q", entry)
	}
	return provider()
}

// entryPoints returns the manifest's declared entry points in attempt order:
// module first, then main as the fallback.
func (m *Manifest) entryPoints() []string {
	var entries []string
	if m.Module != "" {
		entries = append(entries, m.Module)
	}
	if m.Main != "" {
		entries = append(entries, m.Main)
	}
	return entries
}
