// watcher.go: file-driven plugin auto-reload with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// WatchOutcome tags the result of a watch-triggered reload.
type WatchOutcome string

// Watch outcomes reported through WatchCallback.
const (
	WatchOutcomeReload WatchOutcome = "reload"
	WatchOutcomeError  WatchOutcome = "error"
)

// WatchEvent is delivered to the watch callback after each watch-triggered
// reload attempt. Err is set only for WatchOutcomeError.
type WatchEvent struct {
	PluginID string
	Outcome  WatchOutcome
	Err      error
}

// WatchCallback receives watch-triggered reload outcomes. Reload failures
// are reported here and never propagate out of the watcher, so the watch
// stays alive across broken edits.
type WatchCallback func(event WatchEvent)

// PluginWatcher watches the manifest files of loaded plugins and triggers a
// reload on change. It owns one Argus watcher; Stop releases it permanently,
// and a stopped watcher cannot be restarted — the host creates a fresh one
// per WatchPlugins call.
type PluginWatcher struct {
	host     *Host
	watcher  *argus.Watcher
	callback WatchCallback
	targets  map[string]string // manifest path -> plugin id
	logger   Logger

	stopped  atomic.Bool
	stopOnce sync.Once
}

// newPluginWatcher wires an Argus watcher over the target manifest files.
func newPluginWatcher(
	host *Host,
	targets map[string]string,
	callback WatchCallback,
	pollInterval time.Duration,
	cacheTTL time.Duration,
	logger Logger,
) *PluginWatcher {
	config := argus.Config{
		PollInterval:         pollInterval,
		CacheTTL:             cacheTTL,
		MaxWatchedFiles:      len(targets) + 1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, path string) {
			logger.Error("plugin manifest watching error", "error", err, "file", path)
		},
	}

	return &PluginWatcher{
		host:     host,
		watcher:  argus.New(config),
		callback: callback,
		targets:  targets,
		logger:   logger,
	}
}

// Start registers every target manifest with the underlying watcher and
// begins polling.
func (pw *PluginWatcher) Start() error {
	for path := range pw.targets {
		if err := pw.watcher.Watch(path, pw.handleChange); err != nil {
			return NewWatcherError("failed to watch manifest "+path, err)
		}
	}

	if err := pw.watcher.Start(); err != nil {
		return NewWatcherError("failed to start manifest watcher", err)
	}
	return nil
}

// handleChange reacts to one manifest file change by reloading the owning
// plugin. A deleted manifest still goes through reload, which surfaces the
// manifest-not-found diagnostic on the callback's error channel.
func (pw *PluginWatcher) handleChange(event argus.ChangeEvent) {
	if pw.stopped.Load() {
		return
	}

	id, exists := pw.targets[event.Path]
	if !exists {
		pw.logger.Debug("change event for unwatched manifest", "path", event.Path)
		return
	}

	pw.logger.Info("plugin manifest change detected",
		"plugin", id,
		"path", event.Path,
		"is_delete", event.IsDelete)

	if err := pw.host.ReloadPlugin(context.Background(), id); err != nil {
		pw.callback(WatchEvent{PluginID: id, Outcome: WatchOutcomeError, Err: err})
		return
	}
	pw.callback(WatchEvent{PluginID: id, Outcome: WatchOutcomeReload})
}

// Stop halts polling and releases the underlying watcher. It is idempotent
// and safe to call concurrently with in-flight change handling.
func (pw *PluginWatcher) Stop() {
	pw.stopOnce.Do(func() {
		pw.stopped.Store(true)
		if err := pw.watcher.Stop(); err != nil {
			pw.logger.Error("failed to stop manifest watcher", "error", err)
		}
	})
}
