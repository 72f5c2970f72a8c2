// Package pluginhost provides plugin loading and dependency resolution for Go
// host applications. It discovers plugin manifests on disk, validates and orders
// their declared dependencies so that dependencies initialize before dependents,
// loads their modules, and wires them into a shared registry with lookup,
// hot-reload, and lifecycle hooks.
//
// Key Features:
//   - Topological dependency resolution with cycle, missing-dependency, and
//     version-mismatch diagnostics
//   - Semantic version range matching (exact, caret, tilde, comparator, wildcard)
//   - Plugin registry with typed lookup and metadata queries
//   - Lifecycle coordination: ordered load, reverse-order shutdown, hot reload
//   - File-driven auto-reload backed by Argus file watching
//   - Structured, independently matchable error kinds
//
// Basic Usage:
//
//	host := pluginhost.NewHost(pluginhost.HostConfig{Logger: logger})
//
//	// Register the constructible modules plugin manifests refer to.
//	host.RegisterModule("plugins/cache/module.go", cacheModule)
//
//	// Discover, resolve, and load everything under the patterns.
//	if err := host.LoadPlugins(ctx, "plugins/*"); err != nil {
//		log.Fatal(err)
//	}
//
//	api, err := host.GetPlugin("cache")
//
// Dependency declarations use semantic version ranges, so a manifest requiring
// "logger" at "^1.0.0" loads against any 1.x logger plugin and fails resolution
// with a version-mismatch diagnostic otherwise.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package pluginhost
