// errors.go: structured error definitions for the go-pluginhost system
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	stderrors "errors"
	"strings"

	"github.com/agilira/go-errors"
)

// Error codes for the go-pluginhost system
const (
	// Resolution errors (1000-1099)
	ErrCodeCircularDependency = "RESOLVE_1001"
	ErrCodeDependencyNotFound = "RESOLVE_1002"
	ErrCodeVersionMismatch    = "RESOLVE_1003"

	// Registry errors (1100-1199)
	ErrCodeDuplicatePlugin = "REGISTRY_1101"
	ErrCodePluginNotFound  = "REGISTRY_1102"

	// Load and reload errors (1200-1299)
	ErrCodeManifestNotFound    = "LOAD_1201"
	ErrCodePluginLoadError     = "LOAD_1202"
	ErrCodePluginInvalidExport = "LOAD_1203"
	ErrCodePluginUnloadError   = "LOAD_1204"

	// Manifest and discovery errors (1300-1399)
	ErrCodeInvalidManifest = "MANIFEST_1301"
	ErrCodeDiscoveryError  = "MANIFEST_1302"

	// Watcher errors (1400-1499)
	ErrCodeWatcherError = "WATCH_1401"
)

// Resolution error constructors

// NewCircularDependencyError reports a dependency cycle. The cycle is the
// ordered sequence of plugin ids with the first id repeated at the end.
func NewCircularDependencyError(cycle []string) *errors.Error {
	return errors.New(ErrCodeCircularDependency, "Circular dependency detected: "+strings.Join(cycle, " -> ")).
		WithUserMessage("Plugins form a dependency cycle and cannot be ordered").
		WithContext("cycle", cycle).
		WithSeverity("error")
}

// NewDependencyNotFoundError reports a declared dependency that is absent from
// the resolution input. requestedBy is empty for root-level lookups.
func NewDependencyNotFoundError(packageID, requestedBy string) *errors.Error {
	err := errors.New(ErrCodeDependencyNotFound, "Dependency not found: "+packageID).
		WithUserMessage("A declared plugin dependency is not present in the plugin set").
		WithContext("package_id", packageID).
		WithSeverity("error")
	if requestedBy != "" {
		err = err.WithContext("requested_by", requestedBy)
	}
	return err
}

// NewVersionMismatchError reports a dependency whose concrete version does not
// satisfy the range its requester declared.
func NewVersionMismatchError(packageID, actualVersion, requiredRange, requestedBy string) *errors.Error {
	return errors.New(ErrCodeVersionMismatch,
		"Version mismatch: "+packageID+"@"+actualVersion+" does not satisfy "+requiredRange+" required by "+requestedBy).
		WithUserMessage("A plugin version does not satisfy a declared dependency range").
		WithContext("package_id", packageID).
		WithContext("actual_version", actualVersion).
		WithContext("required_version", requiredRange).
		WithContext("requested_by", requestedBy).
		WithSeverity("error")
}

// Registry error constructors

func NewDuplicatePluginError(id string) *errors.Error {
	return errors.New(ErrCodeDuplicatePlugin, "Plugin already registered: "+id).
		WithUserMessage("Plugin ids must be unique within the registry").
		WithContext("plugin_id", id).
		WithSeverity("error")
}

func NewPluginNotFoundError(id string) *errors.Error {
	return errors.New(ErrCodePluginNotFound, "Plugin not found: "+id).
		WithUserMessage("The requested plugin is not registered").
		WithContext("plugin_id", id).
		WithSeverity("error")
}

// Load and reload error constructors

// NewManifestNotFoundError reports a reload whose on-disk descriptor has
// disappeared from the plugin's original directory.
func NewManifestNotFoundError(id, dir string) *errors.Error {
	return errors.New(ErrCodeManifestNotFound, "Manifest not found for plugin "+id).
		WithUserMessage("The plugin's manifest file is no longer present in its directory").
		WithContext("plugin_id", id).
		WithContext("dir", dir).
		WithSeverity("error")
}

// NewPluginLoadError reports a module load, factory invocation, or lifecycle
// hook failure. cause is the last underlying error from whichever entry-point
// attempt was made.
func NewPluginLoadError(id string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodePluginLoadError, "Failed to load plugin "+id).
		WithUserMessage("The plugin module could not be loaded").
		WithContext("plugin_id", id).
		WithSeverity("error").
		AsRetryable()
}

// NewPluginUnloadError reports a failed pre-removal hook. The plugin stays
// registered when its OnUnload hook fails.
func NewPluginUnloadError(id string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodePluginUnloadError, "Failed to unload plugin "+id).
		WithUserMessage("The plugin's unload hook failed").
		WithContext("plugin_id", id).
		WithSeverity("error")
}

// NewPluginInvalidExportError reports a module that loaded but whose resolved
// export does not structurally match the expected factory shape.
func NewPluginInvalidExportError(id string) *errors.Error {
	return errors.New(ErrCodePluginInvalidExport, "Invalid export for plugin "+id).
		WithUserMessage("The plugin module's export is not a valid plugin factory").
		WithContext("plugin_id", id).
		WithSeverity("error")
}

// Manifest and discovery error constructors

func NewInvalidManifestError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeInvalidManifest, "Invalid plugin manifest").
		WithUserMessage("The plugin manifest file failed validation").
		WithContext("manifest_path", path).
		WithSeverity("error")
}

func NewDiscoveryError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeDiscoveryError, "Discovery error: "+message).
		WithUserMessage("Plugin discovery failed").
		WithSeverity("error")
}

// Watcher error constructors

func NewWatcherError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeWatcherError, "Watcher error: "+message).
		WithUserMessage("Plugin file watching failed").
		WithSeverity("error")
}

// HasErrorCode reports whether err is a structured error carrying code.
// It allows callers to match error kinds without depending on constructors.
func HasErrorCode(err error, code string) bool {
	var structured *errors.Error
	if !stderrors.As(err, &structured) {
		return false
	}
	return structured.ErrorCode() == errors.ErrorCode(code)
}
