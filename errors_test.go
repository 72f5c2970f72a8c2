// errors_test.go: test coverage for the structured error taxonomy
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/agilira/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodesAreDistinct(t *testing.T) {
	codes := []string{
		ErrCodeCircularDependency,
		ErrCodeDependencyNotFound,
		ErrCodeVersionMismatch,
		ErrCodeDuplicatePlugin,
		ErrCodePluginNotFound,
		ErrCodeManifestNotFound,
		ErrCodePluginLoadError,
		ErrCodePluginInvalidExport,
		ErrCodePluginUnloadError,
		ErrCodeInvalidManifest,
		ErrCodeDiscoveryError,
		ErrCodeWatcherError,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate error code %s", code)
		seen[code] = true
	}
}

func TestErrorConstructorsCarryDiagnostics(t *testing.T) {
	t.Run("circular dependency keeps the full cycle", func(t *testing.T) {
		err := NewCircularDependencyError([]string{"a", "b", "a"})
		assert.Equal(t, []string{"a", "b", "a"}, err.Context["cycle"])
		assert.Contains(t, err.Error(), "a -> b -> a")
		assert.NotEmpty(t, err.UserMessage())
	})

	t.Run("dependency not found names the requester", func(t *testing.T) {
		err := NewDependencyNotFoundError("missing", "consumer")
		assert.Equal(t, "missing", err.Context["package_id"])
		assert.Equal(t, "consumer", err.Context["requested_by"])
	})

	t.Run("root-level dependency not found omits the requester", func(t *testing.T) {
		err := NewDependencyNotFoundError("missing", "")
		_, present := err.Context["requested_by"]
		assert.False(t, present)
	})

	t.Run("version mismatch reports both sides of the conflict", func(t *testing.T) {
		err := NewVersionMismatchError("dep", "1.2.0", "^2.0.0", "consumer")
		assert.Equal(t, "dep", err.Context["package_id"])
		assert.Equal(t, "1.2.0", err.Context["actual_version"])
		assert.Equal(t, "^2.0.0", err.Context["required_version"])
		assert.Equal(t, "consumer", err.Context["requested_by"])
	})

	t.Run("manifest not found names the directory", func(t *testing.T) {
		err := NewManifestNotFoundError("cache", "/plugins/cache")
		assert.Equal(t, "cache", err.Context["plugin_id"])
		assert.Equal(t, "/plugins/cache", err.Context["dir"])
	})

	t.Run("load error is retryable", func(t *testing.T) {
		err := NewPluginLoadError("cache", fmt.Errorf("module exploded"))
		assert.True(t, err.IsRetryable())
	})

	t.Run("unload error is not retryable", func(t *testing.T) {
		err := NewPluginUnloadError("cache", fmt.Errorf("hook failed"))
		assert.False(t, err.IsRetryable())
	})

	t.Run("invalid manifest names the file", func(t *testing.T) {
		err := NewInvalidManifestError("/plugins/x/plugin.json", fmt.Errorf("bad json"))
		assert.Equal(t, "/plugins/x/plugin.json", err.Context["manifest_path"])
	})
}

func TestHasErrorCode(t *testing.T) {
	t.Run("matches the carried code", func(t *testing.T) {
		err := NewPluginNotFoundError("ghost")
		assert.True(t, HasErrorCode(err, ErrCodePluginNotFound))
		assert.False(t, HasErrorCode(err, ErrCodeDuplicatePlugin))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("outer context: %w", NewDuplicatePluginError("cache"))
		assert.True(t, HasErrorCode(wrapped, ErrCodeDuplicatePlugin))
	})

	t.Run("plain errors never match", func(t *testing.T) {
		assert.False(t, HasErrorCode(fmt.Errorf("plain"), ErrCodePluginNotFound))
	})

	t.Run("nil never matches", func(t *testing.T) {
		assert.False(t, HasErrorCode(nil, ErrCodePluginNotFound))
	})
}

func TestStructuredErrorsMatchWithErrorsAs(t *testing.T) {
	var structured *errors.Error
	require.True(t, stderrors.As(NewWatcherError("boom", nil), &structured))
	assert.Equal(t, errors.ErrorCode(ErrCodeWatcherError), structured.ErrorCode())
	assert.Equal(t, "error", structured.Severity)
}
