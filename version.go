// version.go: semantic version range matching for plugin dependencies
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

import (
	"github.com/Masterminds/semver/v3"
)

// Satisfies reports whether a concrete semantic version satisfies a declared
// range expression.
//
// Supported range forms:
//   - exact versions: "1.2.3"
//   - caret ranges: "^1.0.0" (same major; same minor when major is 0)
//   - tilde ranges: "~1.2.0" (same minor)
//   - comparator ranges: ">=1.0.0 <2.0.0"
//   - wildcard: "*" (always satisfied)
//
// Satisfies is a pure predicate: malformed versions or ranges simply do not
// match. Callers that need to distinguish malformed input use checkVersion.
func Satisfies(version, versionRange string) bool {
	ok, err := checkVersion(version, versionRange)
	return err == nil && ok
}

// checkVersion is the error-reporting form of Satisfies, used by the resolver
// and by manifest validation, which own the malformed-input error condition.
func checkVersion(version, versionRange string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, err
	}
	c, err := semver.NewConstraint(versionRange)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}

// parseVersion validates that raw is a well-formed semantic version.
func parseVersion(raw string) (*semver.Version, error) {
	return semver.NewVersion(raw)
}

// parseRange validates that raw is a well-formed version range expression.
func parseRange(raw string) (*semver.Constraints, error) {
	return semver.NewConstraint(raw)
}
