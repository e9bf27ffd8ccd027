// Package versionutil extracts versions from tool output and compares them
// against configured minimums.
package versionutil

import (
	"fmt"
	"regexp"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/wslup/internal/domain/config"
)

// versionPattern finds the first dotted version number in a line of output,
// e.g. "go1.22.5", "v20.11.1" or "Python 3.12.3".
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// Extract returns the first version found in output in canonical semver form
// ("v1.22.5"), or "" when there is none.
func Extract(output string) string {
	match := versionPattern.FindString(output)
	if match == "" {
		return ""
	}
	return config.Canonical(match)
}

// AtLeast reports whether found satisfies minimum. An empty minimum accepts
// any version.
func AtLeast(found, minimum string) bool {
	if minimum == "" {
		return found != ""
	}
	f, m := config.Canonical(found), config.Canonical(minimum)
	if f == "" || m == "" {
		return false
	}
	return semver.Compare(f, m) >= 0
}

// Require checks the version reported in output against minimum.
func Require(tool, output, minimum string) error {
	found := Extract(output)
	if found == "" {
		return fmt.Errorf("%s: no version in output %q", tool, output)
	}
	if !AtLeast(found, minimum) {
		return fmt.Errorf("%s %s is older than required %s", tool, found, config.Canonical(minimum))
	}
	return nil
}
