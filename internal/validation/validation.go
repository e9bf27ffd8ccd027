// Package validation checks configuration values that end up as command
// arguments or file contents, rejecting shell metacharacters, newlines and
// path traversal.
package validation

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput         = errors.New("input cannot be empty")
	ErrInvalidPackageName = errors.New("invalid package name")
	ErrInvalidFormula     = errors.New("invalid Homebrew formula")
	ErrInvalidWingetID    = errors.New("invalid winget package ID")
	ErrInvalidDistroName  = errors.New("invalid distribution name")
	ErrInvalidHostname    = errors.New("invalid hostname")
	ErrInvalidProbe       = errors.New("invalid probe address")
	ErrNewlineInjection   = errors.New("newline injection detected")
	ErrInvalidGitConfig   = errors.New("invalid git config value")
	ErrPathTraversal      = errors.New("path traversal detected")
	ErrInvalidPath        = errors.New("invalid path")
	ErrCommandInjection   = errors.New("potential command injection detected")
)

var (
	// packageNameRegex matches Debian package names.
	// Examples: "git", "build-essential", "python3.12", "g++"
	packageNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9.+-]*$`)

	// formulaRegex matches Homebrew formulae, optionally versioned or tapped.
	// Examples: "fd", "python@3.12", "hashicorp/tap/terraform"
	formulaRegex = regexp.MustCompile(`^([a-z0-9_-]+/[a-z0-9_-]+/)?[a-z0-9][a-z0-9._+-]*(@[0-9.]+)?$`)

	// wingetIDRegex matches winget package IDs: Publisher.PackageName format
	// Examples: "Canonical.Ubuntu", "Canonical.Ubuntu.2404"
	wingetIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*\.[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

	// distroNameRegex matches names accepted by `wsl --install -d`.
	// Examples: "Ubuntu", "Ubuntu-24.04", "Debian", "kali-linux"
	distroNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)

	// hostnameRegex matches hostnames and IPv4 addresses.
	// Examples: "github.com", "deb.debian.org", "192.168.1.1"
	hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.-]*$`)

	// gitConfigSafeRegex matches safe git config values (no newlines, no control chars)
	gitConfigSafeRegex = regexp.MustCompile(`^[^\x00-\x1f\x7f]*$`)

	// shellMetaChars contains shell metacharacters that could enable injection
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}
)

// ValidatePackageName validates an apt package name.
func ValidatePackageName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 256 {
		return fmt.Errorf("%w: name too long (max 256 characters)", ErrInvalidPackageName)
	}

	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidPackageName, name)
	}

	return nil
}

// ValidateFormula validates a Homebrew formula name.
func ValidateFormula(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 256 {
		return fmt.Errorf("%w: name too long (max 256 characters)", ErrInvalidFormula)
	}

	if !formulaRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidFormula, name)
	}

	return nil
}

// ValidateWingetID validates a winget package ID (Publisher.PackageName format).
func ValidateWingetID(id string) error {
	if id == "" {
		return ErrEmptyInput
	}

	if len(id) > 256 {
		return fmt.Errorf("%w: package ID too long", ErrInvalidWingetID)
	}

	if !wingetIDRegex.MatchString(id) {
		return fmt.Errorf("%w: %q must be in 'Publisher.PackageName' format", ErrInvalidWingetID, id)
	}

	return nil
}

// ValidateDistroName validates a WSL distribution name.
func ValidateDistroName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, name)
	}

	if len(name) > 64 || !distroNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidDistroName, name)
	}

	return nil
}

// ValidateHostname validates a hostname or IP address.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return ErrEmptyInput
	}

	if len(hostname) > 253 {
		return fmt.Errorf("%w: hostname too long", ErrInvalidHostname)
	}

	if net.ParseIP(hostname) != nil {
		return nil
	}

	if !hostnameRegex.MatchString(hostname) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidHostname, hostname)
	}

	return nil
}

// ValidateProbe validates a host:port network probe address.
func ValidateProbe(address string) error {
	if address == "" {
		return ErrEmptyInput
	}

	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %q is not host:port", ErrInvalidProbe, address)
	}
	if err := ValidateHostname(host); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProbe, err)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: port %q out of range", ErrInvalidProbe, port)
	}

	return nil
}

// ValidateGitConfigValue validates a git config value for injection attacks.
func ValidateGitConfigValue(value string) error {
	// Check for newlines which could inject additional config lines
	if strings.ContainsAny(value, "\n\r") {
		return fmt.Errorf("%w: git config value contains newlines", ErrNewlineInjection)
	}

	// Check for control characters
	if !gitConfigSafeRegex.MatchString(value) {
		return fmt.Errorf("%w: contains control characters", ErrInvalidGitConfig)
	}

	return nil
}

// ValidatePath validates a file path and rejects traversal sequences.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if strings.ContainsAny(path, "\n\r") {
		return fmt.Errorf("%w: path contains newlines", ErrNewlineInjection)
	}

	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}

	return nil
}

// containsShellMeta checks if a string contains shell metacharacters.
func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

// containsPathTraversal checks for common path traversal patterns.
func containsPathTraversal(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return true
		}
	}

	// Check for URL-encoded traversal
	lower := strings.ToLower(path)
	return strings.Contains(lower, "%2e%2e")
}
