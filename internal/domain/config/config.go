// Package config defines the wslup configuration file, its defaults and its
// validation rules.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full wslup configuration. Every section has a usable default.
type Config struct {
	Log      LogConfig      `yaml:"log" toml:"log"`
	Retry    RetryConfig    `yaml:"retry" toml:"retry"`
	Network  NetworkConfig  `yaml:"network" toml:"network"`
	Distro   DistroConfig   `yaml:"distro" toml:"distro"`
	Packages PackagesConfig `yaml:"packages" toml:"packages"`
	Runtimes RuntimesConfig `yaml:"runtimes" toml:"runtimes"`
	Cloud    CloudConfig    `yaml:"cloud" toml:"cloud"`
	Docker   DockerConfig   `yaml:"docker" toml:"docker"`
	Identity IdentityConfig `yaml:"identity" toml:"identity"`
	SSH      SSHConfig      `yaml:"ssh" toml:"ssh"`

	// Optional lists step names that only warn when they fail.
	Optional []string `yaml:"optional" toml:"optional"`
}

// LogConfig configures the run log.
type LogConfig struct {
	File  string `yaml:"file" toml:"file"`
	Level string `yaml:"level" toml:"level"`
	JSON  bool   `yaml:"json" toml:"json"`
}

// RetryConfig configures retries of network-bound commands.
type RetryConfig struct {
	Attempts int      `yaml:"attempts" toml:"attempts"`
	Delay    Duration `yaml:"delay" toml:"delay"`
}

// NetworkConfig configures the connectivity precondition.
type NetworkConfig struct {
	Probes  []string `yaml:"probes" toml:"probes"`
	Timeout Duration `yaml:"timeout" toml:"timeout"`
	Skip    bool     `yaml:"skip" toml:"skip"`
}

// DistroConfig selects the WSL distribution to install.
type DistroConfig struct {
	Name string `yaml:"name" toml:"name"`
	// WingetID is the package used when `wsl --install` fails.
	WingetID string `yaml:"winget_id" toml:"winget_id"`
}

// PackagesConfig lists CLI packages.
type PackagesConfig struct {
	Apt []string `yaml:"apt" toml:"apt"`
	// Brew lists formulae installed with Homebrew only.
	Brew []string `yaml:"brew" toml:"brew"`
	// BrewNames maps apt package names to Homebrew formulae for the fallback.
	// An empty value disables the fallback for that package.
	BrewNames map[string]string `yaml:"brew_names" toml:"brew_names"`
}

// RuntimeConfig configures one language runtime.
type RuntimeConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	MinVersion string `yaml:"min_version" toml:"min_version"`
}

// RuntimesConfig configures the language runtimes.
type RuntimesConfig struct {
	Node   RuntimeConfig `yaml:"node" toml:"node"`
	Python RuntimeConfig `yaml:"python" toml:"python"`
	Go     RuntimeConfig `yaml:"go" toml:"go"`
	Rust   RuntimeConfig `yaml:"rust" toml:"rust"`
}

// CloudConfig toggles the cloud CLIs.
type CloudConfig struct {
	AWS        bool   `yaml:"aws" toml:"aws"`
	AWSProfile string `yaml:"aws_profile" toml:"aws_profile"`
	Azure      bool   `yaml:"azure" toml:"azure"`
	Kubectl    bool   `yaml:"kubectl" toml:"kubectl"`
	Terraform  bool   `yaml:"terraform" toml:"terraform"`
}

// DockerConfig configures the Docker engine steps.
type DockerConfig struct {
	Enabled        bool `yaml:"enabled" toml:"enabled"`
	AddUserToGroup bool `yaml:"add_user_to_group" toml:"add_user_to_group"`
}

// IdentityConfig pre-answers the git identity prompt.
type IdentityConfig struct {
	Name  string `yaml:"name" toml:"name"`
	Email string `yaml:"email" toml:"email"`
}

// SSHConfig configures SSH key generation.
type SSHConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Type    string `yaml:"type" toml:"type"`
	Path    string `yaml:"path" toml:"path"`
	Comment string `yaml:"comment" toml:"comment"`
}

// Duration is a time.Duration written as a string such as "2s" or "1m30s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// IsOptional reports whether name is listed in Optional.
func (c *Config) IsOptional(name string) bool {
	for _, o := range c.Optional {
		if o == name {
			return true
		}
	}
	return false
}

// BrewName returns the Homebrew formula used as the fallback for an apt
// package, or "" when no fallback exists.
func (c *Config) BrewName(aptPackage string) string {
	if name, ok := c.Packages.BrewNames[aptPackage]; ok {
		return name
	}
	return aptPackage
}
