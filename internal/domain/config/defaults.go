package config

import "time"

// Default file locations, searched in order when no --config is given.
var DefaultPaths = []string{
	"~/.wslup/wslup.yaml",
	"~/.wslup/wslup.yml",
	"~/.wslup/wslup.toml",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			File:  "~/.wslup/wslup.log",
			Level: "info",
		},
		Retry: RetryConfig{
			Attempts: 3,
			Delay:    Duration(2 * time.Second),
		},
		Network: NetworkConfig{
			Probes:  []string{"github.com:443"},
			Timeout: Duration(5 * time.Second),
		},
		Distro: DistroConfig{
			Name:     "Ubuntu",
			WingetID: "Canonical.Ubuntu",
		},
		Packages: PackagesConfig{
			Apt: []string{
				"build-essential",
				"git",
				"curl",
				"wget",
				"unzip",
				"zip",
				"jq",
				"ripgrep",
				"fd-find",
				"fzf",
				"tmux",
				"htop",
				"ca-certificates",
			},
			BrewNames: map[string]string{
				"build-essential": "",
				"ca-certificates": "",
				"fd-find":         "fd",
			},
		},
		Runtimes: RuntimesConfig{
			Node:   RuntimeConfig{Enabled: true, MinVersion: "18.0.0"},
			Python: RuntimeConfig{Enabled: true, MinVersion: "3.10.0"},
			Go:     RuntimeConfig{Enabled: true, MinVersion: "1.22.0"},
			Rust:   RuntimeConfig{Enabled: true, MinVersion: "1.75.0"},
		},
		Cloud: CloudConfig{
			AWS:       true,
			Azure:     true,
			Kubectl:   true,
			Terraform: true,
		},
		Docker: DockerConfig{
			Enabled:        true,
			AddUserToGroup: true,
		},
		SSH: SSHConfig{
			Enabled: true,
			Type:    "ed25519",
			Path:    "~/.ssh/id_ed25519",
		},
	}
}
