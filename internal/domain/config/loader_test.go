package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/testutil/mocks"
)

func TestLoader_NoPath_NoDefaultFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := config.NewLoader(mocks.NewFileSystem()).Load("")

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoader_NoPath_FindsDefaultFile(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	home := ports.ExpandPath("~/.wslup/wslup.toml")
	fs.AddFile(home, "[distro]\nname = \"Debian\"\n")

	cfg, path, err := config.NewLoader(fs).Load("")

	require.NoError(t, err)
	assert.Equal(t, home, path)
	assert.Equal(t, "Debian", cfg.Distro.Name)
}

func TestLoader_ExplicitPathMissing(t *testing.T) {
	t.Parallel()

	_, _, err := config.NewLoader(mocks.NewFileSystem()).Load("/etc/wslup/missing.yaml")

	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeConfigNotFound))
}

func TestLoader_YAML(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("/cfg/wslup.yaml", `
log:
  level: debug
retry:
  attempts: 5
  delay: 500ms
packages:
  apt:
    - git
    - neovim
  brew:
    - lazygit
runtimes:
  rust:
    enabled: false
cloud:
  azure: false
identity:
  name: Ada Lovelace
  email: ada@example.com
optional:
  - runtime:go
`)

	cfg, _, err := config.NewLoader(fs).Load("/cfg/wslup.yaml")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "~/.wslup/wslup.log", cfg.Log.File, "unset keys keep their defaults")
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.Delay.Std())
	assert.Equal(t, []string{"git", "neovim"}, cfg.Packages.Apt)
	assert.Equal(t, []string{"lazygit"}, cfg.Packages.Brew)
	assert.False(t, cfg.Runtimes.Rust.Enabled)
	assert.True(t, cfg.Runtimes.Node.Enabled)
	assert.False(t, cfg.Cloud.Azure)
	assert.True(t, cfg.Cloud.AWS)
	assert.Equal(t, "Ada Lovelace", cfg.Identity.Name)
	assert.True(t, cfg.IsOptional("runtime:go"))
	assert.False(t, cfg.IsOptional("runtime:node"))
}

func TestLoader_TOML(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("/cfg/wslup.toml", `
[network]
probes = ["deb.debian.org:443", "github.com:443"]
timeout = "10s"

[docker]
enabled = true
add_user_to_group = false

[ssh]
comment = "ada@laptop"
`)

	cfg, _, err := config.NewLoader(fs).Load("/cfg/wslup.toml")
	require.NoError(t, err)

	assert.Equal(t, []string{"deb.debian.org:443", "github.com:443"}, cfg.Network.Probes)
	assert.Equal(t, 10*time.Second, cfg.Network.Timeout.Std())
	assert.False(t, cfg.Docker.AddUserToGroup)
	assert.Equal(t, "ada@laptop", cfg.SSH.Comment)
	assert.Equal(t, "ed25519", cfg.SSH.Type)
}

func TestLoader_EmptyYAML(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("/cfg/wslup.yml", "")

	cfg, _, err := config.NewLoader(fs).Load("/cfg/wslup.yml")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoader_UnknownKeys(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("/cfg/wslup.yaml", "log:\n  colour: red\n")
	fs.AddFile("/cfg/wslup.toml", "[log]\ncolour = \"red\"\n")

	loader := config.NewLoader(fs)

	_, _, err := loader.Load("/cfg/wslup.yaml")
	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeConfigParse))
	assert.Equal(t, "unknown configuration key", config.GetUserError(err).Message)

	_, _, err = loader.Load("/cfg/wslup.toml")
	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeConfigParse))
	assert.Contains(t, config.GetUserError(err).Message, "log.colour")
}

func TestLoader_BadDuration(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("/cfg/wslup.yaml", "retry:\n  delay: soon\n")

	_, _, err := config.NewLoader(fs).Load("/cfg/wslup.yaml")
	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeConfigParse))
}

func TestLoader_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("/cfg/wslup.json", "{}")

	_, _, err := config.NewLoader(fs).Load("/cfg/wslup.json")
	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeConfigInvalid))
}

func TestLoader_ValidationErrorsSurface(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("/cfg/wslup.yaml", "retry:\n  attempts: 0\n")

	_, _, err := config.NewLoader(fs).Load("/cfg/wslup.yaml")
	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeValidationFailed))
}
