package apt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/provider/apt"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
	"github.com/felixgeelhaar/wslup/internal/testutil/mocks"
)

func TestProvider_Steps(t *testing.T) {
	cfg := config.Default()
	cfg.Packages.Apt = []string{"git", "fd-find", "build-essential"}

	p := apt.NewProvider(cfg, commandutil.Single(mocks.NewCommandRunner()), mocks.NewInstaller("brew"))
	steps, err := p.Steps()
	require.NoError(t, err)

	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{"apt:update", "apt:package:git", "apt:package:fd-find", "apt:package:build-essential"}, names)
	assert.Equal(t, "apt", p.Name())
	for _, s := range steps {
		assert.False(t, s.Optional(), s.Name())
	}
	assert.False(t, steps[0].HasFallback())
	assert.True(t, steps[1].HasFallback())
}

func TestProvider_NoPackages(t *testing.T) {
	cfg := config.Default()
	cfg.Packages.Apt = nil

	steps, err := apt.NewProvider(cfg, commandutil.Single(mocks.NewCommandRunner()), nil).Steps()
	require.NoError(t, err)
	assert.Empty(t, steps)
}
