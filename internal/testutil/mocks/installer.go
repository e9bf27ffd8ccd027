package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Installer is an in-memory ports.Installer.
type Installer struct {
	mu          sync.Mutex
	name        string
	installed   map[string]bool
	available   map[string]bool
	installErrs map[string]error
	installs    []string
}

// NewInstaller creates an Installer mock with the given manager name.
func NewInstaller(name string) *Installer {
	return &Installer{
		name:        name,
		installed:   make(map[string]bool),
		available:   make(map[string]bool),
		installErrs: make(map[string]error),
	}
}

// SetInstalled marks packages as already installed.
func (m *Installer) SetInstalled(pkgs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pkg := range pkgs {
		m.installed[pkg] = true
	}
}

// SetAvailable marks packages as installable.
func (m *Installer) SetAvailable(pkgs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pkg := range pkgs {
		m.available[pkg] = true
	}
}

// SetInstallError makes Install fail for pkg.
func (m *Installer) SetInstallError(pkg string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installErrs[pkg] = err
}

// Name returns the manager name.
func (m *Installer) Name() string {
	return m.name
}

// Installed reports whether pkg was marked installed or installed since.
func (m *Installer) Installed(_ context.Context, pkg string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.installed[pkg], nil
}

// IsAvailable reports whether pkg was marked available.
func (m *Installer) IsAvailable(_ context.Context, pkg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available[pkg]
}

// Install records the install and marks pkg installed. Packages that are
// not available fail with ports.ErrPackageUnavailable.
func (m *Installer) Install(_ context.Context, pkg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installs = append(m.installs, pkg)
	if err, ok := m.installErrs[pkg]; ok {
		return err
	}
	if !m.available[pkg] {
		return fmt.Errorf("%s %s: %w", m.name, pkg, ports.ErrPackageUnavailable)
	}
	m.installed[pkg] = true
	return nil
}

// Installs returns the packages Install was called with, in order.
func (m *Installer) Installs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.installs...)
}

var _ ports.Installer = (*Installer)(nil)
