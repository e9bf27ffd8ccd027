package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

const (
	nvmInstallURL    = "https://raw.githubusercontent.com/nvm-sh/nvm/v0.40.1/install.sh"
	rustupURL        = "https://sh.rustup.rs"
	goVersionURL     = "https://go.dev/VERSION?m=text"
	goDownloadURLFmt = "https://go.dev/dl/%s.linux-%s.tar.gz"
	goRoot           = "/usr/local/go"
)

// installers holds the primary install strategies.
type installers struct {
	runners commandutil.Runners
	apt     ports.Installer
	fs      ports.FileSystem
	arch    string
}

// node installs nvm and the current LTS release.
func (i *installers) node(ctx context.Context) error {
	script := "/tmp/wslup-nvm-install.sh"
	if err := commandutil.Download(ctx, i.runners.Network, nvmInstallURL, script); err != nil {
		return fmt.Errorf("download nvm: %w", err)
	}
	defer func() { _ = i.fs.Remove(script) }()

	if err := ports.Exec(ctx, i.runners.Local, "bash", script); err != nil {
		return fmt.Errorf("install nvm: %w", err)
	}
	command, args := commandutil.UserShell(`nvm install --lts && nvm alias default 'lts/*'`)
	return ports.Exec(ctx, i.runners.Network, command, args...)
}

// python installs python3 with pip and venv from apt.
func (i *installers) python(ctx context.Context) error {
	for _, pkg := range []string{"python3", "python3-pip", "python3-venv"} {
		if err := i.apt.Install(ctx, pkg); err != nil {
			return err
		}
	}
	return nil
}

// golang installs the latest Go release tarball into /usr/local/go.
func (i *installers) golang(ctx context.Context) error {
	out, err := commandutil.Output(ctx, i.runners.Network, "curl", "-fsSL", goVersionURL)
	if err != nil {
		return fmt.Errorf("resolve latest go version: %w", err)
	}
	version, _, _ := strings.Cut(out, "\n")
	version = strings.TrimSpace(version)
	if !strings.HasPrefix(version, "go") {
		return fmt.Errorf("unexpected go version response %q", out)
	}

	archive := fmt.Sprintf("/tmp/%s.linux-%s.tar.gz", version, i.arch)
	if err := commandutil.Download(ctx, i.runners.Network, fmt.Sprintf(goDownloadURLFmt, version, i.arch), archive); err != nil {
		return fmt.Errorf("download %s: %w", version, err)
	}
	defer func() { _ = i.fs.Remove(archive) }()

	if err := ports.Exec(ctx, i.runners.Local, "sudo", "rm", "-rf", goRoot); err != nil {
		return err
	}
	return ports.Exec(ctx, i.runners.Local, "sudo", "tar", "-C", "/usr/local", "-xzf", archive)
}

// rust installs the stable toolchain with rustup.
func (i *installers) rust(ctx context.Context) error {
	script := "/tmp/wslup-rustup.sh"
	if err := commandutil.Download(ctx, i.runners.Network, rustupURL, script); err != nil {
		return fmt.Errorf("download rustup: %w", err)
	}
	defer func() { _ = i.fs.Remove(script) }()

	return ports.Exec(ctx, i.runners.Network, "sh", script, "-y", "--profile", "minimal", "--default-toolchain", "stable")
}
