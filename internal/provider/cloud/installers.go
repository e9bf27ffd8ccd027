package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

const (
	awsConfigPath       = "~/.aws/config"
	azureInstallURL     = "https://aka.ms/InstallAzureCLIDeb"
	kubectlStableURL    = "https://dl.k8s.io/release/stable.txt"
	terraformCheckpoint = "https://checkpoint-api.hashicorp.com/v1/check/terraform"
	terraformReleaseFmt = "https://releases.hashicorp.com/terraform/%[1]s/terraform_%[1]s_linux_%[2]s.zip"
	binDir              = "/usr/local/bin"
)

type installers struct {
	runners commandutil.Runners
	fs      ports.FileSystem
	arch    string
	profile string
}

// awsArch maps a Go architecture to the AWS CLI bundle suffix.
func (i *installers) awsArch() string {
	if i.arch == "arm64" {
		return "aarch64"
	}
	return "x86_64"
}

// aws installs AWS CLI v2 from the official bundle.
func (i *installers) aws(ctx context.Context) error {
	archive := "/tmp/wslup-awscliv2.zip"
	dir := "/tmp/wslup-awscli"
	url := fmt.Sprintf("https://awscli.amazonaws.com/awscli-exe-linux-%s.zip", i.awsArch())
	if err := commandutil.Download(ctx, i.runners.Network, url, archive); err != nil {
		return fmt.Errorf("download aws cli: %w", err)
	}
	defer func() { _ = i.fs.Remove(archive) }()

	if err := ports.Exec(ctx, i.runners.Local, "unzip", "-q", "-o", archive, "-d", dir); err != nil {
		return err
	}
	return ports.Exec(ctx, i.runners.Local, "sudo", dir+"/aws/install", "--update")
}

// verifyAWSConfig checks that an existing ~/.aws/config parses and holds
// the configured profile. A missing file is fine: nothing is configured yet.
func (i *installers) verifyAWSConfig(_ context.Context) error {
	path := ports.ExpandPath(awsConfigPath)
	if !i.fs.Exists(path) {
		return nil
	}
	data, err := i.fs.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", awsConfigPath, err)
	}
	if i.profile == "" {
		return nil
	}
	section := "profile " + i.profile
	if i.profile == "default" {
		section = "default"
	}
	if !cfg.HasSection(section) {
		return fmt.Errorf("aws profile %q not found in %s", i.profile, awsConfigPath)
	}
	return nil
}

// azure runs Microsoft's Debian install script.
func (i *installers) azure(ctx context.Context) error {
	script := "/tmp/wslup-azure-cli.sh"
	if err := commandutil.Download(ctx, i.runners.Network, azureInstallURL, script); err != nil {
		return fmt.Errorf("download azure cli installer: %w", err)
	}
	defer func() { _ = i.fs.Remove(script) }()
	return ports.Exec(ctx, i.runners.Network, "sudo", "bash", script)
}

// kubectl installs the current stable kubectl binary.
func (i *installers) kubectl(ctx context.Context) error {
	version, err := commandutil.Output(ctx, i.runners.Network, "curl", "-fsSL", kubectlStableURL)
	if err != nil {
		return fmt.Errorf("resolve kubectl version: %w", err)
	}
	if !strings.HasPrefix(version, "v") {
		return fmt.Errorf("unexpected kubectl version response %q", version)
	}

	bin := "/tmp/wslup-kubectl"
	url := fmt.Sprintf("https://dl.k8s.io/release/%s/bin/linux/%s/kubectl", version, i.arch)
	if err := commandutil.Download(ctx, i.runners.Network, url, bin); err != nil {
		return fmt.Errorf("download kubectl %s: %w", version, err)
	}
	defer func() { _ = i.fs.Remove(bin) }()
	return i.installBinary(ctx, bin, "kubectl")
}

type checkpointResponse struct {
	CurrentVersion string `json:"current_version"`
}

// terraform installs the latest Terraform release.
func (i *installers) terraform(ctx context.Context) error {
	out, err := commandutil.Output(ctx, i.runners.Network, "curl", "-fsSL", terraformCheckpoint)
	if err != nil {
		return fmt.Errorf("resolve terraform version: %w", err)
	}
	var resp checkpointResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return fmt.Errorf("parse terraform checkpoint response: %w", err)
	}
	if resp.CurrentVersion == "" {
		return fmt.Errorf("terraform checkpoint returned no version")
	}

	archive := "/tmp/wslup-terraform.zip"
	dir := "/tmp/wslup-terraform"
	if err := commandutil.Download(ctx, i.runners.Network, fmt.Sprintf(terraformReleaseFmt, resp.CurrentVersion, i.arch), archive); err != nil {
		return fmt.Errorf("download terraform %s: %w", resp.CurrentVersion, err)
	}
	defer func() { _ = i.fs.Remove(archive) }()

	if err := ports.Exec(ctx, i.runners.Local, "unzip", "-q", "-o", archive, "-d", dir); err != nil {
		return err
	}
	return i.installBinary(ctx, dir+"/terraform", "terraform")
}

func (i *installers) installBinary(ctx context.Context, src, name string) error {
	return ports.Exec(ctx, i.runners.Local, "sudo", "install", "-o", "root", "-g", "root", "-m", "0755", src, binDir+"/"+name)
}
