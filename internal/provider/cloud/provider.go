package cloud

import (
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// Provider contributes the enabled cloud CLI steps. All of them are optional.
type Provider struct {
	cfg      *config.Config
	runners  commandutil.Runners
	fs       ports.FileSystem
	fallback ports.Installer
	arch     string
}

// NewProvider creates a cloud Provider.
func NewProvider(cfg *config.Config, runners commandutil.Runners, fs ports.FileSystem, fallback ports.Installer, arch string) *Provider {
	return &Provider{cfg: cfg, runners: runners, fs: fs, fallback: fallback, arch: arch}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "cloud"
}

// Steps returns aws, azure, kubectl and terraform, skipping disabled ones.
func (p *Provider) Steps() ([]provision.Step, error) {
	c := p.cfg.Cloud
	inst := &installers{runners: p.runners, fs: p.fs, arch: p.arch, profile: c.AWSProfile}

	var defs []provision.Definition
	if c.AWS {
		defs = append(defs, p.tool("aws", "AWS CLI v2", "aws --version", inst.aws, inst.verifyAWSConfig, "awscli"))
	}
	if c.Azure {
		defs = append(defs, p.tool("azure", "Azure CLI", "az version", inst.azure, nil, "azure-cli"))
	}
	if c.Kubectl {
		defs = append(defs, p.tool("kubectl", "kubectl", "kubectl version --client", inst.kubectl, nil, "kubernetes-cli"))
	}
	if c.Terraform {
		defs = append(defs, p.tool("terraform", "Terraform", "terraform version", inst.terraform, nil, "hashicorp/tap/terraform"))
	}
	return provision.BuildAll(defs, provision.Optional())
}

func (p *Provider) tool(name, title, probe string, install, verify actionFunc, formula string) *ToolStep {
	return &ToolStep{
		name:     name,
		title:    title,
		probe:    probe,
		install:  install,
		verify:   verify,
		fallback: p.fallback,
		formula:  formula,
		local:    p.runners.Local,
	}
}

var _ provision.Provider = (*Provider)(nil)
