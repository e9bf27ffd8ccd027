package config

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/validation"
)

// Limits on retry settings.
const (
	maxAttempts = 10
)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	errs := NewErrorList()

	if _, err := ports.ParseLevel(c.Log.Level); err != nil {
		errs.AddValidation("log.level", err.Error(), "Use one of: debug, info, warn, error.")
	}

	if c.Retry.Attempts < 1 || c.Retry.Attempts > maxAttempts {
		errs.AddValidation("retry.attempts", fmt.Sprintf("must be between 1 and %d, got %d", maxAttempts, c.Retry.Attempts), "")
	}
	if c.Retry.Delay < 0 {
		errs.AddValidation("retry.delay", "must not be negative", "")
	}

	if !c.Network.Skip {
		if len(c.Network.Probes) == 0 {
			errs.AddValidation("network.probes", "at least one probe host is required", "Add a host:port such as github.com:443, or set network.skip.")
		}
		for i, probe := range c.Network.Probes {
			if err := validation.ValidateProbe(probe); err != nil {
				errs.AddValidation(fmt.Sprintf("network.probes[%d]", i), err.Error(), "Write probes as host:port, e.g. github.com:443.")
			}
		}
		if c.Network.Timeout <= 0 {
			errs.AddValidation("network.timeout", "must be positive", "")
		}
	}

	if err := validation.ValidateDistroName(c.Distro.Name); err != nil {
		errs.AddValidation("distro.name", err.Error(), "Use a name from `wsl --list --online`, e.g. Ubuntu.")
	}
	if c.Distro.WingetID != "" {
		if err := validation.ValidateWingetID(c.Distro.WingetID); err != nil {
			errs.AddValidation("distro.winget_id", err.Error(), "Use a winget ID such as Canonical.Ubuntu.")
		}
	}

	validatePackages(errs, "packages.apt", c.Packages.Apt, validation.ValidatePackageName)
	validatePackages(errs, "packages.brew", c.Packages.Brew, validation.ValidateFormula)
	validateBrewNames(errs, c.Packages.BrewNames)

	validateRuntime(errs, "runtimes.node", c.Runtimes.Node)
	validateRuntime(errs, "runtimes.python", c.Runtimes.Python)
	validateRuntime(errs, "runtimes.go", c.Runtimes.Go)
	validateRuntime(errs, "runtimes.rust", c.Runtimes.Rust)

	if err := validation.ValidateGitConfigValue(c.Identity.Name); err != nil {
		errs.AddValidation("identity.name", err.Error(), "")
	}
	if err := validation.ValidateGitConfigValue(c.Identity.Email); err != nil {
		errs.AddValidation("identity.email", err.Error(), "")
	} else if c.Identity.Email != "" && !strings.Contains(c.Identity.Email, "@") {
		errs.AddValidation("identity.email", fmt.Sprintf("%q is not an email address", c.Identity.Email), "")
	}

	if c.Log.File != "" {
		if err := validation.ValidatePath(c.Log.File); err != nil {
			errs.AddValidation("log.file", err.Error(), "")
		}
	}

	if c.SSH.Enabled {
		if c.SSH.Type != "ed25519" {
			errs.AddValidation("ssh.type", fmt.Sprintf("unsupported key type %q", c.SSH.Type), "Only ed25519 keys are generated.")
		}
		if err := validation.ValidatePath(strings.TrimSpace(c.SSH.Path)); err != nil {
			errs.AddValidation("ssh.path", err.Error(), "")
		}
	}

	for i, name := range c.Optional {
		if _, err := provision.NewStepID(name); err != nil {
			errs.AddValidation(fmt.Sprintf("optional[%d]", i), err.Error(), "Run `wslup list` to see step names.")
		}
	}

	return errs.AsError()
}

func validatePackages(errs *ErrorList, field string, names []string, validate func(string) error) {
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if err := validate(name); err != nil {
			errs.AddValidation(fmt.Sprintf("%s[%d]", field, i), err.Error(), "")
			continue
		}
		if seen[name] {
			errs.AddValidation(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("duplicate package %q", name), "Each package becomes one step; list it once.")
		}
		seen[name] = true
	}
}

// validateBrewNames checks the apt-to-Homebrew mapping. An empty formula
// disables the fallback and is allowed.
func validateBrewNames(errs *ErrorList, names map[string]string) {
	keys := make([]string, 0, len(names))
	for pkg := range names {
		keys = append(keys, pkg)
	}
	sort.Strings(keys)

	for _, pkg := range keys {
		field := "packages.brew_names." + pkg
		if err := validation.ValidatePackageName(pkg); err != nil {
			errs.AddValidation(field, err.Error(), "")
			continue
		}
		if formula := names[pkg]; formula != "" {
			if err := validation.ValidateFormula(formula); err != nil {
				errs.AddValidation(field, err.Error(), "")
			}
		}
	}
}

func validateRuntime(errs *ErrorList, field string, rt RuntimeConfig) {
	if !rt.Enabled || rt.MinVersion == "" {
		return
	}
	if !semver.IsValid(Canonical(rt.MinVersion)) {
		errs.AddValidation(field+".min_version", fmt.Sprintf("%q is not a version", rt.MinVersion), "Use a version such as 18.0.0 or 1.22.")
	}
}

// Canonical turns "18", "1.22" or "v3.11.4" into canonical semver such as
// "v1.22.0". Unparseable input yields "".
func Canonical(version string) string {
	v := strings.TrimSpace(version)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
