package execution

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
)

// RunMode selects which steps execute and whether they may be applied.
type RunMode string

const (
	// ModeFullInstall checks every step, applies missing ones and verifies all.
	ModeFullInstall RunMode = "full-install"
	// ModeCheckOnly checks and verifies every step without changing the system.
	ModeCheckOnly RunMode = "check-only"
	// ModeFixMissing applies and verifies only the steps whose check reports absent.
	ModeFixMissing RunMode = "fix-missing"
	// ModeFixWarnings runs optional steps only, with full-install sequencing.
	ModeFixWarnings RunMode = "fix-warnings"
)

// Modes lists every run mode.
var Modes = []RunMode{ModeFullInstall, ModeCheckOnly, ModeFixMissing, ModeFixWarnings}

// ParseRunMode converts a mode name to a RunMode.
func ParseRunMode(s string) (RunMode, error) {
	mode := RunMode(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range Modes {
		if m == mode {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown run mode %q", s)
}

// String returns the string representation of the mode.
func (m RunMode) String() string {
	return string(m)
}

// MayApply returns true if the mode is allowed to change system state.
func (m RunMode) MayApply() bool {
	return m != ModeCheckOnly
}

// Selects reports whether a step takes part in a run of this mode before
// its check runs. Fix-missing narrows further once presence is known.
func (m RunMode) Selects(step provision.Step) bool {
	if m == ModeFixWarnings {
		return step.Optional()
	}
	return true
}
