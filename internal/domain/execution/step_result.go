// Package execution runs provisioning steps under a run mode and aggregates
// their outcomes into a report.
package execution

import (
	"time"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
)

// Verdict is how an entry counts in the report.
type Verdict string

const (
	// VerdictPass counts toward passed.
	VerdictPass Verdict = "pass"
	// VerdictWarn counts toward warned.
	VerdictWarn Verdict = "warn"
	// VerdictFail counts toward failed.
	VerdictFail Verdict = "fail"
)

// Entry captures the outcome of running a single step.
type Entry struct {
	name         string
	optional     bool
	presence     provision.Presence
	outcome      provision.Outcome
	applied      bool
	usedFallback bool
	duration     time.Duration
}

// NewEntry creates a new Entry for the step with the given outcome.
func NewEntry(step provision.Step, outcome provision.Outcome) Entry {
	return Entry{
		name:     step.Name(),
		optional: step.Optional(),
		outcome:  outcome,
	}
}

// Name returns the name of the step that was executed.
func (e Entry) Name() string {
	return e.name
}

// Optional reports whether the step was optional.
func (e Entry) Optional() bool {
	return e.optional
}

// Presence returns what the step's check reported before anything was applied.
func (e Entry) Presence() provision.Presence {
	return e.presence
}

// Outcome returns the recorded outcome.
func (e Entry) Outcome() provision.Outcome {
	return e.outcome
}

// Applied returns true if the primary apply was attempted.
func (e Entry) Applied() bool {
	return e.applied
}

// UsedFallback returns true if the fallback apply was attempted.
func (e Entry) UsedFallback() bool {
	return e.usedFallback
}

// Duration returns how long the step took.
func (e Entry) Duration() time.Duration {
	return e.duration
}

// Verdict classifies the entry. Successes pass. Failures and skips warn on
// optional steps and fail on required ones.
func (e Entry) Verdict() Verdict {
	switch {
	case e.outcome.IsSuccess():
		return VerdictPass
	case e.optional:
		return VerdictWarn
	default:
		return VerdictFail
	}
}

// WithOutcome returns a new Entry with the outcome set.
func (e Entry) WithOutcome(o provision.Outcome) Entry {
	e.outcome = o
	return e
}

// WithPresence returns a new Entry with the check result set.
func (e Entry) WithPresence(p provision.Presence) Entry {
	e.presence = p
	return e
}

// WithApplied returns a new Entry recording whether apply and fallback ran.
func (e Entry) WithApplied(applied, usedFallback bool) Entry {
	e.applied = applied
	e.usedFallback = usedFallback
	return e
}

// WithDuration returns a new Entry with duration set.
func (e Entry) WithDuration(d time.Duration) Entry {
	e.duration = d
	return e
}
