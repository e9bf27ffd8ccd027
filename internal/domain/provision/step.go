// Package provision defines idempotent provisioning steps and the registry
// that holds them in execution order.
package provision

import "fmt"

// CheckFunc reports whether a step's component is already present.
type CheckFunc func(ctx RunContext) (Presence, error)

// ApplyFunc installs or configures a step's component.
// It should be idempotent: running it again on a present component is harmless.
type ApplyFunc func(ctx RunContext) error

// VerifyFunc confirms that a component works after it was applied.
// A nil error means verified.
type VerifyFunc func(ctx RunContext) error

// Step is a single named provisioning unit. Steps are immutable once built.
type Step struct {
	id          StepID
	description string
	check       CheckFunc
	apply       ApplyFunc
	fallback    ApplyFunc
	verify      VerifyFunc
	optional    bool
}

// StepOption configures a Step at construction time.
type StepOption func(*Step)

// WithFallback sets an alternate apply strategy tried once after the primary fails.
func WithFallback(fn ApplyFunc) StepOption {
	return func(s *Step) {
		s.fallback = fn
	}
}

// WithVerify sets the post-apply verification.
// Without it the step's check is re-run and Present counts as verified.
func WithVerify(fn VerifyFunc) StepOption {
	return func(s *Step) {
		s.verify = fn
	}
}

// Optional marks a step as nice-to-have: its failures are reported as warnings.
func Optional() StepOption {
	return func(s *Step) {
		s.optional = true
	}
}

// WithOptional sets the optional flag explicitly.
func WithOptional(optional bool) StepOption {
	return func(s *Step) {
		s.optional = optional
	}
}

// WithDescription sets a human-readable description.
func WithDescription(desc string) StepOption {
	return func(s *Step) {
		s.description = desc
	}
}

// NewStep creates a Step. Check and apply are required.
func NewStep(name string, check CheckFunc, apply ApplyFunc, opts ...StepOption) (Step, error) {
	id, err := NewStepID(name)
	if err != nil {
		return Step{}, fmt.Errorf("step %q: %w", name, err)
	}
	if check == nil {
		return Step{}, fmt.Errorf("step %q: check function is required", name)
	}
	if apply == nil {
		return Step{}, fmt.Errorf("step %q: apply function is required", name)
	}

	s := Step{
		id:    id,
		check: check,
		apply: apply,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s, nil
}

// MustNewStep is like NewStep but panics on error. It is meant for steps
// whose name is a literal.
func MustNewStep(name string, check CheckFunc, apply ApplyFunc, opts ...StepOption) Step {
	s, err := NewStep(name, check, apply, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// ID returns the step identifier.
func (s Step) ID() StepID {
	return s.id
}

// Name returns the step name.
func (s Step) Name() string {
	return s.id.String()
}

// Description returns the human-readable description.
func (s Step) Description() string {
	return s.description
}

// Optional reports whether the step is nice-to-have.
func (s Step) Optional() bool {
	return s.optional
}

// HasFallback reports whether the step has an alternate apply strategy.
func (s Step) HasFallback() bool {
	return s.fallback != nil
}

// Check runs the step's presence check.
func (s Step) Check(ctx RunContext) (Presence, error) {
	return s.check(ctx)
}

// Apply runs the primary apply strategy.
func (s Step) Apply(ctx RunContext) error {
	return s.apply(ctx)
}

// Fallback runs the alternate apply strategy. It is a no-op returning
// ErrNoFallback when none was configured.
func (s Step) Fallback(ctx RunContext) error {
	if s.fallback == nil {
		return ErrNoFallback
	}
	return s.fallback(ctx)
}

// Verify confirms the component works. Without an explicit verify function
// the check is re-run.
func (s Step) Verify(ctx RunContext) error {
	if s.verify != nil {
		return s.verify(ctx)
	}
	presence, err := s.check(ctx)
	if err != nil {
		return err
	}
	if presence != Present {
		return fmt.Errorf("%s is not present", s.id)
	}
	return nil
}

// WithOptionalOverride returns a copy of the step with the optional flag set.
// Registration-time overrides from configuration use it; the original is unchanged.
func (s Step) WithOptionalOverride(optional bool) Step {
	s.optional = optional
	return s
}
