package provision

// Definition is implemented by the step types providers declare.
// Build turns a Definition into a Step.
type Definition interface {
	Name() string
	Check(ctx RunContext) (Presence, error)
	Apply(ctx RunContext) error
}

// FallbackDefinition is a Definition with an alternate apply strategy.
type FallbackDefinition interface {
	Definition
	Fallback(ctx RunContext) error
}

// VerifyDefinition is a Definition with its own post-apply verification.
type VerifyDefinition interface {
	Definition
	Verify(ctx RunContext) error
}

// Describer is implemented by definitions that carry a description.
type Describer interface {
	Description() string
}

// Build creates a Step from a Definition, picking up the optional Fallback,
// Verify and Description methods. Explicit opts are applied last.
func Build(def Definition, opts ...StepOption) (Step, error) {
	all := make([]StepOption, 0, len(opts)+3)
	if f, ok := def.(FallbackDefinition); ok {
		all = append(all, WithFallback(f.Fallback))
	}
	if v, ok := def.(VerifyDefinition); ok {
		all = append(all, WithVerify(v.Verify))
	}
	if d, ok := def.(Describer); ok {
		all = append(all, WithDescription(d.Description()))
	}
	all = append(all, opts...)
	return NewStep(def.Name(), def.Check, def.Apply, all...)
}

// BuildAll builds every definition with the same options, stopping at the
// first invalid one.
func BuildAll(defs []Definition, opts ...StepOption) ([]Step, error) {
	steps := make([]Step, 0, len(defs))
	for _, def := range defs {
		step, err := Build(def, opts...)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}
