package provision

import "fmt"

// Registry holds provisioning steps in registration order.
// Registration order is execution order; no dependency graph is modeled.
type Registry struct {
	steps []Step
	index map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// Register appends a step.
// Returns a STEP_DUPLICATE StepError if a step with the same name exists.
func (r *Registry) Register(step Step) error {
	if step.ID().IsZero() {
		return fmt.Errorf("register: %w", ErrEmptyStepID)
	}

	name := step.Name()
	if _, exists := r.index[name]; exists {
		return NewDuplicateStepError(name)
	}

	r.index[name] = len(r.steps)
	r.steps = append(r.steps, step)
	return nil
}

// RegisterAll registers steps in order, stopping at the first error.
func (r *Registry) RegisterAll(steps ...Step) error {
	for _, step := range steps {
		if err := r.Register(step); err != nil {
			return err
		}
	}
	return nil
}

// All returns the steps in registration order.
// The returned slice is a copy; the registry cannot be mutated through it.
func (r *Registry) All() []Step {
	steps := make([]Step, len(r.steps))
	copy(steps, r.steps)
	return steps
}

// ByName returns the step with the given name.
// Returns a STEP_NOT_FOUND StepError if it does not exist.
func (r *Registry) ByName(name string) (Step, error) {
	i, ok := r.index[name]
	if !ok {
		return Step{}, NewStepNotFoundError(name)
	}
	return r.steps[i], nil
}

// Names returns the step names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.steps))
	for i, step := range r.steps {
		names[i] = step.Name()
	}
	return names
}
