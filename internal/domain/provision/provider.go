package provision

// Provider contributes the steps for one area of the environment, in the
// order they must run.
type Provider interface {
	Name() string
	Steps() ([]Step, error)
}
