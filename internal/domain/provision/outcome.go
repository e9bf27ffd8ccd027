package provision

// Presence is the result of a step's check.
type Presence string

const (
	// Present means the component is already installed or configured.
	Present Presence = "present"
	// Absent means the component needs to be applied.
	Absent Presence = "absent"
)

// String returns the string representation of the presence.
func (p Presence) String() string {
	return string(p)
}

// OutcomeKind tags an Outcome.
type OutcomeKind string

const (
	// OutcomeSuccess means the step is installed and verified.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeFailure means the step could not be applied or verified.
	OutcomeFailure OutcomeKind = "failure"
	// OutcomeSkipped means the step was deliberately not executed.
	OutcomeSkipped OutcomeKind = "skipped"
)

// Outcome is the recorded result of running a step.
type Outcome struct {
	kind   OutcomeKind
	reason string
	err    error
}

// Success returns a successful outcome.
func Success() Outcome {
	return Outcome{kind: OutcomeSuccess}
}

// Failure returns a failed outcome carrying the cause.
func Failure(err error) Outcome {
	o := Outcome{kind: OutcomeFailure, err: err}
	if err != nil {
		o.reason = err.Error()
	}
	return o
}

// Skipped returns a skipped outcome with a reason.
func Skipped(reason string) Outcome {
	return Outcome{kind: OutcomeSkipped, reason: reason}
}

// Kind returns the outcome tag.
func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// Reason returns the failure or skip reason. Empty for successes.
func (o Outcome) Reason() string {
	return o.reason
}

// Err returns the failure cause, if any.
func (o Outcome) Err() error {
	return o.err
}

// IsSuccess returns true for a successful outcome.
func (o Outcome) IsSuccess() bool {
	return o.kind == OutcomeSuccess
}

// IsFailure returns true for a failed outcome.
func (o Outcome) IsFailure() bool {
	return o.kind == OutcomeFailure
}

// IsSkipped returns true for a skipped outcome.
func (o Outcome) IsSkipped() bool {
	return o.kind == OutcomeSkipped
}

// String returns "success", "failure: <reason>" or "skipped: <reason>".
func (o Outcome) String() string {
	if o.reason == "" {
		return string(o.kind)
	}
	return string(o.kind) + ": " + o.reason
}

// String returns the string representation of the kind.
func (k OutcomeKind) String() string {
	return string(k)
}
