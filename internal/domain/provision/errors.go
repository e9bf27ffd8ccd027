package provision

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for provisioning operations.
const (
	ErrCodeStepDuplicate  = "STEP_DUPLICATE"
	ErrCodeStepNotFound   = "STEP_NOT_FOUND"
	ErrCodeCheckFailed    = "CHECK_FAILED"
	ErrCodeApplyFailed    = "APPLY_FAILED"
	ErrCodeFallbackFailed = "FALLBACK_FAILED"
	ErrCodeVerifyFailed   = "VERIFY_FAILED"
)

// StepError represents a user-friendly provisioning error with an actionable suggestion.
type StepError struct {
	Code       string // Error code for categorization
	Message    string // User-friendly error message
	StepID     string // Step ID if applicable
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	msg := e.Message
	if e.StepID != "" {
		msg = fmt.Sprintf("step %q: %s", e.StepID, e.Message)
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *StepError) Is(target error) bool {
	var t *StepError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.StepID != "" {
		fmt.Fprintf(&b, "\n  Step: %s", e.StepID)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}

	return b.String()
}

// ErrNoFallback is returned by Step.Fallback when the step has no fallback.
var ErrNoFallback = errors.New("no fallback configured")

// Sentinel values for errors.Is comparisons against a code.
var (
	ErrDuplicateStep  = &StepError{Code: ErrCodeStepDuplicate}
	ErrStepNotFound   = &StepError{Code: ErrCodeStepNotFound}
	ErrCheckFailed    = &StepError{Code: ErrCodeCheckFailed}
	ErrApplyFailed    = &StepError{Code: ErrCodeApplyFailed}
	ErrFallbackFailed = &StepError{Code: ErrCodeFallbackFailed}
	ErrVerifyFailed   = &StepError{Code: ErrCodeVerifyFailed}
)

// NewDuplicateStepError creates an error for a step name registered twice.
func NewDuplicateStepError(stepID string) *StepError {
	return &StepError{
		Code:       ErrCodeStepDuplicate,
		Message:    "a step with this name is already registered",
		StepID:     stepID,
		Suggestion: "Step names must be unique. Check for a package listed twice in the configuration.",
	}
}

// NewStepNotFoundError creates an error for an unknown step name.
func NewStepNotFoundError(stepID string) *StepError {
	return &StepError{
		Code:       ErrCodeStepNotFound,
		Message:    "no step with this name is registered",
		StepID:     stepID,
		Suggestion: "Run 'wslup list' to see the available steps.",
	}
}

// NewCheckFailedError creates an error for a check that could not determine presence.
func NewCheckFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeCheckFailed,
		Message:    "could not determine whether the component is present",
		StepID:     stepID,
		Suggestion: "The component is treated as missing and will be (re)installed.",
		Underlying: err,
	}
}

// NewApplyFailedError creates an error for a failed primary install.
func NewApplyFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeApplyFailed,
		Message:    "install failed",
		StepID:     stepID,
		Suggestion: "Check the log file for the installer output and re-run with --fix.",
		Underlying: err,
	}
}

// NewFallbackFailedError creates an error for a step whose primary and fallback installs both failed.
func NewFallbackFailedError(stepID string, primary, fallback error) *StepError {
	return &StepError{
		Code:       ErrCodeFallbackFailed,
		Message:    "install and fallback install both failed",
		StepID:     stepID,
		Suggestion: "Check network access and the log file, then re-run with --fix.",
		Underlying: errors.Join(primary, fallback),
	}
}

// NewVerifyFailedError creates an error for a component that did not verify after install.
func NewVerifyFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeVerifyFailed,
		Message:    "component did not verify",
		StepID:     stepID,
		Suggestion: "The installer reported success but the component is not usable. Open a new shell and run 'wslup --check'.",
		Underlying: err,
	}
}

// SkipError marks an apply as intentionally not performed.
type SkipError struct {
	Reason string
}

// Error returns the skip reason.
func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

// Skip returns an error that makes the executor record a Skipped outcome
// instead of a failure.
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// AsSkip reports whether err is (or wraps) a SkipError.
func AsSkip(err error) (*SkipError, bool) {
	var skip *SkipError
	if errors.As(err, &skip) {
		return skip, true
	}
	return nil, false
}
