package scenario

import (
	"fmt"
	"time"
)

// Kind classifies the outcome of a verification run
type Kind string

// Kind constants
const (
	KindPassed      Kind = "passed"
	KindBrowser     Kind = "browser"
	KindNavigation  Kind = "navigation"
	KindInteraction Kind = "interaction"
	KindTimeout     Kind = "timeout"
	KindMismatch    Kind = "mismatch"
	KindArtifact    Kind = "artifact"
)

// ExitCode is the process exit status for the kind
func (k Kind) ExitCode() int {
	switch k {
	case KindPassed:
		return 0
	case KindNavigation:
		return 2
	case KindTimeout:
		return 3
	case KindMismatch:
		return 4
	default:
		return 1
	}
}

// Failure describes why a run did not pass
type Failure struct {
	Kind Kind

	// Step is the scenario step that failed, e.g. "navigate" or "wait for message"
	Step string

	// Detail carries the diagnostic payload: the URL for navigation failures,
	// the selector for timeouts and the text that was seen for mismatches
	Detail string

	Err error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s failed during %s", f.Kind, f.Step)
	if f.Detail != "" {
		msg += ": " + f.Detail
	}

	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}

	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of a single run
type Result struct {
	Email string

	// MessageText is the last text seen in the status element
	MessageText string

	// Screenshot is the artifact written for this run, empty if none could be written
	Screenshot string

	Started  time.Time
	Finished time.Time

	// Failure is nil when the run passed
	Failure *Failure
}

// Passed returns true if the run reached the end without a failure
func (r *Result) Passed() bool {
	return r.Failure == nil
}

// Kind returns the outcome kind
func (r *Result) Kind() Kind {
	if r.Failure == nil {
		return KindPassed
	}

	return r.Failure.Kind
}

// Err returns the failure as an error, or nil
func (r *Result) Err() error {
	if r.Failure == nil {
		return nil
	}

	return r.Failure
}

// Duration is how long the run took
func (r *Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Summary is the line printed at the end of a run
func (r *Result) Summary() string {
	if r.Failure == nil {
		return "Verification script completed successfully."
	}

	return fmt.Sprintf("An error occurred during verification: %v", r.Failure)
}
