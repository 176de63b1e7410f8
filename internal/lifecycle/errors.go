package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies why a step failed. All kinds are fatal to the verb.
type FailureKind int

const (
	// PreconditionFailure means the daemon was not in a state the verb requires.
	PreconditionFailure FailureKind = iota + 1
	// StepExecutionFailure means a command could not run or exited non-zero.
	StepExecutionFailure
	// VerificationFailure means a command succeeded but a follow-up query
	// shows its effect did not happen.
	VerificationFailure
)

func (k FailureKind) String() string {
	switch k {
	case PreconditionFailure:
		return "precondition failed"
	case StepExecutionFailure:
		return "step failed"
	case VerificationFailure:
		return "verification failed"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// maxErrorOutput bounds how much command output is embedded in Error().
const maxErrorOutput = 512

// StepError is the single error a verb returns when a step fails.
// It supports errors.Is matching against ErrPrecondition, ErrStepExecution
// and ErrVerification.
type StepError struct {
	Verb     Verb
	Step     string
	Kind     FailureKind
	ExitCode int
	Output   string
	Err      error
}

// Error returns the formatted error string.
func (e *StepError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lifecycle: %s: %s: %s", e.Verb, e.Kind, e.Step)
	if e.Kind == StepExecutionFailure {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		if len(out) > maxErrorOutput {
			out = out[:maxErrorOutput] + "..."
		}
		fmt.Fprintf(&b, ": %s", out)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error, if any.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Is supports errors.Is matching by failure kind.
func (e *StepError) Is(target error) bool {
	t, ok := target.(*StepError)
	if !ok {
		return false
	}
	return t.Verb == "" && t.Step == "" && e.Kind == t.Kind
}

// Sentinel errors for each failure kind.
var (
	ErrPrecondition  = &StepError{Kind: PreconditionFailure}
	ErrStepExecution = &StepError{Kind: StepExecutionFailure}
	ErrVerification  = &StepError{Kind: VerificationFailure}
)

// ErrNotRoot is returned when a verb is run without root privileges.
var ErrNotRoot = errors.New("lifecycle: root privileges are required")
