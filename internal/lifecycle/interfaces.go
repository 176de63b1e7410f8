package lifecycle

import "context"

// StepResult is the outcome of one external command.
type StepResult struct {
	ExitCode int
	Output   string
}

// Runner executes external commands for the executor. Implementations block
// until the command exits. A non-nil error means the command could not be
// started or waited on; a command that ran and exited non-zero returns a nil
// error and a non-zero ExitCode.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (StepResult, error)
}

// Host abstracts the agent runtime that invoked the extension.
type Host interface {
	// AlreadyApplied reports whether verb last succeeded at the current
	// configuration sequence number or a newer one, with no other verb
	// succeeding since.
	AlreadyApplied(verb Verb) bool

	// MarkApplied records that verb succeeded at the current sequence
	// number. Marks left by other verbs are cleared.
	MarkApplied(verb Verb) error

	// Report persists the outcome of the current operation for the agent.
	Report(r Report) error
}

// RootChecker abstracts privilege checking for testability.
type RootChecker interface {
	// IsRoot returns true if the current process has root privileges.
	IsRoot() bool
}
