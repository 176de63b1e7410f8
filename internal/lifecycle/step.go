package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Verb is a lifecycle operation requested by the agent.
type Verb string

// Supported verbs.
const (
	VerbInstall   Verb = "install"
	VerbEnable    Verb = "enable"
	VerbDisable   Verb = "disable"
	VerbUpdate    Verb = "update"
	VerbUninstall Verb = "uninstall"
)

// Verbs lists all verbs in the order argument matching considers them.
var Verbs = []Verb{VerbDisable, VerbUninstall, VerbInstall, VerbEnable, VerbUpdate}

// ParseVerb returns the verb s starts with, ignoring case. Anything after
// the verb is ignored, so "enable:foo" is enable.
func ParseVerb(s string) (Verb, error) {
	lower := strings.ToLower(s)
	for _, known := range Verbs {
		if strings.HasPrefix(lower, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("lifecycle: unknown verb %q", s)
}

// Operation returns the capitalised operation name used in status reports.
func (v Verb) Operation() string {
	if v == "" {
		return "Operation"
	}
	return strings.ToUpper(string(v[:1])) + string(v[1:])
}

// Step is one command plus its success check.
type Step struct {
	// Name describes the step in logs and errors.
	Name string

	// Kind is reported when Check rejects the result.
	// Default: StepExecutionFailure.
	Kind FailureKind

	// Run performs the step. A non-nil error always fails the step as a
	// StepExecutionFailure.
	Run func(ctx context.Context) (StepResult, error)

	// Check decides whether the result is a success.
	// Default: exit code 0.
	Check func(StepResult) bool
}

func exitedZero(res StepResult) bool {
	return res.ExitCode == 0
}

// runSteps executes steps in order and stops at the first failure.
// Completed steps are never rolled back.
func runSteps(ctx context.Context, verb Verb, logger *slog.Logger, steps []Step) error {
	for i, s := range steps {
		res, err := s.Run(ctx)
		if err != nil {
			logger.Error("step failed", "step", s.Name, "index", i+1, "error", err)
			return &StepError{
				Verb:     verb,
				Step:     s.Name,
				Kind:     StepExecutionFailure,
				ExitCode: res.ExitCode,
				Output:   res.Output,
				Err:      err,
			}
		}

		check := s.Check
		if check == nil {
			check = exitedZero
		}
		if !check(res) {
			kind := s.Kind
			if kind == 0 {
				kind = StepExecutionFailure
			}
			logger.Error("step failed",
				"step", s.Name,
				"index", i+1,
				"kind", kind.String(),
				"exit_code", res.ExitCode,
			)
			return &StepError{
				Verb:     verb,
				Step:     s.Name,
				Kind:     kind,
				ExitCode: res.ExitCode,
				Output:   res.Output,
			}
		}

		logger.Info("step succeeded", "step", s.Name, "index", i+1)
	}
	return nil
}
